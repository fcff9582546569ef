package repository

import (
	"context"

	"github.com/smallbiznis/tourbill/internal/reporting/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Summarize(ctx context.Context, db *gorm.DB, window domain.Window) (domain.Summary, error) {
	var summary domain.Summary
	stmt := applyWindow(db.WithContext(ctx).Table("visits"), "created_at", window)
	err := stmt.Select(
		`COUNT(*) AS visit_count,
		 COALESCE(SUM(guide_fee), 0) AS total_guide_fees,
		 COALESCE(SUM(product_revenue_total), 0) AS total_product_revenue`,
	).Scan(&summary).Error
	if err != nil {
		return domain.Summary{}, err
	}
	return summary, nil
}

func (r *repo) ListVisits(ctx context.Context, db *gorm.DB, window domain.Window) ([]domain.VisitRow, error) {
	var rows []domain.VisitRow
	stmt := db.WithContext(ctx).
		Table("visits AS v").
		Joins("LEFT JOIN guides AS g ON g.id = v.guide_id")
	stmt = applyWindow(stmt, "v.created_at", window)
	err := stmt.Select(
		`v.id, v.guide_id, COALESCE(g.name, '') AS guide_name, v.tourist_count,
		 v.guide_fee, v.product_revenue_total, v.created_at`,
	).Order("v.created_at ASC, v.id ASC").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ProductSales(ctx context.Context, db *gorm.DB) ([]domain.ProductSales, error) {
	var rows []domain.ProductSales
	err := db.WithContext(ctx).Raw(
		`SELECT p.id AS product_id, p.name, p.category, p.active,
		        COALESCE(SUM(vi.quantity), 0) AS units_sold,
		        COALESCE(SUM(vi.quantity * vi.price_at_sale), 0) AS revenue
		 FROM products p
		 LEFT JOIN visit_items vi ON vi.product_id = p.id
		 GROUP BY p.id, p.name, p.category, p.active
		 ORDER BY p.id ASC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func applyWindow(stmt *gorm.DB, column string, window domain.Window) *gorm.DB {
	if window.From != nil {
		stmt = stmt.Where(column+" >= ?", window.From.UTC())
	}
	if window.Until != nil {
		stmt = stmt.Where(column+" < ?", window.Until.UTC())
	}
	return stmt
}
