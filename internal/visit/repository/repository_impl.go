package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/tourbill/internal/visit/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, visit *domain.Visit) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO visits (id, guide_id, tourist_count, guide_fee, product_revenue_total, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		visit.ID,
		visit.GuideID,
		visit.TouristCount,
		visit.GuideFee,
		visit.ProductRevenueTotal,
		visit.CreatedAt,
		visit.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Visit, error) {
	var v domain.Visit
	err := db.WithContext(ctx).Raw(
		`SELECT id, guide_id, tourist_count, guide_fee, product_revenue_total, created_at, updated_at
		 FROM visits WHERE id = ?`,
		id,
	).Scan(&v).Error
	if err != nil {
		return nil, err
	}
	if v.ID == 0 {
		return nil, nil
	}
	return &v, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id int64) (*domain.Visit, error) {
	var v domain.Visit
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Visit, error) {
	var items []domain.Visit
	err := db.WithContext(ctx).Raw(
		`SELECT id, guide_id, tourist_count, guide_fee, product_revenue_total, created_at, updated_at
		 FROM visits ORDER BY created_at ASC, id ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, visit *domain.Visit) error {
	return db.WithContext(ctx).Exec(
		`UPDATE visits
		 SET guide_id = ?, tourist_count = ?, guide_fee = ?, product_revenue_total = ?, updated_at = ?
		 WHERE id = ?`,
		visit.GuideID,
		visit.TouristCount,
		visit.GuideFee,
		visit.ProductRevenueTotal,
		visit.UpdatedAt,
		visit.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM visits WHERE id = ?`, id).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, visitIDs []int64) ([]domain.LineItem, error) {
	if len(visitIDs) == 0 {
		return []domain.LineItem{}, nil
	}
	var items []domain.LineItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, visit_id, product_id, quantity, price_at_sale
		 FROM visit_items WHERE visit_id IN ? ORDER BY visit_id ASC, id ASC`,
		visitIDs,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, visitID int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM visit_items WHERE visit_id = ?`, visitID).Error
}
