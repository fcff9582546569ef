package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Summarize(ctx context.Context, db *gorm.DB, window Window) (Summary, error)
	ListVisits(ctx context.Context, db *gorm.DB, window Window) ([]VisitRow, error)
	ProductSales(ctx context.Context, db *gorm.DB) ([]ProductSales, error)
}
