package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, guide *Guide) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Guide, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Guide, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Guide, error)
	Update(ctx context.Context, db *gorm.DB, guide *Guide) error
}
