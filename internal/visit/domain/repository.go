package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, visit *Visit) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Visit, error)
	// FindByIDForUpdate row-locks the visit where the dialect supports it.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id int64) (*Visit, error)
	List(ctx context.Context, db *gorm.DB) ([]Visit, error)
	Update(ctx context.Context, db *gorm.DB, visit *Visit) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error

	InsertItems(ctx context.Context, db *gorm.DB, items []LineItem) error
	ListItems(ctx context.Context, db *gorm.DB, visitIDs []int64) ([]LineItem, error)
	DeleteItems(ctx context.Context, db *gorm.DB, visitID int64) error
}
