package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product is a catalog item sold during visits. Price changes apply to future
// visits only; line items keep their own snapshot.
type Product struct {
	ID           int64             `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name         string            `json:"name" gorm:"type:text;not null"`
	Price        decimal.Decimal   `json:"price" gorm:"type:decimal(12,2);not null"`
	Category     string            `json:"category" gorm:"type:varchar(191);not null;default:''"`
	CategorySlug string            `json:"category_slug" gorm:"type:varchar(191);not null;default:'';index"`
	Active       bool              `json:"active" gorm:"not null;default:true;index"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
