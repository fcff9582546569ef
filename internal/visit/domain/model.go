package domain

import (
	"time"

	"github.com/shopspring/decimal"
	guidedomain "github.com/smallbiznis/tourbill/internal/guide/domain"
	productdomain "github.com/smallbiznis/tourbill/internal/product/domain"
)

// Visit is one guided tour. ProductRevenueTotal always equals the sum of its
// line item subtotals. Guide and Items only declare the foreign keys for
// AutoMigrate; queries never preload them.
type Visit struct {
	ID                  int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	GuideID             int64           `json:"guide_id" gorm:"not null;index"`
	TouristCount        int             `json:"tourist_count" gorm:"not null;default:0"`
	GuideFee            decimal.Decimal `json:"guide_fee" gorm:"type:decimal(12,2);not null"`
	ProductRevenueTotal decimal.Decimal `json:"product_revenue_total" gorm:"type:decimal(12,2);not null"`
	CreatedAt           time.Time       `json:"created_at" gorm:"not null;index"`
	UpdatedAt           time.Time       `json:"updated_at" gorm:"not null"`

	Guide *guidedomain.Guide `json:"-" gorm:"foreignKey:GuideID"`
	Items []LineItem         `json:"-" gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE"`
}

func (Visit) TableName() string { return "visits" }

// TotalCollected is the guide fee plus product revenue.
func (v Visit) TotalCollected() decimal.Decimal {
	return v.GuideFee.Add(v.ProductRevenueTotal)
}

// LineItem is a product sold during a visit. PriceAtSale is the catalog price
// at the moment the item was recorded and never changes afterwards.
type LineItem struct {
	ID          int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	VisitID     int64           `json:"visit_id" gorm:"not null;index"`
	ProductID   int64           `json:"product_id" gorm:"not null;index"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	PriceAtSale decimal.Decimal `json:"price_at_sale" gorm:"type:decimal(12,2);not null"`

	Product *productdomain.Product `json:"-" gorm:"foreignKey:ProductID"`
}

func (LineItem) TableName() string { return "visit_items" }

func (li LineItem) Subtotal() decimal.Decimal {
	return li.PriceAtSale.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
