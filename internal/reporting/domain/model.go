package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the raw aggregate over a set of visits.
type Summary struct {
	VisitCount          int64           `gorm:"column:visit_count"`
	TotalGuideFees      decimal.Decimal `gorm:"column:total_guide_fees"`
	TotalProductRevenue decimal.Decimal `gorm:"column:total_product_revenue"`
}

// ProductSales is one catalog product with its lifetime sales.
type ProductSales struct {
	ProductID int64           `gorm:"column:product_id"`
	Name      string          `gorm:"column:name"`
	Category  string          `gorm:"column:category"`
	Active    bool            `gorm:"column:active"`
	UnitsSold int64           `gorm:"column:units_sold"`
	Revenue   decimal.Decimal `gorm:"column:revenue"`
}

// VisitRow is a visit joined with its guide's name, used by exports.
type VisitRow struct {
	ID                  int64           `gorm:"column:id"`
	GuideID             int64           `gorm:"column:guide_id"`
	GuideName           string          `gorm:"column:guide_name"`
	TouristCount        int             `gorm:"column:tourist_count"`
	GuideFee            decimal.Decimal `gorm:"column:guide_fee"`
	ProductRevenueTotal decimal.Decimal `gorm:"column:product_revenue_total"`
	CreatedAt           time.Time       `gorm:"column:created_at"`
}

// Window is a half-open [From, Until) creation-time range. Nil bounds are open.
type Window struct {
	From  *time.Time
	Until *time.Time
}
