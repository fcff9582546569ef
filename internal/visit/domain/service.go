package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	RegisterVisit(ctx context.Context, req CreateRequest) (*Response, error)
	UpdateVisit(ctx context.Context, req UpdateRequest) (*Response, error)
	DeleteVisit(ctx context.Context, id string) error
	ListVisits(ctx context.Context) ([]Response, error)
	GetVisit(ctx context.Context, id string) (*Response, error)
}

// ItemRequest names a product and a quantity. The unit price always comes
// from the catalog.
type ItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type CreateRequest struct {
	GuideID      string          `json:"guide_id" binding:"required"`
	TouristCount int             `json:"tourist_count"`
	GuideFee     decimal.Decimal `json:"guide_fee"`
	Items        []ItemRequest   `json:"items"`
}

// UpdateRequest fully replaces the visit's fields and line items.
type UpdateRequest struct {
	ID           string          `json:"-"`
	GuideID      string          `json:"guide_id" binding:"required"`
	TouristCount int             `json:"tourist_count"`
	GuideFee     decimal.Decimal `json:"guide_fee"`
	Items        []ItemRequest   `json:"items"`
}

type GuideSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type ItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Response struct {
	ID                  string          `json:"id"`
	GuideID             string          `json:"guide_id"`
	Guide               *GuideSummary   `json:"guide,omitempty"`
	TouristCount        int             `json:"tourist_count"`
	GuideFee            decimal.Decimal `json:"guide_fee"`
	ProductRevenueTotal decimal.Decimal `json:"product_revenue_total"`
	TotalCollected      decimal.Decimal `json:"total_collected"`
	Items               []ItemResponse  `json:"items"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidGuideID      = errors.New("invalid_guide_id")
	ErrInvalidProductID    = errors.New("invalid_product_id")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidGuideFee     = errors.New("invalid_guide_fee")
	ErrInvalidTouristCount = errors.New("invalid_tourist_count")
	ErrUnknownProduct      = errors.New("unknown_product")
	ErrGuideNotFound       = errors.New("guide_not_found")
	ErrGuideInactive       = errors.New("guide_inactive")
	ErrNotFound            = errors.New("not_found")
)
