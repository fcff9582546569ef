package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Deactivate(ctx context.Context, id string) (*Response, error)

	// FindByIDs returns the products matching ids, in no particular order.
	// Missing ids are simply absent from the result.
	FindByIDs(ctx context.Context, ids []int64) ([]Product, error)
}

type ListRequest struct {
	Active   *bool
	Category string
}

type ListFilter struct {
	Active       *bool
	CategorySlug string
}

type CreateRequest struct {
	Name     string           `json:"name" binding:"required"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
	Category string           `json:"category"`
	Active   *bool            `json:"active"`
	Metadata map[string]any   `json:"metadata"`
}

// UpdateRequest replaces the fields that are set; nil fields are kept.
type UpdateRequest struct {
	ID       string           `json:"-"`
	Name     *string          `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Category *string          `json:"category"`
	Active   *bool            `json:"active"`
	Metadata map[string]any   `json:"metadata"`
}

type Response struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	CategorySlug string          `json:"category_slug"`
	Active       bool            `json:"active"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
