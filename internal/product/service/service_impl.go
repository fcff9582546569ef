package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tourbill/internal/clock"
	"github.com/smallbiznis/tourbill/internal/product/domain"
	"github.com/smallbiznis/tourbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{Active: req.Active}
	if category := strings.TrimSpace(req.Category); category != "" {
		filter.CategorySlug = slug.Make(category)
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	price, err := normalizePrice(req.Price)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	category := strings.TrimSpace(req.Category)
	now := s.clock.Now()
	p := &domain.Product{
		ID:           s.genID.Generate().Int64(),
		Name:         name,
		Price:        price,
		Category:     category,
		CategorySlug: slug.Make(category),
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			s.log.Error("product id collision, check SNOWFLAKE_NODE_ID", zap.Int64("product_id", p.ID))
		}
		return nil, err
	}

	s.log.Info("product created",
		zap.Int64("product_id", p.ID),
		zap.String("price", p.Price.StringFixed(2)),
	)
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Price != nil {
		price, err := normalizePrice(req.Price)
		if err != nil {
			return nil, err
		}
		item.Price = price
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
		item.CategorySlug = slug.Make(item.Category)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

// Deactivate marks the product inactive. Deactivating an inactive product is a no-op.
func (s *Service) Deactivate(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.Active {
		item.Active = false
		item.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, s.db, item); err != nil {
			return nil, err
		}
		s.log.Info("product deactivated", zap.Int64("product_id", item.ID))
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	return s.repo.FindByIDs(ctx, s.db, ids)
}

func (s *Service) find(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || productID == 0 {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// normalizePrice rejects missing or negative prices and rounds to cents.
func normalizePrice(value *decimal.Decimal) (decimal.Decimal, error) {
	if value == nil || value.IsNegative() {
		return decimal.Zero, domain.ErrInvalidPrice
	}
	return value.Round(2), nil
}

func toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:           snowflake.ID(p.ID).String(),
		Name:         p.Name,
		Price:        p.Price,
		Category:     p.Category,
		CategorySlug: p.CategorySlug,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}

	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}

	return resp
}
