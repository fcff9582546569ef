package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tourbill/internal/clock"
	guidedomain "github.com/smallbiznis/tourbill/internal/guide/domain"
	"github.com/smallbiznis/tourbill/internal/observability/metrics"
	"github.com/smallbiznis/tourbill/internal/observability/tracing"
	productdomain "github.com/smallbiznis/tourbill/internal/product/domain"
	"github.com/smallbiznis/tourbill/internal/visit/domain"
	"github.com/smallbiznis/tourbill/pkg/db"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	eventRegistered = "registered"
	eventUpdated    = "updated"
	eventDeleted    = "deleted"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`

	GuideRepo  guidedomain.Repository
	ProductSvc productdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *metrics.Metrics

	guideRepo  guidedomain.Repository
	productSvc productdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("visit.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,

		guideRepo:  p.GuideRepo,
		productSvc: p.ProductSvc,
	}
}

// visitInput is a validated create or update payload.
type visitInput struct {
	guideID      int64
	touristCount int
	guideFee     decimal.Decimal
	items        []itemInput
}

type itemInput struct {
	productID int64
	quantity  int
}

// pricedItems carries line items priced from the catalog together with the
// product names used when rendering them.
type pricedItems struct {
	items        []domain.LineItem
	revenue      decimal.Decimal
	productNames map[int64]string
}

func (s *Service) RegisterVisit(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	ctx, span := tracing.StartSpan(ctx, "visit.register")
	defer span.End()

	input, err := parseInput(req.GuideID, req.TouristCount, req.GuideFee, req.Items)
	if err != nil {
		return nil, err
	}

	guide, err := s.guideRepo.FindByID(ctx, s.db, input.guideID)
	if err != nil {
		return nil, err
	}
	if guide == nil {
		return nil, domain.ErrGuideNotFound
	}
	if !guide.Active {
		return nil, domain.ErrGuideInactive
	}

	visitID := s.genID.Generate().Int64()
	priced, err := s.priceItems(ctx, visitID, input.items)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	visit := &domain.Visit{
		ID:                  visitID,
		GuideID:             guide.ID,
		TouristCount:        input.touristCount,
		GuideFee:            input.guideFee,
		ProductRevenueTotal: priced.revenue,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, visit); err != nil {
			return foreignKeyAs(err, domain.ErrGuideNotFound)
		}
		return foreignKeyAs(s.repo.InsertItems(ctx, tx, priced.items), domain.ErrUnknownProduct)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("visit.items", len(priced.items)))
	s.record(ctx, eventRegistered, priced)
	s.log.Info("visit registered",
		zap.Int64("visit_id", visit.ID),
		zap.Int64("guide_id", visit.GuideID),
		zap.Int("items", len(priced.items)),
		zap.String("total_collected", visit.TotalCollected().StringFixed(2)),
	)

	resp := toResponse(visit, priced.items, guide, priced.productNames)
	return &resp, nil
}

func (s *Service) UpdateVisit(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	ctx, span := tracing.StartSpan(ctx, "visit.update")
	defer span.End()

	visitID, err := parseID(req.ID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	input, err := parseInput(req.GuideID, req.TouristCount, req.GuideFee, req.Items)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, visitID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	guide, err := s.guideRepo.FindByID(ctx, s.db, input.guideID)
	if err != nil {
		return nil, err
	}
	if guide == nil {
		return nil, domain.ErrGuideNotFound
	}
	// Only a reassignment requires an active guide.
	if guide.ID != existing.GuideID && !guide.Active {
		return nil, domain.ErrGuideInactive
	}

	priced, err := s.priceItems(ctx, visitID, input.items)
	if err != nil {
		return nil, err
	}

	var visit *domain.Visit
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.repo.FindByIDForUpdate(ctx, tx, visitID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}

		if err := s.repo.DeleteItems(ctx, tx, visitID); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, priced.items); err != nil {
			return foreignKeyAs(err, domain.ErrUnknownProduct)
		}

		locked.GuideID = guide.ID
		locked.TouristCount = input.touristCount
		locked.GuideFee = input.guideFee
		locked.ProductRevenueTotal = priced.revenue
		locked.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, locked); err != nil {
			return foreignKeyAs(err, domain.ErrGuideNotFound)
		}
		visit = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, eventUpdated, priced)
	s.log.Info("visit updated",
		zap.Int64("visit_id", visit.ID),
		zap.Int64("guide_id", visit.GuideID),
		zap.Int("items", len(priced.items)),
	)

	resp := toResponse(visit, priced.items, guide, priced.productNames)
	return &resp, nil
}

func (s *Service) DeleteVisit(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "visit.delete")
	defer span.End()

	visitID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		visit, err := s.repo.FindByIDForUpdate(ctx, tx, visitID)
		if err != nil {
			return err
		}
		if visit == nil {
			return domain.ErrNotFound
		}
		if err := s.repo.DeleteItems(ctx, tx, visitID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, visitID)
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordVisitEvent(ctx, eventDeleted)
	}
	s.log.Info("visit deleted", zap.Int64("visit_id", visitID))
	return nil
}

func (s *Service) ListVisits(ctx context.Context) ([]domain.Response, error) {
	visits, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, visits)
}

func (s *Service) GetVisit(ctx context.Context, id string) (*domain.Response, error) {
	visitID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	visit, err := s.repo.FindByID(ctx, s.db, visitID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, domain.ErrNotFound
	}

	resp, err := s.hydrate(ctx, []domain.Visit{*visit})
	if err != nil {
		return nil, err
	}
	return &resp[0], nil
}

// priceItems validates product references and snapshots current catalog
// prices into new line items for visitID.
func (s *Service) priceItems(ctx context.Context, visitID int64, inputs []itemInput) (pricedItems, error) {
	result := pricedItems{
		items:        make([]domain.LineItem, 0, len(inputs)),
		revenue:      decimal.Zero,
		productNames: map[int64]string{},
	}
	if len(inputs) == 0 {
		return result, nil
	}

	ids := distinctProductIDs(inputs)
	products, err := s.productSvc.FindByIDs(ctx, ids)
	if err != nil {
		return pricedItems{}, err
	}
	if len(products) != len(ids) {
		return pricedItems{}, domain.ErrUnknownProduct
	}

	catalog := make(map[int64]productdomain.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
		result.productNames[p.ID] = p.Name
	}

	for _, in := range inputs {
		product := catalog[in.productID]
		item := domain.LineItem{
			ID:          s.genID.Generate().Int64(),
			VisitID:     visitID,
			ProductID:   product.ID,
			Quantity:    in.quantity,
			PriceAtSale: product.Price,
		}
		result.items = append(result.items, item)
		result.revenue = result.revenue.Add(item.Subtotal())
	}

	return result, nil
}

// hydrate loads line items, guides and product names for visits.
func (s *Service) hydrate(ctx context.Context, visits []domain.Visit) ([]domain.Response, error) {
	resp := make([]domain.Response, 0, len(visits))
	if len(visits) == 0 {
		return resp, nil
	}

	visitIDs := make([]int64, 0, len(visits))
	guideIDs := make([]int64, 0, len(visits))
	seenGuides := map[int64]struct{}{}
	for _, v := range visits {
		visitIDs = append(visitIDs, v.ID)
		if _, ok := seenGuides[v.GuideID]; !ok {
			seenGuides[v.GuideID] = struct{}{}
			guideIDs = append(guideIDs, v.GuideID)
		}
	}

	items, err := s.repo.ListItems(ctx, s.db, visitIDs)
	if err != nil {
		return nil, err
	}
	itemsByVisit := make(map[int64][]domain.LineItem, len(visits))
	productIDs := make([]int64, 0, len(items))
	seenProducts := map[int64]struct{}{}
	for _, item := range items {
		itemsByVisit[item.VisitID] = append(itemsByVisit[item.VisitID], item)
		if _, ok := seenProducts[item.ProductID]; !ok {
			seenProducts[item.ProductID] = struct{}{}
			productIDs = append(productIDs, item.ProductID)
		}
	}

	guides, err := s.guideRepo.FindByIDs(ctx, s.db, guideIDs)
	if err != nil {
		return nil, err
	}
	guideByID := make(map[int64]*guidedomain.Guide, len(guides))
	for i := range guides {
		guideByID[guides[i].ID] = &guides[i]
	}

	products, err := s.productSvc.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productNames := make(map[int64]string, len(products))
	for _, p := range products {
		productNames[p.ID] = p.Name
	}

	for i := range visits {
		v := &visits[i]
		resp = append(resp, toResponse(v, itemsByVisit[v.ID], guideByID[v.GuideID], productNames))
	}
	return resp, nil
}

func (s *Service) record(ctx context.Context, event string, priced pricedItems) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordVisitEvent(ctx, event)
	s.metrics.RecordLineItemsPriced(ctx, event, len(priced.items), priced.revenue.InexactFloat64())
}

func parseInput(guideID string, touristCount int, guideFee decimal.Decimal, items []domain.ItemRequest) (visitInput, error) {
	gid, err := parseID(guideID, domain.ErrInvalidGuideID)
	if err != nil {
		return visitInput{}, err
	}
	if touristCount < 0 {
		return visitInput{}, domain.ErrInvalidTouristCount
	}
	if guideFee.IsNegative() {
		return visitInput{}, domain.ErrInvalidGuideFee
	}

	parsed := make([]itemInput, 0, len(items))
	for _, item := range items {
		pid, err := parseID(item.ProductID, domain.ErrInvalidProductID)
		if err != nil {
			return visitInput{}, err
		}
		if item.Quantity <= 0 {
			return visitInput{}, domain.ErrInvalidQuantity
		}
		parsed = append(parsed, itemInput{productID: pid, quantity: item.Quantity})
	}

	return visitInput{
		guideID:      gid,
		touristCount: touristCount,
		guideFee:     guideFee.Round(2),
		items:        parsed,
	}, nil
}

func parseID(value string, invalid error) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, invalid
	}
	return id.Int64(), nil
}

func distinctProductIDs(items []itemInput) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.productID]; ok {
			continue
		}
		seen[item.productID] = struct{}{}
		ids = append(ids, item.productID)
	}
	return ids
}

func toResponse(v *domain.Visit, items []domain.LineItem, guide *guidedomain.Guide, productNames map[int64]string) domain.Response {
	resp := domain.Response{
		ID:                  snowflake.ID(v.ID).String(),
		GuideID:             snowflake.ID(v.GuideID).String(),
		TouristCount:        v.TouristCount,
		GuideFee:            v.GuideFee,
		ProductRevenueTotal: v.ProductRevenueTotal,
		TotalCollected:      v.TotalCollected(),
		Items:               make([]domain.ItemResponse, 0, len(items)),
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
	if guide != nil {
		resp.Guide = &domain.GuideSummary{
			ID:     snowflake.ID(guide.ID).String(),
			Name:   guide.Name,
			Active: guide.Active,
		}
	}
	for _, item := range items {
		resp.Items = append(resp.Items, domain.ItemResponse{
			ID:          snowflake.ID(item.ID).String(),
			ProductID:   snowflake.ID(item.ProductID).String(),
			ProductName: productNames[item.ProductID],
			Quantity:    item.Quantity,
			PriceAtSale: item.PriceAtSale,
			Subtotal:    item.Subtotal(),
		})
	}
	return resp
}

// foreignKeyAs reports a row that vanished between validation and write as
// the matching domain error.
func foreignKeyAs(err, target error) error {
	if err != nil && db.IsForeignKeyErr(err) {
		return target
	}
	return err
}
