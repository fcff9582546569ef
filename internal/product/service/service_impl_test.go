package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tourbill/internal/clock"
	"github.com/smallbiznis/tourbill/internal/product/domain"
	"github.com/smallbiznis/tourbill/internal/product/repository"
	"github.com/smallbiznis/tourbill/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupProductService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func price(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestCreateProduct(t *testing.T) {
	svc := setupProductService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, domain.CreateRequest{
		Name:     "Água mineral",
		Price:    price("3.5"),
		Category: "Bebidas Geladas",
		Metadata: map[string]any{"sku": "AGUA-500"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Active)
	assert.Equal(t, "bebidas-geladas", resp.CategorySlug)
	assert.True(t, resp.Price.Equal(decimal.RequireFromString("3.50")))

	got, err := svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(resp.Price))
	assert.Equal(t, "AGUA-500", got.Metadata["sku"])
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	svc := setupProductService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Boné", Price: price("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(context.Background(), domain.CreateRequest{Name: "Boné"})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(context.Background(), domain.CreateRequest{Name: " ", Price: price("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestCreateProductAllowsZeroPrice(t *testing.T) {
	svc := setupProductService(t)

	resp, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Mapa", Price: price("0")})
	require.NoError(t, err)
	assert.True(t, resp.Price.IsZero())
}

func TestListProductsFilters(t *testing.T) {
	svc := setupProductService(t)
	ctx := context.Background()

	drink, err := svc.Create(ctx, domain.CreateRequest{Name: "Suco", Price: price("8"), Category: "Bebidas"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Chapéu", Price: price("40"), Category: "Souvenir"})
	require.NoError(t, err)
	retired, err := svc.Create(ctx, domain.CreateRequest{Name: "Refri", Price: price("6"), Category: "bebidas"})
	require.NoError(t, err)
	_, err = svc.Deactivate(ctx, retired.ID)
	require.NoError(t, err)

	drinks, err := svc.List(ctx, domain.ListRequest{Category: "BEBIDAS"})
	require.NoError(t, err)
	assert.Len(t, drinks, 2)

	active := true
	activeDrinks, err := svc.List(ctx, domain.ListRequest{Category: "Bebidas", Active: &active})
	require.NoError(t, err)
	require.Len(t, activeDrinks, 1)
	assert.Equal(t, drink.ID, activeDrinks[0].ID)
}

func TestUpdateProductPrice(t *testing.T) {
	svc := setupProductService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Suco", Price: price("8")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Price: price("9.999")})
	require.NoError(t, err)
	assert.Equal(t, "10.00", updated.Price.StringFixed(2))
	assert.Equal(t, "Suco", updated.Name)

	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Price: price("-0.01")})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Update(ctx, domain.UpdateRequest{ID: "999", Price: price("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeactivateProductIsIdempotent(t *testing.T) {
	svc := setupProductService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Suco", Price: price("8")})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		resp, err := svc.Deactivate(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, resp.Active)
	}
}

func TestFindByIDsSkipsUnknown(t *testing.T) {
	svc := setupProductService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, domain.CreateRequest{Name: "A", Price: price("1")})
	require.NoError(t, err)
	b, err := svc.Create(ctx, domain.CreateRequest{Name: "B", Price: price("2")})
	require.NoError(t, err)

	aID, _ := snowflake.ParseString(a.ID)
	bID, _ := snowflake.ParseString(b.ID)

	items, err := svc.FindByIDs(ctx, []int64{aID.Int64(), bID.Int64(), 42})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	empty, err := svc.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
