package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tourbill/internal/clock"
	"github.com/smallbiznis/tourbill/internal/guide/domain"
	"github.com/smallbiznis/tourbill/internal/guide/repository"
	"github.com/smallbiznis/tourbill/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupGuideService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Guide{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake
}

func boolPtr(v bool) *bool     { return &v }
func strPtr(v string) *string { return &v }

func TestCreateGuideDefaultsActive(t *testing.T) {
	svc, _ := setupGuideService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, domain.CreateRequest{Name: "  Ana ", Phone: "1199"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", resp.Name)
	assert.True(t, resp.Active)

	got, err := svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)
	assert.Equal(t, "1199", got.Phone)
}

func TestCreateGuideValidation(t *testing.T) {
	svc, _ := setupGuideService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: " ", Phone: "1"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Bo", Phone: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)
}

func TestGetGuideErrors(t *testing.T) {
	svc, _ := setupGuideService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Get(ctx, "123456")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListGuidesFiltersActive(t *testing.T) {
	svc, fake := setupGuideService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateRequest{Name: "Ana", Phone: "1"})
	require.NoError(t, err)
	fake.Advance(time.Minute)
	second, err := svc.Create(ctx, domain.CreateRequest{Name: "Bia", Phone: "2", Active: boolPtr(false)})
	require.NoError(t, err)

	all, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	active, err := svc.List(ctx, domain.ListRequest{Active: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)
}

func TestUpdateGuideReplacesSetFields(t *testing.T) {
	svc, fake := setupGuideService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Ana", Phone: "1"})
	require.NoError(t, err)

	fake.Advance(time.Hour)
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Phone: strPtr("2")})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, "2", updated.Phone)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Name: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestDeactivateGuideIsIdempotent(t *testing.T) {
	svc, _ := setupGuideService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Ana", Phone: "1"})
	require.NoError(t, err)

	resp, err := svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, resp.Active)

	resp, err = svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, resp.Active)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}
