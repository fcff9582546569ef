package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tourbill/internal/clock"
	"github.com/smallbiznis/tourbill/internal/config"
	guiderepository "github.com/smallbiznis/tourbill/internal/guide/repository"
	guideservice "github.com/smallbiznis/tourbill/internal/guide/service"
	"github.com/smallbiznis/tourbill/internal/migration"
	"github.com/smallbiznis/tourbill/internal/observability"
	productrepository "github.com/smallbiznis/tourbill/internal/product/repository"
	productservice "github.com/smallbiznis/tourbill/internal/product/service"
	"github.com/smallbiznis/tourbill/internal/ratelimit"
	reportingrepository "github.com/smallbiznis/tourbill/internal/reporting/repository"
	reportingservice "github.com/smallbiznis/tourbill/internal/reporting/service"
	visitrepository "github.com/smallbiznis/tourbill/internal/visit/repository"
	visitservice "github.com/smallbiznis/tourbill/internal/visit/service"
	"github.com/smallbiznis/tourbill/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "secret-key"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *errorPayload   `json:"error"`
}

type fakeLimiter struct {
	allowed bool
	calls   int
}

func (f *fakeLimiter) AllowWrite(ctx context.Context, client string) (*ratelimit.RateLimitResult, error) {
	_ = ctx
	_ = client
	f.calls++
	return &ratelimit.RateLimitResult{
		Allowed:    f.allowed,
		Limit:      1,
		RetryAfter: 1500 * time.Millisecond,
	}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	reportingCfg, err := config.NewStaticReportingConfig(config.DefaultReportingConfig())
	require.NoError(t, err)

	guideRepo := guiderepository.Provide()
	guides := guideservice.New(guideservice.Params{DB: conn, Log: log, GenID: node, Clock: fake, Repo: guideRepo})
	products := productservice.New(productservice.Params{DB: conn, Log: log, GenID: node, Clock: fake, Repo: productrepository.Provide()})
	visits := visitservice.New(visitservice.Params{
		DB:         conn,
		Log:        log,
		GenID:      node,
		Clock:      fake,
		Repo:       visitrepository.Provide(),
		GuideRepo:  guideRepo,
		ProductSvc: products,
	})
	reports := reportingservice.New(reportingservice.Params{
		DB:     conn,
		Log:    log,
		Clock:  fake,
		Repo:   reportingrepository.Provide(),
		Config: reportingCfg,
	})

	return NewServer(ServerParams{
		Gin:          NewEngine(observability.Config{Environment: "test"}, nil, log),
		Cfg:          config.Config{APIKey: testAPIKey},
		GuideSvc:     guides,
		ProductSvc:   products,
		VisitSvc:     visits,
		ReportSvc:    reports,
		ReportingCfg: reportingCfg,
	})
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAPIKey, testAPIKey)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	return *env.Error
}

func createGuide(t *testing.T, s *Server, active bool) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/guides", map[string]any{"name": "Ana", "phone": "+55 11 9999", "active": active})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &out)
	return out.ID
}

func createProduct(t *testing.T, s *Server, name, price string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/products", map[string]any{"name": name, "price": price, "category": "Drinks"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &out)
	return out.ID
}

func TestMissingAPIKeyIsUnauthorized(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/guides", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)

	req = httptest.NewRequest(http.MethodGet, "/guides", nil)
	req.Header.Set(HeaderAPIKey, "wrong")
	rec = httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthNeedsNoAPIKey(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterVisitEndToEnd(t *testing.T) {
	s := newTestServer(t)
	guideID := createGuide(t, s, true)
	water := createProduct(t, s, "Water", "5.00")
	hat := createProduct(t, s, "Hat", "20.00")

	rec := do(t, s, http.MethodPost, "/visits", map[string]any{
		"guide_id":      guideID,
		"tourist_count": 4,
		"guide_fee":     "50.00",
		"items": []map[string]any{
			{"product_id": water, "quantity": 3},
			{"product_id": hat, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var visit struct {
		ID                  string          `json:"id"`
		ProductRevenueTotal decimal.Decimal `json:"product_revenue_total"`
		TotalCollected      decimal.Decimal `json:"total_collected"`
		Items               []struct {
			ProductID string `json:"product_id"`
		} `json:"items"`
	}
	decodeData(t, rec, &visit)
	assert.True(t, decimal.RequireFromString("35").Equal(visit.ProductRevenueTotal))
	assert.True(t, decimal.RequireFromString("85").Equal(visit.TotalCollected))
	assert.Len(t, visit.Items, 2)

	rec = do(t, s, http.MethodGet, "/visits/"+visit.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/visits/report?start=2024-06-01&end=2024-06-01", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report struct {
		VisitCount int64           `json:"visit_count"`
		GrandTotal decimal.Decimal `json:"grand_total"`
	}
	decodeData(t, rec, &report)
	assert.Equal(t, int64(1), report.VisitCount)
	assert.True(t, decimal.RequireFromString("85").Equal(report.GrandTotal))

	rec = do(t, s, http.MethodDelete, "/visits/"+visit.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/visits/"+visit.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterVisitInactiveGuideConflicts(t *testing.T) {
	s := newTestServer(t)
	guideID := createGuide(t, s, false)

	rec := do(t, s, http.MethodPost, "/visits", map[string]any{
		"guide_id":  guideID,
		"guide_fee": "10",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_state", decodeError(t, rec).Type)
}

func TestRegisterVisitUnknownProductIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	guideID := createGuide(t, s, true)

	rec := do(t, s, http.MethodPost, "/visits", map[string]any{
		"guide_id":  guideID,
		"guide_fee": "10",
		"items":     []map[string]any{{"product_id": "999999", "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "unknown_product", payload.Errors[0].Code)
}

func TestCreateGuideMissingFieldsReportsFields(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/guides", map[string]any{"name": "Ana"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.NotEmpty(t, payload.Errors)
	assert.Equal(t, "phone", payload.Errors[0].Field)
	assert.Equal(t, "required", payload.Errors[0].Code)
}

func TestGuideDeactivateIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	guideID := createGuide(t, s, true)

	for i := 0; i < 2; i++ {
		rec := do(t, s, http.MethodDelete, "/guides/"+guideID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var out struct {
			Active bool `json:"active"`
		}
		decodeData(t, rec, &out)
		assert.False(t, out.Active)
	}
}

func TestProductRankingCSV(t *testing.T) {
	s := newTestServer(t)
	createProduct(t, s, "Water", "5.00")

	rec := do(t, s, http.MethodGet, "/products/ranking?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "Water")

	rec = do(t, s, http.MethodGet, "/products/ranking?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportRejectsBadDates(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/visits/report?start=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/visits/report?start=2024-06-02&end=2024-06-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_date_range", decodeError(t, rec).Errors[0].Code)
}

func TestWriteRateLimitDenies(t *testing.T) {
	s := newTestServer(t)
	limiter := &fakeLimiter{allowed: false}
	s.writeLimiter = limiter

	rec := do(t, s, http.MethodPost, "/guides", map[string]any{"name": "Ana", "phone": "1"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decodeError(t, rec).Type)

	rec = do(t, s, http.MethodGet, "/guides", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, limiter.calls)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "guide_id", toSnake("GuideID"))
	assert.Equal(t, "tourist_count", toSnake("TouristCount"))
	assert.Equal(t, "phone", toSnake("Phone"))
}
