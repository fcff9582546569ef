package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsCountsByRoute(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newHTTPMetrics(registry, Config{ServiceName: "tourbill", Environment: "test"})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/guides/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/guides/1", nil))
	}

	families, err := registry.Gather()
	require.NoError(t, err)

	var counter *dto.MetricFamily
	for _, family := range families {
		if family.GetName() == "tourbill_http_requests_total" {
			counter = family
		}
	}
	require.NotNil(t, counter)
	require.Len(t, counter.GetMetric(), 1)

	metric := counter.GetMetric()[0]
	assert.Equal(t, float64(3), metric.GetCounter().GetValue())

	labels := map[string]string{}
	for _, pair := range metric.GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}
	assert.Equal(t, "/guides/:id", labels["route"])
	assert.Equal(t, "404", labels["status_code"])
	assert.Equal(t, "test", labels["env"])
}
