package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("event_type", "registered"),
		attribute.String("guide_id", "456"),
		attribute.String("format", "csv"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("event_type"), attrs[0].Key)
	assert.Equal(t, attribute.Key("format"), attrs[1].Key)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordVisitEvent(context.Background(), "registered")
	m.RecordLineItemsPriced(context.Background(), "registered", 2, 10)
	m.RecordReportGenerated(context.Background(), "visits", "json")
	m.RecordRateLimitDenied(context.Background(), "/visits", "exceeded")
}

func TestRecordVisitEventCounts(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := New(Config{ServiceName: "tourbill-test"}, provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordVisitEvent(ctx, "registered")
	m.RecordVisitEvent(ctx, "registered")
	m.RecordLineItemsPriced(ctx, "registered", 3, 85)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, rec := range scope.Metrics {
			if sum, ok := rec.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[rec.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), totals["tourbill_visit_events_total"])
	assert.Equal(t, int64(3), totals["tourbill_line_items_priced_total"])
}
