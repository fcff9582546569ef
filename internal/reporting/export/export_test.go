package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tourbill/internal/reporting/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRankingCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRankingCSV(&buf, []domain.ProductRanking{
		{ProductID: "2", Name: "Hat", Category: "Souvenir", Active: true, UnitsSold: 3, RevenueTotal: decimal.RequireFromString("60")},
		{ProductID: "1", Name: "Water", Active: false, UnitsSold: 0, RevenueTotal: decimal.Zero},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "position,product_id,name,category,active,units_sold,revenue_total", lines[0])
	assert.Equal(t, "1,2,Hat,Souvenir,true,3,60.00", lines[1])
	assert.Equal(t, "2,1,Water,,false,0,0.00", lines[2])
}

func TestRenderReportPDF(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out, err := RenderReportPDF(ReportDocument{
		GeneratedAt: start,
		Report: domain.Report{
			Start:               &start,
			End:                 &start,
			VisitCount:          1,
			TotalGuideFees:      decimal.RequireFromString("50"),
			TotalProductRevenue: decimal.RequireFromString("35"),
			GrandTotal:          decimal.RequireFromString("85"),
		},
		Visits: []domain.VisitRow{{
			ID:                  1,
			GuideID:             2,
			GuideName:           "Ana",
			TouristCount:        4,
			GuideFee:            decimal.RequireFromString("50"),
			ProductRevenueTotal: decimal.RequireFromString("35"),
			CreatedAt:           start.Add(10 * time.Hour),
		}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
