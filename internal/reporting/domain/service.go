package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	GenerateReport(ctx context.Context, req ReportRequest) (*Report, error)
	RankProductsBySales(ctx context.Context) ([]ProductRanking, error)

	ExportRankingCSV(ctx context.Context, w io.Writer) error
	RenderReportPDF(ctx context.Context, req ReportRequest) ([]byte, error)
}

// ReportRequest bounds a report by visit creation time. Start is inclusive;
// End names a calendar day in the reporting time zone and includes all of it.
type ReportRequest struct {
	Start *time.Time
	End   *time.Time
}

type Report struct {
	Start               *time.Time      `json:"start,omitempty"`
	End                 *time.Time      `json:"end,omitempty"`
	VisitCount          int64           `json:"visit_count"`
	TotalGuideFees      decimal.Decimal `json:"total_guide_fees"`
	TotalProductRevenue decimal.Decimal `json:"total_product_revenue"`
	GrandTotal          decimal.Decimal `json:"grand_total"`
}

type ProductRanking struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Active       bool            `json:"active"`
	UnitsSold    int64           `json:"units_sold"`
	RevenueTotal decimal.Decimal `json:"revenue_total"`
}

var (
	ErrInvalidDateRange = errors.New("invalid_date_range")
)
