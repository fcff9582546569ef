package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tourbill/internal/clock"
	"github.com/smallbiznis/tourbill/internal/config"
	"github.com/smallbiznis/tourbill/internal/observability/metrics"
	"github.com/smallbiznis/tourbill/internal/reporting/domain"
	"github.com/smallbiznis/tourbill/internal/reporting/export"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	Config  *config.ReportingConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    domain.Repository
	config  *config.ReportingConfigHolder
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("reporting.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		config:  p.Config,
		metrics: p.Metrics,
	}
}

func (s *Service) GenerateReport(ctx context.Context, req domain.ReportRequest) (*domain.Report, error) {
	report, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	s.recordReport(ctx, "visits", "json")
	return report, nil
}

func (s *Service) RankProductsBySales(ctx context.Context) ([]domain.ProductRanking, error) {
	rows, err := s.repo.ProductSales(ctx, s.db)
	if err != nil {
		return nil, err
	}

	// Rows arrive ordered by product id, so a stable sort keeps id order on ties.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Revenue.GreaterThan(rows[j].Revenue)
	})

	ranking := make([]domain.ProductRanking, 0, len(rows))
	for _, row := range rows {
		ranking = append(ranking, domain.ProductRanking{
			ProductID:    snowflake.ID(row.ProductID).String(),
			Name:         row.Name,
			Category:     row.Category,
			Active:       row.Active,
			UnitsSold:    row.UnitsSold,
			RevenueTotal: row.Revenue.Round(2),
		})
	}
	return ranking, nil
}

func (s *Service) ExportRankingCSV(ctx context.Context, w io.Writer) error {
	ranking, err := s.RankProductsBySales(ctx)
	if err != nil {
		return err
	}
	if err := export.WriteRankingCSV(w, ranking); err != nil {
		return err
	}
	s.recordReport(ctx, "ranking", "csv")
	return nil
}

func (s *Service) RenderReportPDF(ctx context.Context, req domain.ReportRequest) ([]byte, error) {
	report, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	visits, err := s.repo.ListVisits(ctx, s.db, s.window(req))
	if err != nil {
		return nil, err
	}

	out, err := export.RenderReportPDF(export.ReportDocument{
		GeneratedAt: s.clock.Now(),
		Location:    s.config.Location(),
		Report:      *report,
		Visits:      visits,
	})
	if err != nil {
		return nil, err
	}

	s.recordReport(ctx, "visits", "pdf")
	s.log.Info("visit report rendered",
		zap.Int64("visit_count", report.VisitCount),
		zap.Int("bytes", len(out)),
	)
	return out, nil
}

func (s *Service) generate(ctx context.Context, req domain.ReportRequest) (*domain.Report, error) {
	if req.Start != nil && req.End != nil && req.Start.After(*req.End) {
		return nil, domain.ErrInvalidDateRange
	}

	summary, err := s.repo.Summarize(ctx, s.db, s.window(req))
	if err != nil {
		return nil, err
	}

	fees := summary.TotalGuideFees.Round(2)
	revenue := summary.TotalProductRevenue.Round(2)
	return &domain.Report{
		Start:               req.Start,
		End:                 req.End,
		VisitCount:          summary.VisitCount,
		TotalGuideFees:      fees,
		TotalProductRevenue: revenue,
		GrandTotal:          fees.Add(revenue),
	}, nil
}

// window turns the request into a half-open range. The end bound moves to the
// start of the following calendar day in the reporting time zone.
func (s *Service) window(req domain.ReportRequest) domain.Window {
	var window domain.Window
	if req.Start != nil {
		from := req.Start.UTC()
		window.From = &from
	}
	if req.End != nil {
		until := startOfDay(*req.End, s.config.Location()).AddDate(0, 0, 1).UTC()
		window.Until = &until
	}
	return window
}

func (s *Service) recordReport(ctx context.Context, kind, format string) {
	if s.metrics != nil {
		s.metrics.RecordReportGenerated(ctx, kind, format)
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
