package export

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/tourbill/internal/reporting/domain"
)

// ReportDocument is everything printed on a visit report.
type ReportDocument struct {
	Title       string
	GeneratedAt time.Time
	Location    *time.Location
	Report      domain.Report
	Visits      []domain.VisitRow
}

// RenderReportPDF renders the report summary followed by one row per visit.
func RenderReportPDF(doc ReportDocument) ([]byte, error) {
	loc := doc.Location
	if loc == nil {
		loc = time.UTC
	}
	title := doc.Title
	if title == "" {
		title = "Visit report"
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Period: "+formatPeriod(doc.Report, loc), props.Text{Size: 9}),
			text.New("Generated: "+doc.GeneratedAt.In(loc).Format("2006-01-02 15:04 MST"), props.Text{Size: 9, Top: 5}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Visits: %d", doc.Report.VisitCount), props.Text{Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(8,
		text.NewCol(8, "Guide fees", props.Text{Size: 10}),
		text.NewCol(4, doc.Report.TotalGuideFees.StringFixed(2), props.Text{Size: 10, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(8, "Product revenue", props.Text{Size: 10}),
		text.NewCol(4, doc.Report.TotalProductRevenue.StringFixed(2), props.Text{Size: 10, Align: align.Right}),
	)
	m.AddRow(10,
		text.NewCol(8, "Grand total", props.Text{Size: 11, Style: fontstyle.Bold}),
		text.NewCol(4, doc.Report.GrandTotal.StringFixed(2), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)

	m.AddRow(10,
		text.NewCol(2, "Date", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3}),
		text.NewCol(3, "Visit", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3}),
		text.NewCol(2, "Guide", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3}),
		text.NewCol(1, "Tourists", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3, Align: align.Right}),
		text.NewCol(2, "Guide fee", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3, Align: align.Right}),
		text.NewCol(2, "Products", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, v := range doc.Visits {
		m.AddRow(7,
			text.NewCol(2, v.CreatedAt.In(loc).Format("2006-01-02"), props.Text{Size: 8}),
			text.NewCol(3, snowflake.ID(v.ID).String(), props.Text{Size: 8}),
			text.NewCol(2, v.GuideName, props.Text{Size: 8}),
			text.NewCol(1, fmt.Sprintf("%d", v.TouristCount), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, v.GuideFee.StringFixed(2), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, v.ProductRevenueTotal.StringFixed(2), props.Text{Size: 8, Align: align.Right}),
		)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}

func formatPeriod(report domain.Report, loc *time.Location) string {
	start := "beginning"
	if report.Start != nil {
		start = report.Start.In(loc).Format("2006-01-02")
	}
	end := "today"
	if report.End != nil {
		end = report.End.In(loc).Format("2006-01-02")
	}
	return start + " to " + end
}
