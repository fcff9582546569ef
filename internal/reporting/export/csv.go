package export

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/smallbiznis/tourbill/internal/reporting/domain"
)

type rankingRow struct {
	Position     int    `csv:"position"`
	ProductID    string `csv:"product_id"`
	Name         string `csv:"name"`
	Category     string `csv:"category"`
	Active       bool   `csv:"active"`
	UnitsSold    int64  `csv:"units_sold"`
	RevenueTotal string `csv:"revenue_total"`
}

// WriteRankingCSV writes the ranking in its given order, one product per row.
func WriteRankingCSV(w io.Writer, ranking []domain.ProductRanking) error {
	rows := make([]*rankingRow, 0, len(ranking))
	for i, item := range ranking {
		rows = append(rows, &rankingRow{
			Position:     i + 1,
			ProductID:    item.ProductID,
			Name:         item.Name,
			Category:     item.Category,
			Active:       item.Active,
			UnitsSold:    item.UnitsSold,
			RevenueTotal: item.RevenueTotal.StringFixed(2),
		})
	}
	return gocsv.Marshal(rows, w)
}
