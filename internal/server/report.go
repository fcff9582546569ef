package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reportingdomain "github.com/smallbiznis/tourbill/internal/reporting/domain"
)

// GetVisitReport totals visits between start and end. format=pdf renders a
// printable report instead of JSON.
func (s *Server) GetVisitReport(c *gin.Context) {
	loc := s.reportingCfg.Location()

	start, err := parseOptionalTime(c.Query("start"), loc)
	if err != nil {
		AbortWithError(c, newValidationError("start", "invalid_start", "start must be YYYY-MM-DD or RFC3339"))
		return
	}
	end, err := parseOptionalTime(c.Query("end"), loc)
	if err != nil {
		AbortWithError(c, newValidationError("end", "invalid_end", "end must be YYYY-MM-DD or RFC3339"))
		return
	}

	req := reportingdomain.ReportRequest{Start: start, End: end}
	ctx := c.Request.Context()

	switch strings.ToLower(strings.TrimSpace(c.Query("format"))) {
	case "", "json":
		resp, err := s.reportSvc.GenerateReport(ctx, req)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
	case "pdf":
		doc, err := s.reportSvc.RenderReportPDF(ctx, req)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="visit-report-%s.pdf"`, reportFileSuffix(req)))
		c.Data(http.StatusOK, "application/pdf", doc)
	default:
		AbortWithError(c, newValidationError("format", "invalid_format", "format must be json or pdf"))
	}
}

func reportFileSuffix(req reportingdomain.ReportRequest) string {
	from, until := "all", "all"
	if req.Start != nil {
		from = req.Start.Format(dateOnlyLayout)
	}
	if req.End != nil {
		until = req.End.Format(dateOnlyLayout)
	}
	return from + "_" + until
}
