package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pushmasterhq/pushmaster-api/internal/dto"
	appErrors "github.com/pushmasterhq/pushmaster-api/pkg/errors"
	"github.com/pushmasterhq/pushmaster-api/pkg/response"
)

type reportService interface {
	WeeklyReport(ctx context.Context, from time.Time) (*dto.WeeklyReport, error)
	WeeklyReportCSV(ctx context.Context, from time.Time) ([]byte, error)
	WeeklyReportPDF(ctx context.Context, from time.Time) ([]byte, error)
}

// ReportHandler exposes the weekly deploy report.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler builds a new handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Weekly godoc
// @Summary Weekly deploy report
// @Tags Reports
// @Produce json
// @Param date path string true "Week start (YYYY-MM-DD)"
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {object} response.Envelope
// @Router /reports/weekly/{date} [get]
func (h *ReportHandler) Weekly(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}

	switch c.Query("format") {
	case "":
		report, err := h.reports.WeeklyReport(c.Request.Context(), from)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, report)
	case "csv":
		data, err := h.reports.WeeklyReportCSV(c.Request.Context(), from)
		if err != nil {
			response.Error(c, err)
			return
		}
		h.attachment(c, "text/csv", fmt.Sprintf("deploys-%s.csv", from.Format("2006-01-02")), data)
	case "pdf":
		data, err := h.reports.WeeklyReportPDF(c.Request.Context(), from)
		if err != nil {
			response.Error(c, err)
			return
		}
		h.attachment(c, "application/pdf", fmt.Sprintf("deploys-%s.pdf", from.Format("2006-01-02")), data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

func (h *ReportHandler) attachment(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
