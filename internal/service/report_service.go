package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pushmasterhq/pushmaster-api/internal/dto"
	"github.com/pushmasterhq/pushmaster-api/internal/models"
	"github.com/pushmasterhq/pushmaster-api/pkg/export"
)

var weeklyReportHeaders = []string{
	"Push", "Pushmaster", "Stage", "Went live", "Requests", "Request owners",
}

// ReportService assembles the weekly deploy report: every push that
// went live in a seven-day window plus the requests it shipped.
type ReportService struct {
	query  *QueryService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(query *QueryService, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ReportService {
	return &ReportService{query: query, csv: csv, pdf: pdf, logger: logger}
}

// WeeklyReport returns the pushes that went live in the week starting
// at from, each with its request set.
func (s *ReportService) WeeklyReport(ctx context.Context, from time.Time) (*dto.WeeklyReport, error) {
	pushes, err := s.query.PushesForWeekOf(ctx, from)
	if err != nil {
		return nil, err
	}

	report := &dto.WeeklyReport{
		From:   from,
		To:     from.AddDate(0, 0, 7),
		Pushes: make([]dto.WeeklyReportPush, 0, len(pushes)),
	}
	for i := range pushes {
		requests, err := s.query.PushRequests(ctx, &pushes[i])
		if err != nil {
			return nil, err
		}
		report.Pushes = append(report.Pushes, dto.WeeklyReportPush{
			Push:     pushes[i],
			Requests: requests,
		})
	}
	return report, nil
}

// WeeklyReportCSV renders the weekly report as CSV.
func (s *ReportService) WeeklyReportCSV(ctx context.Context, from time.Time) ([]byte, error) {
	report, err := s.WeeklyReport(ctx, from)
	if err != nil {
		return nil, err
	}
	return s.csv.Render(weeklyReportDataset(report))
}

// WeeklyReportPDF renders the weekly report as PDF.
func (s *ReportService) WeeklyReportPDF(ctx context.Context, from time.Time) ([]byte, error) {
	report, err := s.WeeklyReport(ctx, from)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Deploys for the week of %s", report.From.Format("2006-01-02"))
	return s.pdf.Render(weeklyReportDataset(report), title)
}

func weeklyReportDataset(report *dto.WeeklyReport) export.Dataset {
	rows := make([]map[string]string, 0, len(report.Pushes))
	for _, entry := range report.Pushes {
		owners := make(map[string]struct{}, len(entry.Requests))
		for _, request := range entry.Requests {
			owners[models.Nickname(request.Owner)] = struct{}{}
		}
		ownerList := make([]string, 0, len(owners))
		for owner := range owners {
			ownerList = append(ownerList, owner)
		}
		sort.Strings(ownerList)

		wentLive := ""
		if entry.Push.LTime != nil {
			wentLive = entry.Push.LTime.Format(time.RFC3339)
		}
		rows = append(rows, map[string]string{
			"Push":           entry.Push.DisplayName(),
			"Pushmaster":     models.Nickname(entry.Push.Owner),
			"Stage":          entry.Push.Stage,
			"Went live":      wentLive,
			"Requests":       strconv.Itoa(len(entry.Requests)),
			"Request owners": strings.Join(ownerList, ", "),
		})
	}
	return export.Dataset{Headers: weeklyReportHeaders, Rows: rows}
}
