package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pushmasterhq/pushmaster-api/internal/models"
	"github.com/pushmasterhq/pushmaster-api/pkg/export"
)

func newReportEnv(t *testing.T) (*stubRequestStore, *stubPushStore, *ReportService) {
	t.Helper()
	requests, pushes, _, query := newQueryEnv(t)
	reports := NewReportService(query, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())
	return requests, pushes, reports
}

func seedLivePush(t *testing.T, requests *stubRequestStore, pushes *stubPushStore, ltime time.Time) *models.Push {
	t.Helper()
	ctx := context.Background()
	push := &models.Push{Owner: "pm@example.com", Name: "Monday push", Stage: "stagea"}
	require.NoError(t, pushes.Create(ctx, push))
	pushes.byID[push.ID].State = models.PushStateLive
	pushes.byID[push.ID].LTime = &ltime

	request := &models.Request{Owner: "dev@example.com", Subject: "Ship feature", State: models.RequestStateLive, PushID: &push.ID}
	require.NoError(t, requests.Create(ctx, request))
	return push
}

func TestWeeklyReport(t *testing.T) {
	requests, pushes, reports := newReportEnv(t)
	from := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	seedLivePush(t, requests, pushes, from.AddDate(0, 0, 1))

	report, err := reports.WeeklyReport(context.Background(), from)
	require.NoError(t, err)
	require.Equal(t, from, report.From)
	require.Equal(t, from.AddDate(0, 0, 7), report.To)
	require.Len(t, report.Pushes, 1)
	require.Len(t, report.Pushes[0].Requests, 1)
}

func TestWeeklyReportCSV(t *testing.T) {
	requests, pushes, reports := newReportEnv(t)
	from := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	seedLivePush(t, requests, pushes, from.AddDate(0, 0, 1))

	data, err := reports.WeeklyReportCSV(context.Background(), from)
	require.NoError(t, err)
	body := string(data)
	require.True(t, strings.HasPrefix(body, "Push,Pushmaster,Stage"))
	require.Contains(t, body, "Monday push")
	require.Contains(t, body, "dev")
}

func TestWeeklyReportPDF(t *testing.T) {
	requests, pushes, reports := newReportEnv(t)
	from := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	seedLivePush(t, requests, pushes, from.AddDate(0, 0, 1))

	data, err := reports.WeeklyReportPDF(context.Background(), from)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data[:5]), "%PDF-"))
}
