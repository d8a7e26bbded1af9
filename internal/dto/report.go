package dto

import (
	"time"

	"github.com/pushmasterhq/pushmaster-api/internal/models"
)

// WeeklyReportPush pairs a live push with the requests it shipped.
type WeeklyReportPush struct {
	Push     models.Push      `json:"push"`
	Requests []models.Request `json:"requests"`
}

// WeeklyReport summarizes everything that went live in a seven-day
// window.
type WeeklyReport struct {
	From   time.Time          `json:"from"`
	To     time.Time          `json:"to"`
	Pushes []WeeklyReportPush `json:"pushes"`
}
