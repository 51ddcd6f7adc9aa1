// Package reports renders the trips of one day as a PDF summary or a
// spreadsheet export.
package reports

import (
	"github.com/sultan0alshami/wathiq-sub001/internal/server/models"
)

// Summary holds the day totals printed at the top of both documents.
type Summary struct {
	Date     string
	Total    int
	Approved int
	Warning  int
	Photos   int
	Offline  int
}

// Summarize counts trips by status. Trips synced from the offline cache are
// counted separately.
func Summarize(date string, trips []*models.TripReport) Summary {
	s := Summary{Date: date, Total: len(trips)}
	for _, t := range trips {
		if t.Status == models.StatusApproved {
			s.Approved++
		} else {
			s.Warning++
		}
		if t.SyncSource == "offline-cache" {
			s.Offline++
		}
		s.Photos += len(t.Photos)
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
