package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/sultan0alshami/wathiq-sub001/internal/server/models"
)

// now is a test seam for the generation timestamp.
var now = time.Now

// DailyPDF renders the trip report of one day. Text goes through the cp1252
// translator of the core fonts; characters outside it print as '?'.
func DailyPDF(date string, trips []*models.TripReport) ([]byte, error) {
	sum := Summarize(date, trips)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Trip report "+date, true)
	pdf.SetAuthor("Wathiq", true)
	pdf.SetCreationDate(now())
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "DAILY TRIP REPORT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Date      : "+date)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Generated : "+now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Total trips: %d   Approved: %d   Warning: %d   Photos: %d   Offline synced: %d",
		sum.Total, sum.Approved, sum.Warning, sum.Photos, sum.Offline))
	pdf.Ln(10)

	if len(trips) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 7, "No trips recorded for this day.")
		pdf.Ln(7)
	}

	for i, t := range trips {
		pdf.SetFont("Helvetica", "B", 11)
		if t.Status == models.StatusApproved {
			pdf.SetTextColor(22, 163, 74)
		} else {
			pdf.SetTextColor(245, 158, 11)
		}
		pdf.Cell(0, 7, tr(fmt.Sprintf("%d. %s - %s [%s]", i+1, t.BookingID, orDash(t.ClientName), t.Status)))
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "", 10)
		lines := []string{
			fmt.Sprintf("Supplier: %s   Driver: %s   Car: %s", orDash(t.Supplier), orDash(t.DriverName), orDash(t.CarType)),
			fmt.Sprintf("Route: %s -> %s", orDash(t.PickupPoint), orDash(t.DropoffPoint)),
			fmt.Sprintf("Supervisor: %s   Rating: %d/5   Photos: %d", orDash(t.SupervisorName), t.SupervisorRating, len(t.Photos)),
		}
		for _, l := range lines {
			pdf.Cell(0, 5, tr(l))
			pdf.Ln(5)
		}

		var flagged []string
		for _, k := range models.ChecklistKeys {
			if v := t.Checklist[k]; v != "" && v != models.RatingGood {
				flagged = append(flagged, k+"="+v)
			}
		}
		if len(flagged) > 0 {
			pdf.Cell(0, 5, fmt.Sprintf("Checklist: %v", flagged))
			pdf.Ln(5)
		}
		if t.SupervisorNotes != "" {
			pdf.MultiCell(0, 5, tr("Notes: "+t.SupervisorNotes), "", "", false)
		}
		if t.PassengerFeedback != "" {
			pdf.MultiCell(0, 5, tr("Passenger: "+t.PassengerFeedback), "", "", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
