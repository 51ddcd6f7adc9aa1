package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sultan0alshami/wathiq-sub001/internal/server/models"
)

const sheetName = "Trips"

var headers = []string{
	"Trip ID", "Booking ID", "Date", "Client", "Supplier", "Driver", "Car",
	"Pickup", "Dropoff", "Supervisor", "Rating", "Status", "Sync source",
	"Photos", "Notes", "Passenger feedback",
}

// DailyXLSX exports the trips of one day, one row per trip. Checklist
// items follow the fixed columns.
func DailyXLSX(date string, trips []*models.TripReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	cols := append(append([]string{}, headers...), models.ChecklistKeys...)
	for i, h := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		_ = f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for r, t := range trips {
		values := []any{
			t.ID, t.BookingID, t.Date, t.ClientName, t.Supplier, t.DriverName, t.CarType,
			t.PickupPoint, t.DropoffPoint, t.SupervisorName, t.SupervisorRating, t.Status, t.SyncSource,
			len(t.Photos), t.SupervisorNotes, t.PassengerFeedback,
		}
		for _, k := range models.ChecklistKeys {
			values = append(values, t.Checklist[k])
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write trip %s: %w", t.ID, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(cols))
	if err != nil {
		return nil, err
	}
	_ = f.SetColWidth(sheetName, "A", last, 16)

	if err := f.SetDocProps(&excelize.DocProperties{Title: "Trips " + date, Creator: "Wathiq"}); err != nil {
		return nil, fmt.Errorf("set properties: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
