// Package models holds the server-side trip report types: the sync request
// accepted over HTTP and the rows stored in PostgreSQL.
package models

import (
	"time"
)

// MaxPhotos is the maximum number of photos accepted with one report.
const MaxPhotos = 6

const (
	StatusApproved = "approved"
	StatusWarning  = "warning"
)

const (
	RatingGood   = "good"
	RatingNormal = "normal"
	RatingBad    = "bad"
)

// ChecklistKeys lists the inspection items in display order.
var ChecklistKeys = []string{
	"carCleanliness",
	"carSmell",
	"driverAppearance",
	"driverBehavior",
	"punctuality",
	"airConditioning",
}

// MergeChecklist fills items missing from c with "good".
func MergeChecklist(c map[string]string) map[string]string {
	out := make(map[string]string, len(ChecklistKeys)+len(c))
	for _, k := range ChecklistKeys {
		out[k] = RatingGood
	}
	for k, v := range c {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// TripPayload is the "trip" object of a sync request.
type TripPayload struct {
	ID                string            `json:"id" validate:"required,max=128"`
	BookingID         string            `json:"bookingId" validate:"required,max=128"`
	Date              string            `json:"date" validate:"required,datetime=2006-01-02"`
	SourceRef         string            `json:"sourceRef"`
	BookingSource     string            `json:"bookingSource"`
	Supplier          string            `json:"supplier"`
	ClientName        string            `json:"clientName"`
	DriverName        string            `json:"driverName"`
	CarType           string            `json:"carType"`
	ParkingLocation   string            `json:"parkingLocation"`
	PickupPoint       string            `json:"pickupPoint"`
	DropoffPoint      string            `json:"dropoffPoint"`
	SupervisorName    string            `json:"supervisorName"`
	SupervisorRating  int               `json:"supervisorRating" validate:"min=0,max=5"`
	SupervisorNotes   string            `json:"supervisorNotes"`
	PassengerFeedback string            `json:"passengerFeedback"`
	Checklist         map[string]string `json:"checklist" validate:"dive,oneof=good normal bad"`
	Status            string            `json:"status" validate:"omitempty,oneof=approved warning"`
	CreatedBy         string            `json:"createdBy"`
	SyncSource        string            `json:"syncSource"`
	Offline           bool              `json:"offline"`
}

// PhotoPayload is one inline photo of a sync request.
type PhotoPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	MimeType string `json:"mimeType" validate:"required"`
	Size     int64  `json:"size" validate:"min=0"`
	Base64   string `json:"base64" validate:"required"`
}

// TripSyncRequest is the body of POST /api/trips/sync.
type TripSyncRequest struct {
	Trip        TripPayload    `json:"trip"`
	Attachments []PhotoPayload `json:"attachments" validate:"max=6,dive"`
}

// TripSyncResponse is returned after a report has been stored.
type TripSyncResponse struct {
	Success        bool        `json:"success"`
	TripID         string      `json:"tripId"`
	PhotosUploaded int         `json:"photosUploaded"`
	Photos         []TripPhoto `json:"photos"`
}

// TripReport is a row of trip_reports together with its photos.
type TripReport struct {
	ID                string            `db:"id" json:"id"`
	BookingID         string            `db:"booking_id" json:"bookingId"`
	Date              string            `db:"day_date" json:"date"`
	SourceRef         string            `db:"source_ref" json:"sourceRef"`
	BookingSource     string            `db:"booking_source" json:"bookingSource"`
	Supplier          string            `db:"supplier" json:"supplier"`
	ClientName        string            `db:"client_name" json:"clientName"`
	DriverName        string            `db:"driver_name" json:"driverName"`
	CarType           string            `db:"car_type" json:"carType"`
	ParkingLocation   string            `db:"parking_location" json:"parkingLocation"`
	PickupPoint       string            `db:"pickup_point" json:"pickupPoint"`
	DropoffPoint      string            `db:"dropoff_point" json:"dropoffPoint"`
	SupervisorName    string            `db:"supervisor_name" json:"supervisorName"`
	SupervisorRating  int               `db:"supervisor_rating" json:"supervisorRating"`
	SupervisorNotes   string            `db:"supervisor_notes" json:"supervisorNotes"`
	PassengerFeedback string            `db:"passenger_feedback" json:"passengerFeedback"`
	Checklist         map[string]string `db:"checklist" json:"checklist"`
	Status            string            `db:"status" json:"status"`
	SyncSource        string            `db:"sync_source" json:"syncSource"`
	CreatedBy         string            `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"createdAt"`
	Photos            []TripPhoto       `db:"-" json:"attachments"`
}

// TripPhoto is a row of trip_photos.
type TripPhoto struct {
	ID          string `db:"id" json:"id,omitempty"`
	TripID      string `db:"trip_id" json:"trip_id"`
	StoragePath string `db:"storage_path" json:"storage_path"`
	FileName    string `db:"file_name" json:"file_name"`
	FileSize    int64  `db:"file_size" json:"file_size"`
	MimeType    string `db:"mime_type" json:"mime_type"`
	URL         string `db:"-" json:"url,omitempty"`
}

// DeriveStatus returns "approved" when every checklist item is good and
// the rating is at least 3, otherwise "warning".
func DeriveStatus(checklist map[string]string, rating int) string {
	for _, v := range checklist {
		if v != RatingGood {
			return StatusWarning
		}
	}
	if rating < 3 {
		return StatusWarning
	}
	return StatusApproved
}

// FromPayload maps a validated payload onto a row. Checklist defaults are
// applied and an empty status is derived.
func FromPayload(p TripPayload) *TripReport {
	checklist := MergeChecklist(p.Checklist)
	status := p.Status
	if status == "" {
		status = DeriveStatus(checklist, p.SupervisorRating)
	}
	return &TripReport{
		ID:                p.ID,
		BookingID:         p.BookingID,
		Date:              p.Date,
		SourceRef:         p.SourceRef,
		BookingSource:     p.BookingSource,
		Supplier:          p.Supplier,
		ClientName:        p.ClientName,
		DriverName:        p.DriverName,
		CarType:           p.CarType,
		ParkingLocation:   p.ParkingLocation,
		PickupPoint:       p.PickupPoint,
		DropoffPoint:      p.DropoffPoint,
		SupervisorName:    p.SupervisorName,
		SupervisorRating:  p.SupervisorRating,
		SupervisorNotes:   p.SupervisorNotes,
		PassengerFeedback: p.PassengerFeedback,
		Checklist:         checklist,
		Status:            status,
		SyncSource:        p.SyncSource,
		CreatedBy:         p.CreatedBy,
	}
}
