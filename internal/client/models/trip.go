// Package models defines the trip-report types persisted by the offline
// queue and exchanged with the sync endpoint.
package models

import (
	"maps"
	"time"
)

// ChecklistRating is the supervisor's verdict on one checklist item.
type ChecklistRating string

const (
	RatingGood   ChecklistRating = "good"
	RatingNormal ChecklistRating = "normal"
	RatingBad    ChecklistRating = "bad"
)

// Valid reports whether r is one of the known ratings.
func (r ChecklistRating) Valid() bool {
	switch r {
	case RatingGood, RatingNormal, RatingBad:
		return true
	}
	return false
}

// Checklist keys filled in by the trip supervisor.
const (
	ChecklistCarCleanliness   = "carCleanliness"
	ChecklistCarSmell         = "carSmell"
	ChecklistDriverAppearance = "driverAppearance"
	ChecklistDriverBehavior   = "driverBehavior"
	ChecklistPunctuality      = "punctuality"
	ChecklistAirConditioning  = "airConditioning"
)

// ChecklistKeys lists every known checklist key in display order.
var ChecklistKeys = []string{
	ChecklistCarCleanliness,
	ChecklistCarSmell,
	ChecklistDriverAppearance,
	ChecklistDriverBehavior,
	ChecklistPunctuality,
	ChecklistAirConditioning,
}

// TripChecklist maps checklist keys to ratings.
type TripChecklist map[string]ChecklistRating

// DefaultChecklist returns every known key rated good.
func DefaultChecklist() TripChecklist {
	c := make(TripChecklist, len(ChecklistKeys))
	for _, k := range ChecklistKeys {
		c[k] = RatingGood
	}
	return c
}

// WithDefaults returns a copy of c with missing known keys set to good.
func (c TripChecklist) WithDefaults() TripChecklist {
	out := DefaultChecklist()
	maps.Copy(out, c)
	return out
}

// TripStatus is the supervisor verdict stored with a report.
type TripStatus string

const (
	TripApproved TripStatus = "approved"
	TripWarning  TripStatus = "warning"
)

// DeriveStatus approves a trip only when every checklist item is good and
// the supervisor rating is at least 3.
func DeriveStatus(c TripChecklist, rating int) TripStatus {
	for _, v := range c {
		if v != RatingGood {
			return TripWarning
		}
	}
	if rating < 3 {
		return TripWarning
	}
	return TripApproved
}

// Sync sources recorded on the payload.
const (
	SyncSourceWeb     = "web"
	SyncSourceOffline = "offline-cache"
)

// TripReportInput is the report body sent to the sync endpoint.
type TripReportInput struct {
	ID                string        `json:"id"`
	BookingID         string        `json:"bookingId"`
	Date              string        `json:"date"`
	SourceRef         string        `json:"sourceRef"`
	BookingSource     string        `json:"bookingSource"`
	Supplier          string        `json:"supplier"`
	ClientName        string        `json:"clientName"`
	DriverName        string        `json:"driverName"`
	CarType           string        `json:"carType"`
	ParkingLocation   string        `json:"parkingLocation"`
	PickupPoint       string        `json:"pickupPoint"`
	DropoffPoint      string        `json:"dropoffPoint"`
	SupervisorName    string        `json:"supervisorName"`
	SupervisorRating  int           `json:"supervisorRating"`
	SupervisorNotes   string        `json:"supervisorNotes,omitempty"`
	PassengerFeedback string        `json:"passengerFeedback,omitempty"`
	Checklist         TripChecklist `json:"checklist"`
	Status            TripStatus    `json:"status"`
	CreatedBy         string        `json:"createdBy,omitempty"`
	SyncSource        string        `json:"syncSource,omitempty"`
	Offline           bool          `json:"offline,omitempty"`
}

// SyncStatus is the local delivery state of a queued record.
type SyncStatus string

const (
	StatusPending SyncStatus = "pending"
	StatusSynced  SyncStatus = "synced"
	StatusFailed  SyncStatus = "failed"
)

// UnknownSyncError replaces an empty failure message.
const UnknownSyncError = "unknown_error"

// OfflineTripRecord is one queued report awaiting delivery.
// ID always equals Payload.ID.
type OfflineTripRecord struct {
	ID              string                `json:"id"`
	Payload         TripReportInput       `json:"payload"`
	Attachments     []TripPhotoAttachment `json:"attachments"`
	CreatedAt       time.Time             `json:"createdAt"`
	Status          SyncStatus            `json:"status"`
	Error           string                `json:"error,omitempty"`
	LastSyncAttempt *time.Time            `json:"lastSyncAttempt,omitempty"`
}

// NewOfflineRecord wraps a payload into a pending queue record.
func NewOfflineRecord(input TripReportInput, attachments []TripPhotoAttachment, now time.Time) OfflineTripRecord {
	if attachments == nil {
		attachments = []TripPhotoAttachment{}
	}
	return OfflineTripRecord{
		ID:          input.ID,
		Payload:     input,
		Attachments: attachments,
		CreatedAt:   now.UTC(),
		Status:      StatusPending,
	}
}

// Failed returns a copy of r marked failed at the given time. An empty
// message becomes UnknownSyncError.
func (r OfflineTripRecord) Failed(msg string, at time.Time) OfflineTripRecord {
	if msg == "" {
		msg = UnknownSyncError
	}
	attempt := at.UTC()
	r.Status = StatusFailed
	r.Error = msg
	r.LastSyncAttempt = &attempt
	return r
}

// Synced returns a copy of r marked delivered.
func (r OfflineTripRecord) Synced() OfflineTripRecord {
	r.Status = StatusSynced
	r.Error = ""
	return r
}

// SyncedPhoto describes one photo row the server stored for a trip.
type SyncedPhoto struct {
	TripID      string `json:"trip_id"`
	StoragePath string `json:"storage_path"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	MimeType    string `json:"mime_type"`
}

// TripSyncResponse is the success body of the sync endpoint.
type TripSyncResponse struct {
	Success        bool          `json:"success"`
	TripID         string        `json:"tripId"`
	PhotosUploaded int           `json:"photosUploaded"`
	Photos         []SyncedPhoto `json:"photos,omitempty"`
}

// TripSyncRequest is the body posted to the sync endpoint.
type TripSyncRequest struct {
	Trip        TripReportInput       `json:"trip"`
	Attachments []TripPhotoAttachment `json:"attachments"`
}
