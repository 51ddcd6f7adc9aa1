package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sultan0alshami/wathiq-sub001/internal/common"
	"github.com/sultan0alshami/wathiq-sub001/internal/logging"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/models"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/reports"
)

// TripService is the part of services.TripService the handlers use.
type TripService interface {
	Sync(ctx context.Context, req *models.TripSyncRequest, userID string) (*models.TripSyncResponse, error)
	List(ctx context.Context, date string) ([]*models.TripReport, error)
	Delete(ctx context.Context, id string) error
	DeleteByBooking(ctx context.Context, bookingID string) error
}

// Notifier forwards a rendered report, e.g. notify.WhatsApp.
type Notifier interface {
	SendDocument(ctx context.Context, filename string, data []byte) error
}

const (
	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type handlers struct {
	trips    TripService
	notifier Notifier
	logger   logging.Logger
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

func (h *handlers) syncTrip(c *gin.Context) {
	var req models.TripSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.trips.Sync(c.Request.Context(), &req, c.GetString(userIDKey))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) listTrips(c *gin.Context) {
	date := c.Query("date")
	trips, err := h.trips.List(c.Request.Context(), date)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if trips == nil {
		trips = []*models.TripReport{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "trips": trips})
}

func (h *handlers) deleteTrip(c *gin.Context) {
	id := c.Param("id")
	if err := h.trips.Delete(c.Request.Context(), id); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func (h *handlers) deleteByBooking(c *gin.Context) {
	bookingID := c.Param("bookingId")
	if err := h.trips.DeleteByBooking(c.Request.Context(), bookingID); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookingId": bookingID})
}

// reportPDF serves the day's PDF and forwards a copy through the notifier
// without waiting for it.
func (h *handlers) reportPDF(c *gin.Context) {
	name, out, ok := h.renderDay(c, "pdf", pdfContentType, reports.DailyPDF)
	if !ok || h.notifier == nil {
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		if err := h.notifier.SendDocument(ctx, name, out); err != nil {
			h.logger.Warn(ctx, "report not forwarded", "file", name, "error", err)
		}
	}()
}

func (h *handlers) exportXLSX(c *gin.Context) {
	h.renderDay(c, "xlsx", xlsxContentType, reports.DailyXLSX)
}

// renderDay serves one day of trips as a downloadable document and returns
// its file name and bytes. The date defaults to today (UTC).
func (h *handlers) renderDay(c *gin.Context, ext, contentType string, render func(string, []*models.TripReport) ([]byte, error)) (string, []byte, bool) {
	date := c.DefaultQuery("date", time.Now().UTC().Format(common.DateLayout))
	trips, err := h.trips.List(c.Request.Context(), date)
	if err != nil {
		respondDomainError(c, err)
		return "", nil, false
	}

	out, err := render(date, trips)
	if err != nil {
		respondDomainError(c, err)
		return "", nil, false
	}

	name := fmt.Sprintf("trips-%s.%s", date, ext)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, out)
	return name, out, true
}
