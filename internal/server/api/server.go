// Package api exposes the trip service over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sultan0alshami/wathiq-sub001/internal/logging"
	sc "github.com/sultan0alshami/wathiq-sub001/internal/server/config"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/models"
)

// bodyOverhead covers the JSON around the inline photos of a sync request.
const bodyOverhead = 1 << 20

// NewRouter mounts the trip endpoints. notifier may be nil.
//
//	GET    /health
//	POST   /api/trips/sync
//	GET    /api/trips?date=YYYY-MM-DD
//	GET    /api/trips/report.pdf?date=
//	GET    /api/trips/export.xlsx?date=
//	DELETE /api/trips/:id
//	DELETE /api/trips/by-booking/:bookingId
func NewRouter(cfg *sc.Config, trips TripService, notifier Notifier, logger logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger), Recovery(logger), CORS(cfg.AllowedOrigins))
	_ = r.SetTrustedProxies(nil)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "route not found")
	})

	r.GET("/health", health)

	h := &handlers{trips: trips, notifier: notifier, logger: logger}
	api := r.Group("/api", Auth([]byte(cfg.SecretKey), cfg.RequireAuth))
	{
		tr := api.Group("/trips")
		tr.POST("/sync", limitBody(maxSyncBody(cfg.MaxPhotoBytes)), h.syncTrip)
		tr.GET("", h.listTrips)
		tr.GET("/report.pdf", h.reportPDF)
		tr.GET("/export.xlsx", h.exportXLSX)
		tr.DELETE("/by-booking/:bookingId", h.deleteByBooking)
		tr.DELETE("/:id", h.deleteTrip)
	}

	return r
}

// maxSyncBody is the largest body that can carry MaxPhotos photos of
// maxPhoto bytes each once base64 encoded.
func maxSyncBody(maxPhoto int64) int64 {
	if maxPhoto <= 0 {
		return 0
	}
	return int64(models.MaxPhotos)*(maxPhoto*4/3+4) + bodyOverhead
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

type Server struct {
	srv             *http.Server
	logger          logging.Logger
	shutdownTimeout time.Duration
}

func NewServer(c *sc.Config, handler http.Handler, logger logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              c.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:          logger.With("module", "http_server"),
		shutdownTimeout: c.ShutdownTimeout,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
