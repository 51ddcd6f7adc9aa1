package client

import (
	"errors"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// SyncError is a non-2xx answer of the sync endpoint. Its message is the
// server-provided detail, or the HTTP status text when none was given.
type SyncError struct {
	StatusCode int
	Detail     string
}

func (e *SyncError) Error() string {
	return e.Detail
}

// Unwrap lets callers match auth and availability failures with errors.Is.
func (e *SyncError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	}
	return nil
}
