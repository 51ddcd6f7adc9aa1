package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sultan0alshami/wathiq-sub001/internal/client/models"
	"github.com/sultan0alshami/wathiq-sub001/internal/common"
)

// maxErrorBody bounds how much of a failed response is read for its detail.
const maxErrorBody = 64 << 10

// HTTPClient talks JSON to the trip sync endpoint.
type HTTPClient struct {
	syncURL   string
	healthURL string
	http      *http.Client

	mu          sync.RWMutex
	accessToken string
}

// NewHTTPClient builds a client for serverURL. syncURL may be absolute or a
// path resolved against serverURL.
func NewHTTPClient(serverURL, syncURL string, timeout time.Duration) (*HTTPClient, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	syncRef, err := url.Parse(syncURL)
	if err != nil {
		return nil, fmt.Errorf("invalid sync url %q: %w", syncURL, err)
	}
	health, _ := url.Parse("/health")

	return &HTTPClient{
		syncURL:   base.ResolveReference(syncRef).String(),
		healthURL: base.ResolveReference(health).String(),
		http:      &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = strings.TrimSpace(token)
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *HTTPClient) SyncTrip(ctx context.Context, rec models.OfflineTripRecord) (*models.TripSyncResponse, error) {
	attachments := rec.Attachments
	if attachments == nil {
		attachments = []models.TripPhotoAttachment{}
	}
	body, err := json.Marshal(models.TripSyncRequest{Trip: rec.Payload, Attachments: attachments})
	if err != nil {
		return nil, fmt.Errorf("encode trip %s: %w", rec.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.syncURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newSyncError(resp)
	}

	var out models.TripSyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sync response: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// newSyncError prefers the body's "detail", then "message", then the
// status text.
func newSyncError(resp *http.Response) *SyncError {
	e := &SyncError{StatusCode: resp.StatusCode, Detail: http.StatusText(resp.StatusCode)}
	if e.Detail == "" {
		e.Detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return e
	}

	var body struct {
		Detail  any `json:"detail"`
		Message any `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return e
	}
	if s := detailText(body.Detail); s != "" {
		e.Detail = s
	} else if s := detailText(body.Message); s != "" {
		e.Detail = s
	}
	return e
}

func detailText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
