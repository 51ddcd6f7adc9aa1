// Package services holds the trip client's application services: report
// submission, queue delivery and access-token housekeeping.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sultan0alshami/wathiq-sub001/internal/client/client"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/repositories/metadata"
)

// AuthService keeps the bearer token used for sync requests.
//
// The token is persisted in the local metadata table so that queued reports
// can be delivered after a restart without asking again.
type AuthService interface {
	SetToken(ctx context.Context, token string) error
	Restore(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	client client.TripClient
	repo   metadata.Repository
}

func NewAuthService(c client.TripClient, repo metadata.Repository) AuthService {
	return &authService{client: c, repo: repo}
}

func (a *authService) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return a.Clear(ctx)
	}
	if err := a.repo.Set(ctx, metadata.KeyAccessToken, []byte(token)); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	a.client.SetAccessToken(token)
	return nil
}

// Restore loads a previously stored token into the client. It reports
// whether one was found.
func (a *authService) Restore(ctx context.Context) (bool, error) {
	raw, err := a.repo.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return false, fmt.Errorf("load access token: %w", err)
	}
	if len(raw) == 0 {
		return false, nil
	}
	a.client.SetAccessToken(string(raw))
	return true, nil
}

func (a *authService) Clear(ctx context.Context) error {
	if err := a.repo.Delete(ctx, metadata.KeyAccessToken); err != nil {
		return fmt.Errorf("clear access token: %w", err)
	}
	a.client.SetAccessToken("")
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
