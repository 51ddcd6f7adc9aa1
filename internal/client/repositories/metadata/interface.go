// Package metadata is the client's durable key/value store.
package metadata

import (
	"context"
	"time"
)

// Well-known keys. Each key has exactly one owner.
const (
	KeyTripsQueue  = "wathiq_trips_queue"
	KeyAccessToken = "access_token"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}
