package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a profile has no cached counts.
var ErrCacheMiss = errors.New("cache miss")

// ProfileCounts are the denormalized counters shown on a profile page.
// The database rows remain the source of truth; these are a read-side
// acceleration and may lag briefly until the reconciler repairs them.
type ProfileCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Posts     int64 `json:"posts"`
}

// ProfileCache caches per-user profile counts and tracks which profiles
// are read most often so the reconciler can refresh those first.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*ProfileCounts, error)
	Set(ctx context.Context, userID string, counts *ProfileCounts, ttl time.Duration) error
	Invalidate(ctx context.Context, userIDs ...string) error

	RecordAccess(ctx context.Context, userID string) error
	TopHotKeys(ctx context.Context, n int64) ([]string, error)
	ResetHotKeys(ctx context.Context) error

	Close() error
}
