package reconciler

import (
	"context"
	"time"

	"github.com/moaahil1110/LikeLoop/internal/cache"
	"github.com/moaahil1110/LikeLoop/internal/config"
	"github.com/moaahil1110/LikeLoop/internal/repository"
	pkglog "github.com/moaahil1110/LikeLoop/pkg/log"
)

// Reconciler periodically recomputes cached profile counts for the most
// read profiles from the database, repairing any drift the write path
// introduced.
type Reconciler struct {
	cache   cache.ProfileCache
	posts   repository.PostRepository
	follows repository.FollowRepository
	cfg     config.ReconcilerConfig
	ttl     time.Duration
	quit    chan struct{}
	doneCh  chan struct{}
}

// New creates a new Reconciler.
func New(c cache.ProfileCache, posts repository.PostRepository, follows repository.FollowRepository, cfg config.ReconcilerConfig, ttl time.Duration) *Reconciler {
	return &Reconciler{
		cache:   c,
		posts:   posts,
		follows: follows,
		cfg:     cfg,
		ttl:     ttl,
		quit:    make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start launches the reconciler in a background goroutine.
func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the reconciler to stop and returns immediately.
// Call Done() to wait for it to exit.
func (r *Reconciler) Stop() {
	close(r.quit)
}

// Done returns a channel that is closed when the reconciler has fully stopped.
func (r *Reconciler) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.doneCh)

	interval := r.cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context) {
	l := pkglog.L()
	l.Info().Msg("reconciler: starting hot-profile reconciliation")

	topN := int64(r.cfg.TopN)
	if topN <= 0 {
		topN = 100
	}

	// 1. Fetch the most read profiles since the last cycle
	userIDs, err := r.cache.TopHotKeys(ctx, topN)
	if err != nil {
		l.Error().Err(err).Msg("reconciler: failed to get top hot keys")
		return
	}

	if len(userIDs) == 0 {
		l.Info().Msg("reconciler: no hot profiles to reconcile")
		return
	}

	// 2. Recompute each profile's counts from the database
	for _, userID := range userIDs {
		counts, err := r.compute(ctx, userID)
		if err != nil {
			l.Error().Err(err).Str(pkglog.FieldUserID, userID).Msg("reconciler: failed to compute profile counts")
			continue
		}
		if err := r.cache.Set(ctx, userID, counts, r.ttl); err != nil {
			l.Error().Err(err).Str(pkglog.FieldUserID, userID).Msg("reconciler: failed to set profile counts in redis")
		}
	}

	// 3. Reset hot-key scores for the next cycle
	if err := r.cache.ResetHotKeys(ctx); err != nil {
		l.Error().Err(err).Msg("reconciler: failed to reset hot key scores")
	}

	l.Info().Int("count", len(userIDs)).Msg("reconciler: hot-profile reconciliation complete")
}

func (r *Reconciler) compute(ctx context.Context, userID string) (*cache.ProfileCounts, error) {
	followers, err := r.follows.FollowerCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := r.follows.FollowingCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := r.posts.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &cache.ProfileCounts{Followers: followers, Following: following, Posts: posts}, nil
}
