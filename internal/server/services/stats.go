package services

import (
	"context"
	"math"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdocs/internal/timex"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	statsCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gophdocs_stats_cache_hits_total",
		Help: "Stats reads served from cache.",
	})
	statsCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gophdocs_stats_cache_misses_total",
		Help: "Stats reads computed from storage.",
	})
)

// Stats computes per-user aggregates on demand and caches them briefly.
// Writes invalidate the affected users, so a cached value is at most TTL
// stale only for writes that bypass the services.
type Stats struct {
	repos        repomanager.RepositoryManager
	cache        *expirable.LRU[string, models.Stats]
	recentWindow time.Duration
	log          logging.Logger
	now          timex.Clock
}

func NewStats(repos repomanager.RepositoryManager, cacheSize int, ttl, recentWindow time.Duration, log logging.Logger) *Stats {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &Stats{
		repos:        repos,
		cache:        expirable.NewLRU[string, models.Stats](cacheSize, nil, ttl),
		recentWindow: recentWindow,
		log:          log.With("component", "stats"),
		now:          timex.UTCNow,
	}
}

// Get returns the actor's stats, from cache when fresh.
func (s *Stats) Get(ctx context.Context, actor models.Actor) (*models.Stats, error) {
	const op = "stats.Get"

	if err := requireActor(op, actor); err != nil {
		return nil, err
	}
	if cached, ok := s.cache.Get(actor.ID); ok {
		statsCacheHits.Inc()
		return &cached, nil
	}
	statsCacheMisses.Inc()

	st, err := s.Compute(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(actor.ID, *st)
	return st, nil
}

// Compute reads the aggregates straight from storage.
func (s *Stats) Compute(ctx context.Context, userID string) (*models.Stats, error) {
	const op = "stats.Compute"

	now := s.now()
	active := models.DocumentQuery{OwnerID: userID, Status: models.StatusActive}

	settings, err := currentSettings(ctx, s.repos.Settings(), now)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(userID)
	}
	total, used, err := s.repos.Documents().Totals(ctx, active)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(userID)
	}
	shared, err := s.repos.Documents().CountShared(ctx, userID)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(userID)
	}

	recentSince := now.Add(-s.recentWindow)
	recent := active
	recent.CreatedAfter = &recentSince
	recentCount, _, err := s.repos.Documents().Totals(ctx, recent)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(userID)
	}

	return &models.Stats{
		TotalFiles:        total,
		StorageUsedBytes:  used,
		QuotaBytes:        settings.QuotaBytes,
		StoragePercentage: StoragePercentage(used, settings.QuotaBytes),
		SharedFiles:       shared,
		RecentUploads:     recentCount,
	}, nil
}

func (s *Stats) Invalidate(userIDs ...string) {
	for _, id := range userIDs {
		s.cache.Remove(id)
	}
}

func (s *Stats) InvalidateAll() {
	s.cache.Purge()
}

// StoragePercentage is round(used/quota*100) clamped to [0, 100].
func StoragePercentage(used, quota int64) int {
	if quota <= 0 || used <= 0 {
		return 0
	}
	pct := math.Round(float64(used) / float64(quota) * 100)
	return int(math.Min(100, pct))
}
