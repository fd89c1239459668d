package views

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// StatsSource produces channel statistics.
type StatsSource interface {
	ChannelStats(ctx context.Context, channel bson.ObjectID) (ChannelStats, error)
}

type statsEntry struct {
	stats   ChannelStats
	expires time.Time
}

// CachingStats wraps a StatsSource with a TTL-based in-memory cache. Channel
// statistics are best-effort metrics, so serving a slightly stale rollup is
// acceptable in exchange for skipping four store reads per dashboard load.
type CachingStats struct {
	base StatsSource
	ttl  time.Duration

	mu    sync.RWMutex
	items map[bson.ObjectID]statsEntry
}

// NewCachingStats returns a StatsSource that caches rollups for the provided TTL.
func NewCachingStats(base StatsSource, ttl time.Duration) *CachingStats {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachingStats{
		base:  base,
		ttl:   ttl,
		items: make(map[bson.ObjectID]statsEntry),
	}
}

// ChannelStats returns cached statistics when fresh, otherwise it delegates to
// the underlying source and stores the result.
func (c *CachingStats) ChannelStats(ctx context.Context, channel bson.ObjectID) (ChannelStats, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[channel]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.stats, nil
	}

	stats, err := c.base.ChannelStats(ctx, channel)
	if err != nil {
		return ChannelStats{}, err
	}

	c.mu.Lock()
	c.items[channel] = statsEntry{stats: stats, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return stats, nil
}
