package dataset

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"channelpulse/pkg/contracts/domain"
)

// Snapshot is an immutable parsed dataset
type Snapshot struct {
	Series      domain.TimeSeries
	Fingerprint Fingerprint
	LoadedAt    time.Time
}

// CacheMetrics receives cache events
type CacheMetrics interface {
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RecordDatasetLoad(ctx context.Context, records int, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordCacheHit(context.Context)                               {}
func (noopMetrics) RecordCacheMiss(context.Context)                              {}
func (noopMetrics) RecordDatasetLoad(context.Context, int, time.Duration, error) {}

// Cache holds the latest snapshot of a dataset file. Get re-stats the file
// on every call and reparses only when its fingerprint changed.
type Cache struct {
	loader  *Loader
	metrics CacheMetrics
	logger  *slog.Logger

	mu    sync.RWMutex
	snap  *Snapshot
	group singleflight.Group
}

// NewCache wraps loader. metrics and logger may be nil.
func NewCache(loader *Loader, metrics CacheMetrics, logger *slog.Logger) *Cache {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		loader:  loader,
		metrics: metrics,
		logger:  logger.With("component", "dataset_cache"),
	}
}

// Get returns the current snapshot, loading the file when the cache is
// empty or the file changed since the last load. Concurrent loads of the
// same file are collapsed into one.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(c.loader.Path())
	if err != nil {
		return nil, statError(c.loader.Path(), err)
	}

	if snap := c.Current(); snap != nil && snap.Fingerprint.Matches(info) {
		c.metrics.RecordCacheHit(ctx)
		return snap, nil
	}
	c.metrics.RecordCacheMiss(ctx)

	// the shared load must not be cut short by whichever caller started it
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := c.group.Do(c.loader.Path(), func() (any, error) {
		return c.reload(loadCtx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "joined in-flight dataset load")
	}
	return v.(*Snapshot), nil
}

// Loader returns the loader backing the cache
func (c *Cache) Loader() *Loader {
	return c.loader
}

// Current returns the cached snapshot without checking the file, or nil
func (c *Cache) Current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Invalidate drops the cached snapshot; the next Get reloads
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
	c.logger.Info("dataset cache invalidated")
}

// Reload invalidates the cache and loads the file again
func (c *Cache) Reload(ctx context.Context) (*Snapshot, error) {
	c.Invalidate()
	return c.Get(ctx)
}

func (c *Cache) reload(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	data, info, err := c.loader.read(ctx)
	if err != nil {
		c.metrics.RecordDatasetLoad(ctx, 0, time.Since(start), err)
		return nil, err
	}
	fp := NewFingerprint(info, data)

	// a touched file with identical content keeps the parsed series
	if cur := c.Current(); cur != nil && cur.Fingerprint.Hash == fp.Hash {
		next := &Snapshot{Series: cur.Series, Fingerprint: fp, LoadedAt: cur.LoadedAt}
		c.store(next)
		c.logger.InfoContext(ctx, "dataset unchanged", "fingerprint", fp.Short())
		return next, nil
	}

	series, err := c.loader.parse(ctx, data)
	c.metrics.RecordDatasetLoad(ctx, series.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	next := &Snapshot{Series: series, Fingerprint: fp, LoadedAt: time.Now().UTC()}
	c.store(next)
	c.logger.InfoContext(ctx, "dataset cached",
		"fingerprint", fp.Short(),
		"size", fp.Size,
		"records", series.Len(),
	)
	return next, nil
}

func (c *Cache) store(s *Snapshot) {
	c.mu.Lock()
	c.snap = s
	c.mu.Unlock()
}
