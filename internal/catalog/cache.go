package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wichananm65/able-backend/internal/source"
)

// snapshot is an immutable generation of one collection together with the
// views derived from it. Readers load it once and never see a partial swap.
type snapshot[T, V any] struct {
	items     []T
	views     V
	fetchedAt time.Time
}

// collection caches one entity kind. Each kind refreshes independently.
type collection[T, V any] struct {
	kind    source.Kind
	timeout time.Duration
	fetch   func(context.Context) ([]T, error)
	derive  func([]T) V
	now     func() time.Time
	onSwap  func(kind source.Kind, count int)

	current atomic.Pointer[snapshot[T, V]]
	group   singleflight.Group
}

func (c *collection[T, V]) load() *snapshot[T, V] {
	if s := c.current.Load(); s != nil {
		return s
	}
	return &snapshot[T, V]{views: c.derive(nil)}
}

// fresh reports whether a non-forced refresh can be skipped.
func (c *collection[T, V]) fresh() bool {
	s := c.current.Load()
	if s == nil || len(s.items) == 0 {
		return false
	}
	return c.now().Sub(s.fetchedAt) < c.timeout
}

// refresh refetches the collection unless it is fresh and force is false.
// Concurrent callers share one underlying fetch. The fetch outlives a
// cancelled caller so the cache is still populated for later readers.
func (c *collection[T, V]) refresh(ctx context.Context, force bool) error {
	if !force && c.fresh() {
		zap.L().Debug("catalog cache fresh, skipping fetch", zap.String("kind", string(c.kind)))
		return nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(string(c.kind), func() (any, error) {
		start := time.Now()
		items, err := c.fetch(fetchCtx)
		if err != nil {
			zap.L().Warn("catalog refresh failed, keeping cached data",
				zap.String("kind", string(c.kind)),
				zap.Int("cached", len(c.load().items)),
				zap.Error(err))
			return nil, errors.Wrapf(err, "refresh %s", c.kind)
		}
		c.current.Store(&snapshot[T, V]{items: items, views: c.derive(items), fetchedAt: c.now()})
		zap.L().Info("catalog refreshed",
			zap.String("kind", string(c.kind)),
			zap.Int("count", len(items)),
			zap.Duration("took", time.Since(start)))
		if c.onSwap != nil {
			c.onSwap(c.kind, len(items))
		}
		return len(items), nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// lastFetch returns when the collection was last replaced.
func (c *collection[T, V]) lastFetch() (time.Time, bool) {
	s := c.current.Load()
	if s == nil {
		return time.Time{}, false
	}
	return s.fetchedAt, true
}
