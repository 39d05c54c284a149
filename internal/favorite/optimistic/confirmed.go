package optimistic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrRefreshSuperseded is returned by Refresh when Cancel was called while
// the fetch was in flight. The fetched data is discarded.
var ErrRefreshSuperseded = errors.New("favorites refresh superseded")

// Fetcher returns the authoritative set of favorited item IDs for the
// session user.
type Fetcher interface {
	ListFavoriteIDs(ctx context.Context) ([]string, error)
}

// Confirmed caches the favorites last reported by the backend.
//
// Listeners receive an empty item ID after a refresh, since any item may
// have changed, and the item ID after Mark.
type Confirmed struct {
	fetcher Fetcher
	group   singleflight.Group

	mu     sync.RWMutex
	ids    map[string]struct{}
	loaded bool
	gen    uint64
	cancel context.CancelFunc

	listeners listenerSet
}

// NewConfirmed creates an empty, not yet loaded cache backed by f.
func NewConfirmed(f Fetcher) *Confirmed {
	return &Confirmed{
		fetcher: f,
		ids:     make(map[string]struct{}),
	}
}

// Contains reports whether itemID was in the last confirmed set.
func (c *Confirmed) Contains(itemID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[itemID]
	return ok
}

// Loaded reports whether at least one refresh has been applied.
func (c *Confirmed) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// IDs returns the confirmed item IDs in no particular order.
func (c *Confirmed) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	return out
}

// Subscribe registers l for changes to the confirmed set.
func (c *Confirmed) Subscribe(l Listener) (unsubscribe func()) {
	return c.listeners.add(l)
}

// Refresh fetches the favorites and replaces the confirmed set. Concurrent
// calls share one fetch. The fetch runs under the context of the caller that
// started it.
func (c *Confirmed) Refresh(ctx context.Context) error {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	ch := c.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		return nil, c.load(ctx, gen)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Confirmed) load(ctx context.Context, gen uint64) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return ErrRefreshSuperseded
	}
	c.cancel = cancel
	c.mu.Unlock()

	ids, err := c.fetcher.ListFavoriteIDs(ctx)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return ErrRefreshSuperseded
	}
	c.cancel = nil
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("list favorites: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	c.ids = set
	c.loaded = true
	c.mu.Unlock()

	c.listeners.notify("")
	return nil
}

// Cancel aborts the in-flight refresh, if any, and guarantees its result
// is never applied. Later calls to Refresh start a new fetch.
func (c *Confirmed) Cancel() {
	c.mu.Lock()
	c.gen++
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Mark records a value the backend has just acknowledged, ahead of the
// next refresh. A refresh already in flight may predate the
// acknowledgement, so it is superseded as by Cancel.
func (c *Confirmed) Mark(itemID string, favorite bool) {
	c.mu.Lock()
	_, had := c.ids[itemID]
	if favorite {
		c.ids[itemID] = struct{}{}
	} else {
		delete(c.ids, itemID)
	}
	c.gen++
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if had != favorite {
		c.listeners.notify(itemID)
	}
}
