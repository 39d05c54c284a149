package optimistic

import (
	"context"
	"errors"
	"sync"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend holds the server-side favorites and can hold or fail mutations.
type fakeBackend struct {
	mu        sync.Mutex
	favorites map[string]bool
	fail      map[string]bool
	gate      chan struct{} // when non-nil, mutations wait for a receive
	calls     []string
	fetchErr  error
	fetches   int
}

func newFakeBackend(ids ...string) *fakeBackend {
	b := &fakeBackend{
		favorites: make(map[string]bool),
		fail:      make(map[string]bool),
	}
	for _, id := range ids {
		b.favorites[id] = true
	}
	return b
}

func (b *fakeBackend) ListFavoriteIDs(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	out := make([]string, 0, len(b.favorites))
	for id := range b.favorites {
		out = append(out, id)
	}
	return out, nil
}

func (b *fakeBackend) AddFavorite(ctx context.Context, itemID string) error {
	return b.mutate(ctx, "add:"+itemID, itemID, true)
}

func (b *fakeBackend) RemoveFavorite(ctx context.Context, itemID string) error {
	return b.mutate(ctx, "remove:"+itemID, itemID, false)
}

func (b *fakeBackend) mutate(ctx context.Context, call, itemID string, value bool) error {
	b.mu.Lock()
	gate := b.gate
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
	if b.fail[itemID] {
		return errBackend
	}
	if value {
		b.favorites[itemID] = true
	} else {
		delete(b.favorites, itemID)
	}
	return nil
}

func (b *fakeBackend) hold() chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gate = make(chan struct{})
	return b.gate
}

func (b *fakeBackend) failOn(itemID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[itemID] = true
}

func (b *fakeBackend) mutations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) has(itemID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.favorites[itemID]
}
