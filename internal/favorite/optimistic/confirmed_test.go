package optimistic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingFetcher parks every fetch until release is closed or the fetch
// context ends.
type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
	ids     []string
}

func (f *blockingFetcher) ListFavoriteIDs(ctx context.Context) ([]string, error) {
	f.started <- struct{}{}
	select {
	case <-f.release:
		return f.ids, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestConfirmed_RefreshBuildsSet(t *testing.T) {
	c := NewConfirmed(newFakeBackend("m1", "m3"))
	assert.False(t, c.Loaded())
	assert.False(t, c.Contains("m1"))

	var notified []string
	c.Subscribe(func(id string) { notified = append(notified, id) })

	require.NoError(t, c.Refresh(context.Background()))
	assert.True(t, c.Loaded())
	assert.True(t, c.Contains("m1"))
	assert.True(t, c.Contains("m3"))
	assert.False(t, c.Contains("m2"))
	assert.ElementsMatch(t, []string{"m1", "m3"}, c.IDs())
	assert.Equal(t, []string{""}, notified)
}

func TestConfirmed_RefreshErrorKeepsPreviousSet(t *testing.T) {
	b := newFakeBackend("m1")
	c := NewConfirmed(b)
	require.NoError(t, c.Refresh(context.Background()))

	b.fetchErr = errBackend
	err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackend)
	assert.True(t, c.Contains("m1"))
}

func TestConfirmed_CancelSupersedesInFlightRefresh(t *testing.T) {
	f := &blockingFetcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		ids:     []string{"stale"},
	}
	c := NewConfirmed(f)

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()

	<-f.started
	c.Cancel()

	err := <-done
	assert.True(t, errors.Is(err, ErrRefreshSuperseded), "got %v", err)
	assert.False(t, c.Loaded())
	assert.False(t, c.Contains("stale"))
}

func TestConfirmed_RefreshAfterCancelStartsNewFetch(t *testing.T) {
	b := newFakeBackend("m1")
	c := NewConfirmed(b)

	c.Cancel()
	require.NoError(t, c.Refresh(context.Background()))
	assert.True(t, c.Contains("m1"))
	assert.Equal(t, 1, b.fetches)
}

func TestConfirmed_MarkNotifiesOnChange(t *testing.T) {
	c := NewConfirmed(newFakeBackend())

	var notified []string
	c.Subscribe(func(id string) { notified = append(notified, id) })

	c.Mark("m2", true)
	c.Mark("m2", true)
	assert.True(t, c.Contains("m2"))

	c.Mark("m2", false)
	assert.False(t, c.Contains("m2"))
	assert.Equal(t, []string{"m2", "m2"}, notified)
}

func TestConfirmed_MarkSupersedesInFlightRefresh(t *testing.T) {
	f := &blockingFetcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		ids:     []string{},
	}
	c := NewConfirmed(f)

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()

	<-f.started
	c.Mark("m2", true)
	close(f.release)

	assert.ErrorIs(t, <-done, ErrRefreshSuperseded)
	assert.True(t, c.Contains("m2"))
}
