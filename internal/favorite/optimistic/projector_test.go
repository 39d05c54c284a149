package optimistic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjector_OverrideWinsOverConfirmed(t *testing.T) {
	store := NewStore()
	confirmed := NewConfirmed(newFakeBackend("m1"))
	require.NoError(t, confirmed.Refresh(context.Background()))
	p := NewProjector(store, confirmed)

	assert.True(t, p.IsFavorite("m1"))

	store.Set("m1", false)
	assert.False(t, p.IsFavorite("m1"))

	store.Set("m9", true)
	assert.True(t, p.IsFavorite("m9"))

	store.Clear("m1")
	store.Clear("m9")
	assert.True(t, p.IsFavorite("m1"))
	assert.False(t, p.IsFavorite("m9"))
}

func TestProjector_SubscribeSeesBothSources(t *testing.T) {
	store := NewStore()
	confirmed := NewConfirmed(newFakeBackend("m1"))
	p := NewProjector(store, confirmed)

	var seen []string
	unsubscribe := p.Subscribe(func(id string) { seen = append(seen, id) })

	store.Set("m2", true)
	require.NoError(t, confirmed.Refresh(context.Background()))
	confirmed.Mark("m3", true)

	unsubscribe()
	store.Set("m4", true)

	assert.Equal(t, []string{"m2", "", "m3"}, seen)
}
