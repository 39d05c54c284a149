package optimistic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGetClear(t *testing.T) {
	s := NewStore()

	_, ok := s.Get("m1")
	assert.False(t, ok)

	s.Set("m1", true)
	v, ok := s.Get("m1")
	require.True(t, ok)
	assert.True(t, v)

	s.Set("m1", false)
	v, ok = s.Get("m1")
	require.True(t, ok)
	assert.False(t, v)
	assert.Equal(t, 1, s.Len())

	s.Clear("m1")
	_, ok = s.Get("m1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_NotifiesBeforeReturning(t *testing.T) {
	s := NewStore()

	var seen []string
	s.Subscribe(func(itemID string) {
		v, _ := s.Get(itemID)
		seen = append(seen, itemID)
		assert.True(t, v)
	})

	s.Set("m1", true)
	assert.Equal(t, []string{"m1"}, seen)
}

func TestStore_ClearAbsentDoesNotNotify(t *testing.T) {
	s := NewStore()

	calls := 0
	s.Subscribe(func(string) { calls++ })

	s.Clear("missing")
	assert.Equal(t, 0, calls)

	s.Set("m1", true)
	s.Clear("m1")
	assert.Equal(t, 2, calls)
}

func TestStore_MultipleSubscribersAndUnsubscribe(t *testing.T) {
	s := NewStore()

	a, b := 0, 0
	unA := s.Subscribe(func(string) { a++ })
	s.Subscribe(func(string) { b++ })

	s.Set("m1", true)
	unA()
	unA()
	s.Set("m2", true)

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestStore_ResetDefault(t *testing.T) {
	Default().Set("m1", true)

	fresh := ResetDefault()
	assert.Same(t, fresh, Default())

	_, ok := Default().Get("m1")
	assert.False(t, ok)
}
