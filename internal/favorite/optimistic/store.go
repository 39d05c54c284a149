// Package optimistic keeps several views of the same user's favorites in
// agreement while a toggle is still travelling to the backend.
//
// A Store holds pending per-item overrides, a Confirmed cache holds the last
// set of favorites reported by the backend, a Projector merges the two for
// readers, and a Coordinator drives a toggle from the instant local write to
// the settled server state.
package optimistic

import (
	"sync"
)

// Listener is called after every change to a Store. itemID is the item whose
// override changed.
type Listener func(itemID string)

// Store is the process-wide map of pending favorite overrides.
type Store struct {
	mu        sync.RWMutex
	overrides map[string]bool
	listeners listenerSet
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		overrides: make(map[string]bool),
	}
}

var (
	defaultMu    sync.RWMutex
	defaultStore = NewStore()
)

// Default returns the store shared by every view in the process.
func Default() *Store {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultStore
}

// ResetDefault replaces the shared store with an empty one and returns it.
// Listeners registered on the previous store are not carried over.
func ResetDefault() *Store {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultStore = NewStore()
	return defaultStore
}

// Set inserts or replaces the override for itemID. Listeners have been
// notified by the time Set returns.
func (s *Store) Set(itemID string, pending bool) {
	s.mu.Lock()
	s.overrides[itemID] = pending
	s.mu.Unlock()

	s.listeners.notify(itemID)
}

// Clear removes the override for itemID. It does nothing, and notifies
// nobody, when no override exists.
func (s *Store) Clear(itemID string) {
	s.mu.Lock()
	_, ok := s.overrides[itemID]
	delete(s.overrides, itemID)
	s.mu.Unlock()

	if ok {
		s.listeners.notify(itemID)
	}
}

// Get returns the pending value for itemID and whether one exists.
func (s *Store) Get(itemID string) (pending bool, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending, ok = s.overrides[itemID]
	return pending, ok
}

// Len reports how many overrides are pending.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overrides)
}

// Subscribe registers l and returns a function that removes it. Calling the
// returned function more than once is safe.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	return s.listeners.add(l)
}

// listenerSet is safe for concurrent use. notify runs the listeners outside
// the lock so they may call back into their owner.
type listenerSet struct {
	mu     sync.Mutex
	m      map[uint64]Listener
	nextID uint64
}

func (ls *listenerSet) add(l Listener) func() {
	ls.mu.Lock()
	if ls.m == nil {
		ls.m = make(map[uint64]Listener)
	}
	id := ls.nextID
	ls.nextID++
	ls.m[id] = l
	ls.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ls.mu.Lock()
			delete(ls.m, id)
			ls.mu.Unlock()
		})
	}
}

func (ls *listenerSet) notify(itemID string) {
	ls.mu.Lock()
	snapshot := make([]Listener, 0, len(ls.m))
	for _, l := range ls.m {
		snapshot = append(snapshot, l)
	}
	ls.mu.Unlock()

	for _, l := range snapshot {
		l(itemID)
	}
}
