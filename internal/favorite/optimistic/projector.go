package optimistic

// Projector answers "is this item a favorite" for views, preferring a
// pending override over confirmed state.
type Projector struct {
	store     *Store
	confirmed *Confirmed
}

// NewProjector reads overrides from store and confirmed state from confirmed.
func NewProjector(store *Store, confirmed *Confirmed) *Projector {
	return &Projector{store: store, confirmed: confirmed}
}

// IsFavorite returns the effective state of itemID. Unknown items are not
// favorites.
func (p *Projector) IsFavorite(itemID string) bool {
	if pending, ok := p.store.Get(itemID); ok {
		return pending
	}
	return p.confirmed.Contains(itemID)
}

// Snapshot evaluates IsFavorite for every id, for rendering a list.
func (p *Projector) Snapshot(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = p.IsFavorite(id)
	}
	return out
}

// Subscribe calls l whenever an override or the confirmed set changes. An
// empty item ID means any item may have changed.
func (p *Projector) Subscribe(l Listener) (unsubscribe func()) {
	unStore := p.store.Subscribe(l)
	unConfirmed := p.confirmed.Subscribe(l)
	return func() {
		unStore()
		unConfirmed()
	}
}
