package toggle

import (
	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/state"
)

// Event is the input that triggered a toggle. Toggle stops its propagation so
// the enclosing row does not also handle it.
type Event interface {
	StopPropagation()
}

// Binding ties one entity key to add/remove operations.
type Binding struct {
	key      string
	isActive func(string) bool
	add      func()
	remove   func(string)
}

// New builds a Binding from raw operations.
func New(key string, isActive func(string) bool, add func(), remove func(string)) Binding {
	return Binding{key: key, isActive: isActive, add: add, remove: remove}
}

// ProductFavorite binds p to the favorite products.
func ProductFavorite(s *state.Store, p cijene.Product) Binding {
	return New(p.Key(), s.IsFavoriteProduct, func() { s.AddFavoriteProduct(p) }, s.RemoveFavoriteProduct)
}

// StoreFavorite binds st to the favorite stores.
func StoreFavorite(s *state.Store, st cijene.Store) Binding {
	return New(st.Key(), s.IsFavoriteStore, func() { s.AddFavoriteStore(st) }, s.RemoveFavoriteStore)
}

// ProductCompare binds p to the compare list.
func ProductCompare(s *state.Store, p cijene.Product) Binding {
	return New(p.Key(), s.IsProductInCompare, func() { s.AddCompareProduct(p) }, s.RemoveCompareProduct)
}

// Key returns the bound entity key.
func (b Binding) Key() string { return b.key }

// Active reports whether the entity is currently in the collection.
func (b Binding) Active() bool {
	return b.key != "" && b.isActive(b.key)
}

// Toggle removes the entity when present and adds it otherwise. A nil ev is
// allowed.
func (b Binding) Toggle(ev Event) {
	if ev != nil {
		ev.StopPropagation()
	}
	if b.key == "" {
		return
	}
	if b.Active() {
		b.remove(b.key)
		return
	}
	b.add()
}

// Click is an Event for mouse clicks. Handlers check Stopped before running
// the row's own action.
type Click struct {
	stopped bool
}

// StopPropagation implements Event.
func (c *Click) StopPropagation() { c.stopped = true }

// Stopped reports whether a handler consumed the click.
func (c *Click) Stopped() bool { return c.stopped }
