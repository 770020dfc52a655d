package state

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/persist"
)

const persistVersion = 0

// Store holds all user-local state. Every mutating method is atomic with
// respect to the others; a call that changes nothing neither persists nor
// notifies subscribers.
type Store struct {
	mu      sync.RWMutex
	state   Snapshot
	storage persist.Storage
	logger  zerolog.Logger

	subs    map[int]func(Snapshot)
	nextSub int
}

// New returns a Store restored from storage. Missing or corrupt data yields
// defaults; corruption is logged. A nil storage keeps state in memory only.
func New(storage persist.Storage, logger zerolog.Logger) *Store {
	s := &Store{
		storage: storage,
		logger:  logger.With().Str("component", "state").Logger(),
		subs:    make(map[int]func(Snapshot)),
	}
	s.state.Persisted = s.restore()
	return s
}

func (s *Store) restore() Persisted {
	p := defaultPersisted()
	if s.storage == nil {
		return p
	}

	var loaded Persisted
	_, err := persist.LoadJSON(s.storage, persist.AppStoreKey, &loaded)
	switch {
	case err == nil:
		loaded.normalize()
		return loaded
	case errors.Is(err, persist.ErrNotFound):
		return p
	default:
		s.logger.Warn().Err(err).Str("key", persist.AppStoreKey).Msg("discarding stored state")
		return p
	}
}

// Subscribe registers fn to receive a copy of the state after every change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Persisted returns a copy of the persisted subset.
func (s *Store) Persisted() Persisted {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Persisted.clone()
}

// mutate applies fn under the write lock. When fn reports a change, durable
// changes are saved before the lock is released so saves land in order, and
// subscribers are notified afterwards.
func (s *Store) mutate(durable bool, fn func(st *Snapshot) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	if durable {
		s.save(s.state.Persisted)
	}
	snap := s.state.clone()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap.clone())
	}
}

// save never fails the caller; a background write error is only logged.
func (s *Store) save(p Persisted) {
	if s.storage == nil {
		return
	}
	if err := persist.SaveJSON(s.storage, persist.AppStoreKey, p, persistVersion); err != nil {
		s.logger.Warn().Err(err).Str("key", persist.AppStoreKey).Msg("persist state failed")
	}
}

func productKey(p cijene.Product) string { return p.Key() }
func storeKey(st cijene.Store) string    { return st.Key() }

// AddFavoriteProduct appends p unless a product with the same key is already
// a favorite.
func (s *Store) AddFavoriteProduct(p cijene.Product) {
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.FavoriteProducts, changed = appendUnique(st.FavoriteProducts, p, productKey)
		return changed
	})
}

// RemoveFavoriteProduct removes the favorite product with id.
func (s *Store) RemoveFavoriteProduct(id string) {
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.FavoriteProducts, changed = removeKey(st.FavoriteProducts, id, productKey)
		return changed
	})
}

// IsFavoriteProduct reports whether a product with id is a favorite.
func (s *Store) IsFavoriteProduct(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return id != "" && indexOfKey(s.state.FavoriteProducts, id, productKey) >= 0
}

// AddFavoriteStore appends st unless a store with the same key is already a
// favorite.
func (s *Store) AddFavoriteStore(store cijene.Store) {
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.FavoriteStores, changed = appendUnique(st.FavoriteStores, store, storeKey)
		return changed
	})
}

// RemoveFavoriteStore removes the favorite store with id.
func (s *Store) RemoveFavoriteStore(id string) {
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.FavoriteStores, changed = removeKey(st.FavoriteStores, id, storeKey)
		return changed
	})
}

// IsFavoriteStore reports whether a store with id is a favorite.
func (s *Store) IsFavoriteStore(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return id != "" && indexOfKey(s.state.FavoriteStores, id, storeKey) >= 0
}

// RefreshFavoriteProduct replaces the saved copy of a favorite product with
// fresher data. Products that are not favorites are ignored.
func (s *Store) RefreshFavoriteProduct(p cijene.Product) {
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.FavoriteProducts, changed = replaceKey(st.FavoriteProducts, p, productKey)
		return changed
	})
}

// RefreshFavoriteStore replaces the saved copy of a favorite store.
func (s *Store) RefreshFavoriteStore(store cijene.Store) {
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.FavoriteStores, changed = replaceKey(st.FavoriteStores, store, storeKey)
		return changed
	})
}

// ClearFavorites empties both favorite collections.
func (s *Store) ClearFavorites() {
	s.mutate(true, func(st *Snapshot) bool {
		if len(st.FavoriteProducts) == 0 && len(st.FavoriteStores) == 0 {
			return false
		}
		st.FavoriteProducts = nil
		st.FavoriteStores = nil
		return true
	})
}

// AddProductSearch records a product query. Repeating a query already in the
// history leaves the history unchanged.
func (s *Store) AddProductSearch(query string) {
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.ProductSearchHistory, changed = prependQuery(st.ProductSearchHistory, query, MaxSearchHistory)
		return changed
	})
}

// AddStoreSearch records a store query with the same rules as AddProductSearch.
func (s *Store) AddStoreSearch(query string) {
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.StoreSearchHistory, changed = prependQuery(st.StoreSearchHistory, query, MaxSearchHistory)
		return changed
	})
}

// ClearProductSearchHistory empties the product query history.
func (s *Store) ClearProductSearchHistory() {
	s.mutate(true, func(st *Snapshot) bool {
		if len(st.ProductSearchHistory) == 0 {
			return false
		}
		st.ProductSearchHistory = nil
		return true
	})
}

// ClearStoreSearchHistory empties the store query history.
func (s *Store) ClearStoreSearchHistory() {
	s.mutate(true, func(st *Snapshot) bool {
		if len(st.StoreSearchHistory) == 0 {
			return false
		}
		st.StoreSearchHistory = nil
		return true
	})
}

// ClearSearchHistory empties both query histories.
func (s *Store) ClearSearchHistory() {
	s.mutate(true, func(st *Snapshot) bool {
		if len(st.ProductSearchHistory) == 0 && len(st.StoreSearchHistory) == 0 {
			return false
		}
		st.ProductSearchHistory = nil
		st.StoreSearchHistory = nil
		return true
	})
}

// AddRecentlyViewedProduct moves p to the front of the recently viewed list.
func (s *Store) AddRecentlyViewedProduct(p cijene.Product) {
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.RecentlyViewedProducts, changed = promote(st.RecentlyViewedProducts, p, productKey, MaxRecentItems)
		return changed
	})
}

// AddRecentlyViewedStore moves store to the front of the recently viewed list.
func (s *Store) AddRecentlyViewedStore(store cijene.Store) {
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.RecentlyViewedStores, changed = promote(st.RecentlyViewedStores, store, storeKey, MaxRecentItems)
		return changed
	})
}

// ClearRecentlyViewed empties both recently viewed lists.
func (s *Store) ClearRecentlyViewed() {
	s.mutate(true, func(st *Snapshot) bool {
		if len(st.RecentlyViewedProducts) == 0 && len(st.RecentlyViewedStores) == 0 {
			return false
		}
		st.RecentlyViewedProducts = nil
		st.RecentlyViewedStores = nil
		return true
	})
}

// AddCompareProduct appends p to the compare list. It is a no-op when p has
// no key, is already listed, or the list is full.
func (s *Store) AddCompareProduct(p cijene.Product) {
	s.mutate(false, func(st *Snapshot) bool {
		if len(st.CompareProducts) >= MaxCompareProducts {
			return false
		}
		var changed bool
		st.CompareProducts, changed = appendUnique(st.CompareProducts, p, productKey)
		return changed
	})
}

// RemoveCompareProduct removes the product with id from the compare list.
func (s *Store) RemoveCompareProduct(id string) {
	s.mutate(false, func(st *Snapshot) bool {
		var changed bool
		st.CompareProducts, changed = removeKey(st.CompareProducts, id, productKey)
		return changed
	})
}

// IsProductInCompare reports whether the product with id is being compared.
func (s *Store) IsProductInCompare(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return id != "" && indexOfKey(s.state.CompareProducts, id, productKey) >= 0
}

// ClearCompareProducts empties the compare list.
func (s *Store) ClearCompareProducts() {
	s.mutate(false, func(st *Snapshot) bool {
		if len(st.CompareProducts) == 0 {
			return false
		}
		st.CompareProducts = nil
		return true
	})
}

// SetPreferredChains replaces the preferred chains, dropping blanks and
// duplicates.
func (s *Store) SetPreferredChains(codes []string) {
	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		cleaned, _ = appendUnique(cleaned, strings.TrimSpace(code), identity)
	}
	s.mutate(true, func(st *Snapshot) bool {
		if slices.Equal(st.PreferredChains, cleaned) {
			return false
		}
		st.PreferredChains = cleaned
		return true
	})
}

// AddPreferredChain appends code unless it is already preferred.
func (s *Store) AddPreferredChain(code string) {
	code = strings.TrimSpace(code)
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.PreferredChains, changed = appendUnique(st.PreferredChains, code, identity)
		return changed
	})
}

// RemovePreferredChain removes code from the preferred chains.
func (s *Store) RemovePreferredChain(code string) {
	code = strings.TrimSpace(code)
	s.mutate(true, func(st *Snapshot) bool {
		var changed bool
		st.PreferredChains, changed = removeKey(st.PreferredChains, code, identity)
		return changed
	})
}

// SetSearchRadius stores meters clamped to [MinSearchRadius, MaxSearchRadius].
func (s *Store) SetSearchRadius(meters int) {
	meters = clampRadius(meters)
	s.mutate(true, func(st *Snapshot) bool {
		if st.SearchRadius == meters {
			return false
		}
		st.SearchRadius = meters
		return true
	})
}

// SetDefaultLocation replaces the default location. An empty country keeps
// the default country code.
func (s *Store) SetDefaultLocation(loc Location) {
	loc = loc.clone()
	if strings.TrimSpace(loc.Country) == "" {
		loc.Country = DefaultCountry
	}
	s.mutate(true, func(st *Snapshot) bool {
		if sameLocation(st.DefaultLocation, loc) {
			return false
		}
		st.DefaultLocation = loc
		return true
	})
}

// SetCurrency changes the display currency. Unsupported values are ignored.
func (s *Store) SetCurrency(c Currency) {
	if !c.Valid() {
		s.logger.Debug().Str("currency", string(c)).Msg("ignoring unsupported currency")
		return
	}
	s.mutate(true, func(st *Snapshot) bool {
		if st.Currency == c {
			return false
		}
		st.Currency = c
		return true
	})
}

// SetLanguage changes the UI language. Unsupported values are ignored.
func (s *Store) SetLanguage(l Language) {
	if !l.Valid() {
		s.logger.Debug().Str("language", string(l)).Msg("ignoring unsupported language")
		return
	}
	s.mutate(true, func(st *Snapshot) bool {
		if st.Language == l {
			return false
		}
		st.Language = l
		return true
	})
}

// SetTheme changes the theme preference. Unknown themes are ignored.
func (s *Store) SetTheme(t Theme) {
	if !t.Valid() {
		s.logger.Debug().Str("theme", string(t)).Msg("ignoring unknown theme")
		return
	}
	s.mutate(true, func(st *Snapshot) bool {
		if st.Theme == t {
			return false
		}
		st.Theme = t
		return true
	})
}

// ToggleSidebar flips the transient sidebar flag.
func (s *Store) ToggleSidebar() {
	s.mutate(false, func(st *Snapshot) bool {
		st.SidebarOpen = !st.SidebarOpen
		return true
	})
}

// SetSidebarOpen sets the transient sidebar flag.
func (s *Store) SetSidebarOpen(open bool) {
	s.mutate(false, func(st *Snapshot) bool {
		if st.SidebarOpen == open {
			return false
		}
		st.SidebarOpen = open
		return true
	})
}

// ResetAppState restores every field to its initial value.
func (s *Store) ResetAppState() {
	s.mutate(true, func(st *Snapshot) bool {
		*st = Snapshot{Persisted: defaultPersisted()}
		return true
	})
	s.logger.Info().Msg("app state reset")
}

func sameLocation(a, b Location) bool {
	return a.Country == b.Country &&
		sameFloat(a.Lat, b.Lat) &&
		sameFloat(a.Lon, b.Lon) &&
		sameString(a.City, b.City)
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
