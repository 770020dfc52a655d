package state

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/persist"
)

func newTestStore(t *testing.T) (*Store, *persist.MemoryStorage) {
	t.Helper()
	storage := persist.NewMemoryStorage()
	return New(storage, zerolog.Nop()), storage
}

func product(id string) cijene.Product {
	return cijene.Product{ID: id, Name: "Product " + id}
}

func productKeys(items []cijene.Product) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Key())
	}
	return out
}

func TestStore_Defaults(t *testing.T) {
	s, _ := newTestStore(t)
	snap := s.Snapshot()

	if snap.Theme != ThemeSystem {
		t.Fatalf("Theme = %q, want %q", snap.Theme, ThemeSystem)
	}
	if snap.SearchRadius != DefaultSearchRadius {
		t.Fatalf("SearchRadius = %d, want %d", snap.SearchRadius, DefaultSearchRadius)
	}
	if snap.Currency != CurrencyEUR || snap.Language != LanguageEnglish {
		t.Fatalf("Currency/Language = %q/%q, want EUR/en", snap.Currency, snap.Language)
	}
	if snap.DefaultLocation.Country != DefaultCountry || snap.DefaultLocation.HasCoordinates() || snap.DefaultLocation.City != nil {
		t.Fatalf("DefaultLocation = %#v, want empty HR location", snap.DefaultLocation)
	}
	if snap.SidebarOpen || len(snap.CompareProducts) != 0 || len(snap.FavoriteProducts) != 0 {
		t.Fatalf("snapshot = %#v, want empty collections", snap)
	}
}

func TestStore_FavoritesAreIdempotent(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddFavoriteProduct(product("A"))
	s.AddFavoriteProduct(product("A"))
	s.AddFavoriteProduct(cijene.Product{ID: "other-id", EAN: "3850104047060"})
	s.RemoveFavoriteProduct("missing")

	if !s.IsFavoriteProduct("A") || !s.IsFavoriteProduct("3850104047060") {
		t.Fatalf("expected A and the EAN product to be favorites")
	}
	if s.IsFavoriteProduct("other-id") {
		t.Fatalf("products with an EAN are keyed by EAN, not id")
	}
	if got := productKeys(s.Snapshot().FavoriteProducts); !reflect.DeepEqual(got, []string{"A", "3850104047060"}) {
		t.Fatalf("FavoriteProducts = %v, want [A 3850104047060]", got)
	}

	s.RemoveFavoriteProduct("A")
	s.RemoveFavoriteProduct("A")
	if s.IsFavoriteProduct("A") {
		t.Fatalf("A still favorite after remove")
	}
	if s.IsFavoriteProduct("") {
		t.Fatalf("empty id must never be a favorite")
	}
}

func TestStore_FavoriteStoresUseCompositeKey(t *testing.T) {
	s, _ := newTestStore(t)

	noID := cijene.Store{ChainCode: "konzum", Address: "Ilica 1", Name: "Konzum Ilica"}
	s.AddFavoriteStore(noID)
	s.AddFavoriteStore(cijene.Store{Code: "S-7", Name: "Spar"})
	s.AddFavoriteStore(noID)

	if !s.IsFavoriteStore("konzum-Ilica 1") || !s.IsFavoriteStore("S-7") {
		t.Fatalf("expected both stores to be favorites: %#v", s.Snapshot().FavoriteStores)
	}
	if n := len(s.Snapshot().FavoriteStores); n != 2 {
		t.Fatalf("len(FavoriteStores) = %d, want 2", n)
	}
	s.RemoveFavoriteStore("konzum-Ilica 1")
	if s.IsFavoriteStore("konzum-Ilica 1") {
		t.Fatalf("store still favorite after remove")
	}
}

func TestStore_RefreshFavoritesReplacesInPlace(t *testing.T) {
	s, storage := newTestStore(t)

	s.AddFavoriteProduct(product("A"))
	s.AddFavoriteProduct(product("B"))
	s.AddFavoriteStore(cijene.Store{ID: "st-1", Name: "Old name"})

	s.RefreshFavoriteProduct(cijene.Product{ID: "A", Name: "Fresh A", Brand: "Dukat"})
	s.RefreshFavoriteProduct(product("missing"))
	s.RefreshFavoriteStore(cijene.Store{ID: "st-1", Name: "New name"})
	s.RefreshFavoriteStore(cijene.Store{ID: "st-2", Name: "Not saved"})

	snap := s.Snapshot()
	if got := productKeys(snap.FavoriteProducts); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("FavoriteProducts = %v, want [A B]", got)
	}
	if snap.FavoriteProducts[0].Name != "Fresh A" || snap.FavoriteProducts[0].Brand != "Dukat" {
		t.Fatalf("product not refreshed: %#v", snap.FavoriteProducts[0])
	}
	if len(snap.FavoriteStores) != 1 || snap.FavoriteStores[0].Name != "New name" {
		t.Fatalf("FavoriteStores = %#v, want one refreshed store", snap.FavoriteStores)
	}

	restored := New(storage, zerolog.Nop()).Snapshot()
	if restored.FavoriteProducts[0].Name != "Fresh A" {
		t.Fatalf("refresh not persisted: %#v", restored.FavoriteProducts[0])
	}
}

func TestStore_CompareListCapsAtFour(t *testing.T) {
	s, _ := newTestStore(t)

	for _, id := range []string{"A", "B", "A", "C", "D", "E"} {
		s.AddCompareProduct(product(id))
	}

	if got := productKeys(s.Snapshot().CompareProducts); !reflect.DeepEqual(got, []string{"A", "B", "C", "D"}) {
		t.Fatalf("CompareProducts = %v, want [A B C D]", got)
	}
	if s.IsProductInCompare("E") {
		t.Fatalf("E should have been rejected")
	}

	s.AddCompareProduct(cijene.Product{Name: "no id"})
	s.RemoveCompareProduct("B")
	s.AddCompareProduct(cijene.Product{Name: "still no id"})
	if got := productKeys(s.Snapshot().CompareProducts); !reflect.DeepEqual(got, []string{"A", "C", "D"}) {
		t.Fatalf("CompareProducts = %v, want [A C D]", got)
	}

	s.ClearCompareProducts()
	if n := len(s.Snapshot().CompareProducts); n != 0 {
		t.Fatalf("len(CompareProducts) = %d after clear, want 0", n)
	}
}

func TestStore_SearchHistoryDoesNotReorder(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddProductSearch("milk")
	s.AddProductSearch("  milk ")
	s.AddProductSearch("bread")
	s.AddProductSearch("   ")

	if got := s.Snapshot().ProductSearchHistory; !reflect.DeepEqual(got, []string{"bread", "milk"}) {
		t.Fatalf("ProductSearchHistory = %v, want [bread milk]", got)
	}

	s.AddProductSearch("milk")
	if got := s.Snapshot().ProductSearchHistory; !reflect.DeepEqual(got, []string{"bread", "milk"}) {
		t.Fatalf("re-adding milk reordered history: %v", got)
	}
}

func TestStore_SearchHistoryCap(t *testing.T) {
	s, _ := newTestStore(t)

	for i := 0; i < 15; i++ {
		s.AddStoreSearch(fmt.Sprintf("q%d", i))
	}
	got := s.Snapshot().StoreSearchHistory
	if len(got) != MaxSearchHistory {
		t.Fatalf("len(StoreSearchHistory) = %d, want %d", len(got), MaxSearchHistory)
	}
	if got[0] != "q14" || got[MaxSearchHistory-1] != "q5" {
		t.Fatalf("StoreSearchHistory = %v, want q14..q5", got)
	}
	if n := len(s.Snapshot().ProductSearchHistory); n != 0 {
		t.Fatalf("store searches leaked into product history: %d", n)
	}
}

func TestStore_RecentlyViewedPromotes(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddRecentlyViewedProduct(product("Z"))
	s.AddRecentlyViewedProduct(product("Y"))
	s.AddRecentlyViewedProduct(product("X"))
	s.AddRecentlyViewedProduct(product("Y"))

	if got := productKeys(s.Snapshot().RecentlyViewedProducts); !reflect.DeepEqual(got, []string{"Y", "X", "Z"}) {
		t.Fatalf("RecentlyViewedProducts = %v, want [Y X Z]", got)
	}
}

func TestStore_RecentlyViewedCap(t *testing.T) {
	s, _ := newTestStore(t)

	for i := 0; i < 25; i++ {
		s.AddRecentlyViewedStore(cijene.Store{ID: fmt.Sprintf("s%d", i)})
	}
	s.AddRecentlyViewedStore(cijene.Store{ID: "s10"})

	got := s.Snapshot().RecentlyViewedStores
	if len(got) != MaxRecentItems {
		t.Fatalf("len(RecentlyViewedStores) = %d, want %d", len(got), MaxRecentItems)
	}
	seen := map[string]bool{}
	for _, st := range got {
		if seen[st.Key()] {
			t.Fatalf("duplicate %s in recently viewed", st.Key())
		}
		seen[st.Key()] = true
	}
	if got[0].ID != "s10" || got[1].ID != "s24" {
		t.Fatalf("front = %s,%s want s10,s24", got[0].ID, got[1].ID)
	}
}

func TestStore_SetSearchRadiusClamps(t *testing.T) {
	s, _ := newTestStore(t)

	cases := map[int]int{-5: MinSearchRadius, 0: MinSearchRadius, 99: MinSearchRadius, 100: 100, 2500: 2500, 50000: 50000, 90000: MaxSearchRadius}
	for in, want := range cases {
		s.SetSearchRadius(in)
		if got := s.Snapshot().SearchRadius; got != want {
			t.Fatalf("SetSearchRadius(%d) stored %d, want %d", in, got, want)
		}
	}
}

func TestStore_PreferencesValidateAndDedupe(t *testing.T) {
	s, _ := newTestStore(t)

	s.SetTheme("neon")
	s.SetCurrency("USD")
	s.SetLanguage("de")
	snap := s.Snapshot()
	if snap.Theme != ThemeSystem || snap.Currency != CurrencyEUR || snap.Language != LanguageEnglish {
		t.Fatalf("invalid values were stored: %q %q %q", snap.Theme, snap.Currency, snap.Language)
	}

	s.SetTheme(ThemeDark)
	s.SetCurrency(CurrencyHRK)
	s.SetLanguage(LanguageCroatian)
	s.SetPreferredChains([]string{"konzum", " spar ", "", "konzum"})
	s.AddPreferredChain("lidl")
	s.AddPreferredChain("spar")
	s.RemovePreferredChain("konzum")

	snap = s.Snapshot()
	if snap.Theme != ThemeDark || snap.Currency != CurrencyHRK || snap.Language != LanguageCroatian {
		t.Fatalf("preferences = %q %q %q, want dark HRK hr", snap.Theme, snap.Currency, snap.Language)
	}
	if !reflect.DeepEqual(snap.PreferredChains, []string{"spar", "lidl"}) {
		t.Fatalf("PreferredChains = %v, want [spar lidl]", snap.PreferredChains)
	}
}

func TestStore_SidebarIsTransient(t *testing.T) {
	s, storage := newTestStore(t)

	s.ToggleSidebar()
	if !s.Snapshot().SidebarOpen {
		t.Fatalf("SidebarOpen = false after toggle")
	}
	s.SetSidebarOpen(false)
	s.AddCompareProduct(product("A"))
	if storage.Writes() != 0 {
		t.Fatalf("transient changes wrote %d times, want 0", storage.Writes())
	}

	restored := New(storage, zerolog.Nop())
	if len(restored.Snapshot().CompareProducts) != 0 {
		t.Fatalf("compare list should not be persisted")
	}
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	s, storage := newTestStore(t)

	lat, lon, city := 45.815, 15.9819, "Zagreb"
	s.SetTheme(ThemeLight)
	s.SetDefaultLocation(Location{Lat: &lat, Lon: &lon, City: &city})
	s.SetSearchRadius(12000)
	s.SetPreferredChains([]string{"konzum"})
	s.SetCurrency(CurrencyHRK)
	s.SetLanguage(LanguageCroatian)
	s.AddFavoriteProduct(product("A"))
	s.AddFavoriteStore(cijene.Store{ID: "S1", Latitude: &lat, Longitude: &lon})
	s.AddProductSearch("milk")
	s.AddStoreSearch("Ilica")
	s.AddRecentlyViewedProduct(product("B"))
	s.AddRecentlyViewedStore(cijene.Store{ID: "S2"})

	restored := New(storage, zerolog.Nop())
	if got, want := restored.Persisted(), s.Persisted(); !reflect.DeepEqual(got, want) {
		t.Fatalf("restored state = %#v\nwant %#v", got, want)
	}
}

func TestStore_CorruptStorageFallsBackToDefaults(t *testing.T) {
	storage := persist.NewMemoryStorage()
	_ = storage.Set(persist.AppStoreKey, []byte("{broken"))

	s := New(storage, zerolog.Nop())
	if got := s.Persisted(); !reflect.DeepEqual(got, defaultPersisted()) {
		t.Fatalf("state = %#v, want defaults", got)
	}
}

func TestStore_RestoreRepairsInvalidValues(t *testing.T) {
	storage := persist.NewMemoryStorage()
	_ = storage.Set(persist.AppStoreKey, []byte(`{"state":{"theme":"neon","searchRadius":999999,"currency":"USD"},"version":0}`))

	snap := New(storage, zerolog.Nop()).Snapshot()
	if snap.Theme != ThemeSystem || snap.SearchRadius != MaxSearchRadius || snap.Currency != CurrencyEUR || snap.Language != LanguageEnglish {
		t.Fatalf("restored = %q %d %q %q, want system 50000 EUR en", snap.Theme, snap.SearchRadius, snap.Currency, snap.Language)
	}
}

func TestStore_SaveFailureIsSwallowed(t *testing.T) {
	s, storage := newTestStore(t)
	storage.FailWrites(errors.New("quota exceeded"))

	s.AddFavoriteProduct(product("A"))
	if !s.IsFavoriteProduct("A") {
		t.Fatalf("in-memory state should change even when saving fails")
	}

	storage.FailWrites(nil)
	s.AddFavoriteProduct(product("B"))
	restored := New(storage, zerolog.Nop())
	if !restored.IsFavoriteProduct("A") || !restored.IsFavoriteProduct("B") {
		t.Fatalf("next successful save should carry the full state")
	}
}

func TestStore_SubscribeSkipsNoOps(t *testing.T) {
	s, storage := newTestStore(t)

	var calls int
	var last Snapshot
	cancel := s.Subscribe(func(snap Snapshot) {
		calls++
		last = snap
	})

	s.AddFavoriteProduct(product("A"))
	s.AddFavoriteProduct(product("A"))
	s.RemoveFavoriteProduct("missing")
	s.SetSearchRadius(DefaultSearchRadius)

	if calls != 1 {
		t.Fatalf("subscriber calls = %d, want 1", calls)
	}
	if storage.Writes() != 1 {
		t.Fatalf("writes = %d, want 1", storage.Writes())
	}
	if len(last.FavoriteProducts) != 1 {
		t.Fatalf("subscriber saw %d favorites, want 1", len(last.FavoriteProducts))
	}

	last.FavoriteProducts[0].ID = "mutated"
	if !s.IsFavoriteProduct("A") {
		t.Fatalf("subscriber copy leaked into the store")
	}

	cancel()
	s.AddFavoriteProduct(product("B"))
	if calls != 1 {
		t.Fatalf("cancelled subscriber was called")
	}
}

func TestStore_ResetAppState(t *testing.T) {
	s, storage := newTestStore(t)

	s.SetTheme(ThemeDark)
	s.AddFavoriteProduct(product("A"))
	s.AddCompareProduct(product("A"))
	s.AddProductSearch("milk")
	s.ToggleSidebar()

	s.ResetAppState()
	snap := s.Snapshot()
	if !reflect.DeepEqual(snap, Snapshot{Persisted: defaultPersisted()}) {
		t.Fatalf("snapshot after reset = %#v, want defaults", snap)
	}
	if got := New(storage, zerolog.Nop()).Persisted(); !reflect.DeepEqual(got, defaultPersisted()) {
		t.Fatalf("persisted after reset = %#v, want defaults", got)
	}
}
