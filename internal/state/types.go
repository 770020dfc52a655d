package state

import "github.com/five82/cijene/internal/cijene"

// Theme is the UI color scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// Currency is the display currency preference.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyHRK Currency = "HRK"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == CurrencyEUR || c == CurrencyHRK
}

// Language is the UI language preference.
type Language string

const (
	LanguageEnglish  Language = "en"
	LanguageCroatian Language = "hr"
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageCroatian
}

// Collection limits and preference bounds.
const (
	MaxSearchHistory    = 10
	MaxRecentItems      = 20
	MaxCompareProducts  = 4
	MinSearchRadius     = 100
	MaxSearchRadius     = 50000
	DefaultSearchRadius = 5000
	DefaultCountry      = "HR"
)

// Location is the user's default search location. Unknown coordinates and
// city are nil.
type Location struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	City    *string  `json:"city"`
	Country string   `json:"country"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Persisted is the subset of state written to storage on every change.
type Persisted struct {
	Theme                  Theme            `json:"theme"`
	DefaultLocation        Location         `json:"defaultLocation"`
	SearchRadius           int              `json:"searchRadius"`
	PreferredChains        []string         `json:"preferredChains"`
	Currency               Currency         `json:"currency"`
	Language               Language         `json:"language"`
	FavoriteProducts       []cijene.Product `json:"favoriteProducts"`
	FavoriteStores         []cijene.Store   `json:"favoriteStores"`
	ProductSearchHistory   []string         `json:"productSearchHistory"`
	StoreSearchHistory     []string         `json:"storeSearchHistory"`
	RecentlyViewedProducts []cijene.Product `json:"recentlyViewedProducts"`
	RecentlyViewedStores   []cijene.Store   `json:"recentlyViewedStores"`
}

// Snapshot is a copy of the whole store, including transient fields that are
// never persisted.
type Snapshot struct {
	Persisted
	SidebarOpen     bool
	CompareProducts []cijene.Product
}

func defaultPersisted() Persisted {
	return Persisted{
		Theme:           ThemeSystem,
		DefaultLocation: Location{Country: DefaultCountry},
		SearchRadius:    DefaultSearchRadius,
		Currency:        CurrencyEUR,
		Language:        LanguageEnglish,
	}
}

// normalize repairs values restored from storage that no setter could have
// produced.
func (p *Persisted) normalize() {
	def := defaultPersisted()
	if !p.Theme.Valid() {
		p.Theme = def.Theme
	}
	if !p.Currency.Valid() {
		p.Currency = def.Currency
	}
	if !p.Language.Valid() {
		p.Language = def.Language
	}
	if p.SearchRadius == 0 {
		p.SearchRadius = def.SearchRadius
	}
	p.SearchRadius = clampRadius(p.SearchRadius)
	if p.DefaultLocation.Country == "" {
		p.DefaultLocation.Country = DefaultCountry
	}
}

func (p Persisted) clone() Persisted {
	out := p
	out.DefaultLocation = p.DefaultLocation.clone()
	out.PreferredChains = cloneSlice(p.PreferredChains)
	out.FavoriteProducts = cloneSlice(p.FavoriteProducts)
	out.FavoriteStores = cloneStores(p.FavoriteStores)
	out.ProductSearchHistory = cloneSlice(p.ProductSearchHistory)
	out.StoreSearchHistory = cloneSlice(p.StoreSearchHistory)
	out.RecentlyViewedProducts = cloneSlice(p.RecentlyViewedProducts)
	out.RecentlyViewedStores = cloneStores(p.RecentlyViewedStores)
	return out
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Persisted:       s.Persisted.clone(),
		SidebarOpen:     s.SidebarOpen,
		CompareProducts: cloneSlice(s.CompareProducts),
	}
}

func (l Location) clone() Location {
	return Location{
		Lat:     cloneFloat(l.Lat),
		Lon:     cloneFloat(l.Lon),
		City:    cloneString(l.City),
		Country: l.Country,
	}
}

func cloneStores(stores []cijene.Store) []cijene.Store {
	out := cloneSlice(stores)
	for i := range out {
		out[i].Latitude = cloneFloat(out[i].Latitude)
		out[i].Longitude = cloneFloat(out[i].Longitude)
		out[i].Distance = cloneFloat(out[i].Distance)
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func clampRadius(meters int) int {
	return max(MinSearchRadius, min(MaxSearchRadius, meters))
}
