package catalog

import (
	"slices"
	"strings"

	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/geo"
)

// StoreSort selects the store ordering.
type StoreSort string

const (
	StoreSortName     StoreSort = "name"
	StoreSortCity     StoreSort = "city"
	StoreSortAddress  StoreSort = "address"
	StoreSortType     StoreSort = "store_type"
	StoreSortDistance StoreSort = "distance"
)

// StoreSorts lists the store orderings in UI cycle order.
var StoreSorts = []StoreSort{StoreSortName, StoreSortCity, StoreSortAddress, StoreSortType, StoreSortDistance}

// StoreFilter filters stores by text, city, type, chain and distance.
type StoreFilter struct {
	Query     string
	City      string
	StoreType string
	Chains    []string
	// Near with a positive Radius (meters) keeps only stores with
	// coordinates inside the circle. Distance sorting also measures from Near.
	Near      *geo.Point
	Radius    float64
	Sort      StoreSort
	Direction Direction
}

// Apply filters and sorts stores.
func (f StoreFilter) Apply(stores []cijene.Store) []cijene.Store {
	spec := Spec[cijene.Store]{
		Query: f.Query,
		SearchFields: []func(cijene.Store) string{
			func(s cijene.Store) string { return s.Name },
			func(s cijene.Store) string { return s.Address },
			func(s cijene.Store) string { return s.City },
		},
		Sort:      f.sortKey(),
		Direction: f.Direction,
	}
	if city := strings.TrimSpace(f.City); city != "" {
		spec.Predicates = append(spec.Predicates, func(s cijene.Store) bool {
			return strings.EqualFold(strings.TrimSpace(s.City), city)
		})
	}
	if f.StoreType != "" {
		spec.Predicates = append(spec.Predicates, func(s cijene.Store) bool { return s.StoreType == f.StoreType })
	}
	if len(f.Chains) > 0 {
		spec.Predicates = append(spec.Predicates, func(s cijene.Store) bool { return containsFold(f.Chains, s.ChainCode) })
	}
	if f.Near != nil && f.Radius > 0 {
		center := *f.Near
		spec.Predicates = append(spec.Predicates, func(s cijene.Store) bool {
			p, ok := storePoint(s)
			return ok && geo.WithinRadius(center, p, f.Radius)
		})
	}
	return Apply(stores, spec)
}

func (f StoreFilter) sortKey() SortKey[cijene.Store] {
	switch f.Sort {
	case StoreSortName:
		return ByText(func(s cijene.Store) string { return s.Name })
	case StoreSortCity:
		return ByText(func(s cijene.Store) string { return s.City })
	case StoreSortAddress:
		return ByText(func(s cijene.Store) string { return s.Address })
	case StoreSortType:
		return ByText(func(s cijene.Store) string { return s.StoreType })
	case StoreSortDistance:
		return ByNumber(func(s cijene.Store) float64 { return StoreDistance(s, f.Near) })
	default:
		return SortKey[cijene.Store]{}
	}
}

// StoreDistance returns the distance to s in meters. The server-provided
// distance wins; otherwise it is computed from near. Unknown distances are 0.
func StoreDistance(s cijene.Store, near *geo.Point) float64 {
	if s.Distance != nil {
		return *s.Distance
	}
	p, ok := storePoint(s)
	if !ok || near == nil {
		return 0
	}
	return geo.Distance(*near, p)
}

func storePoint(s cijene.Store) (geo.Point, bool) {
	if !s.HasCoordinates() {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *s.Latitude, Lon: *s.Longitude}, true
}

// UniqueCities returns the sorted distinct non-empty cities.
func UniqueCities(stores []cijene.Store) []string {
	return uniqueSorted(stores, func(s cijene.Store) string { return s.City })
}

// UniqueStoreTypes returns the sorted distinct non-empty store types.
func UniqueStoreTypes(stores []cijene.Store) []string {
	return uniqueSorted(stores, func(s cijene.Store) string { return s.StoreType })
}

func uniqueSorted[T any](items []T, field func(T) string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0)
	for _, item := range items {
		v := strings.TrimSpace(field(item))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
