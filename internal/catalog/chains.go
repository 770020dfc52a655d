package catalog

import (
	"math"

	"github.com/five82/cijene/internal/cijene"
)

// ChainSort selects the chain ordering.
type ChainSort string

const (
	ChainSortName     ChainSort = "name"
	ChainSortStores   ChainSort = "stores_count"
	ChainSortProducts ChainSort = "products_count"
	ChainSortUpdated  ChainSort = "last_updated"
)

// ChainSorts lists the chain orderings in UI cycle order.
var ChainSorts = []ChainSort{ChainSortName, ChainSortStores, ChainSortProducts, ChainSortUpdated}

// ChainFilter filters chains by name or code and minimum counts.
type ChainFilter struct {
	Query       string
	MinStores   int
	MinProducts int
	Sort        ChainSort
	Direction   Direction
}

// Apply filters and sorts chains.
func (f ChainFilter) Apply(chains []cijene.Chain) []cijene.Chain {
	spec := Spec[cijene.Chain]{
		Query: f.Query,
		SearchFields: []func(cijene.Chain) string{
			func(c cijene.Chain) string { return c.Name },
			func(c cijene.Chain) string { return c.Code },
		},
		Sort:      chainSortKey(f.Sort),
		Direction: f.Direction,
	}
	if f.MinStores > 0 {
		spec.Predicates = append(spec.Predicates, func(c cijene.Chain) bool { return c.StoresCount >= f.MinStores })
	}
	if f.MinProducts > 0 {
		spec.Predicates = append(spec.Predicates, func(c cijene.Chain) bool { return c.ProductsCount >= f.MinProducts })
	}
	return Apply(chains, spec)
}

func chainSortKey(s ChainSort) SortKey[cijene.Chain] {
	switch s {
	case ChainSortName:
		return ByText(func(c cijene.Chain) string { return c.Name })
	case ChainSortStores:
		return ByNumber(func(c cijene.Chain) float64 { return float64(c.StoresCount) })
	case ChainSortProducts:
		return ByNumber(func(c cijene.Chain) float64 { return float64(c.ProductsCount) })
	case ChainSortUpdated:
		return ByNumber(func(c cijene.Chain) float64 {
			t := c.LastUpdatedTime()
			if t.IsZero() {
				return 0
			}
			return float64(t.Unix())
		})
	default:
		return SortKey[cijene.Chain]{}
	}
}

// ChainSummary aggregates a chain list for the footer.
type ChainSummary struct {
	Chains        int
	TotalStores   int
	TotalProducts int
	AverageStores int
}

// SummarizeChains totals stores and products across chains.
func SummarizeChains(chains []cijene.Chain) ChainSummary {
	s := ChainSummary{Chains: len(chains)}
	for _, c := range chains {
		s.TotalStores += c.StoresCount
		s.TotalProducts += c.ProductsCount
	}
	if len(chains) > 0 {
		s.AverageStores = int(math.Round(float64(s.TotalStores) / float64(len(chains))))
	}
	return s
}
