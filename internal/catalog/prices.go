package catalog

import (
	"strings"

	"github.com/five82/cijene/internal/cijene"
)

// PriceSort selects the price ordering on the product detail view.
type PriceSort string

const (
	PriceSortAsc   PriceSort = "price-asc"
	PriceSortDesc  PriceSort = "price-desc"
	PriceSortChain PriceSort = "chain"
	PriceSortDate  PriceSort = "date-desc"
)

// PriceSorts lists the price orderings in UI cycle order.
var PriceSorts = []PriceSort{PriceSortAsc, PriceSortDesc, PriceSortChain, PriceSortDate}

// PriceFilter narrows a price comparison.
type PriceFilter struct {
	Chain       string
	SpecialOnly bool
	Sort        PriceSort
}

// Apply filters and sorts prices by effective price, chain or date.
func (f PriceFilter) Apply(prices []cijene.Price) []cijene.Price {
	spec := Spec[cijene.Price]{}
	if chain := strings.TrimSpace(f.Chain); chain != "" {
		spec.Predicates = append(spec.Predicates, func(p cijene.Price) bool { return strings.EqualFold(p.Chain, chain) })
	}
	if f.SpecialOnly {
		spec.Predicates = append(spec.Predicates, cijene.Price.HasSpecial)
	}
	switch f.Sort {
	case PriceSortAsc:
		spec.Sort = ByNumber(cijene.Price.Effective)
	case PriceSortDesc:
		spec.Sort = ByNumber(cijene.Price.Effective)
		spec.Direction = Desc
	case PriceSortChain:
		spec.Sort = ByText(func(p cijene.Price) string { return p.Chain })
	case PriceSortDate:
		spec.Sort = ByText(func(p cijene.Price) string { return p.Date })
		spec.Direction = Desc
	}
	return Apply(prices, spec)
}

// BestPrice returns the price with the lowest effective value.
func BestPrice(prices []cijene.Price) (cijene.Price, bool) {
	return pickPrice(prices, func(candidate, current float64) bool { return candidate < current })
}

// WorstPrice returns the price with the highest effective value.
func WorstPrice(prices []cijene.Price) (cijene.Price, bool) {
	return pickPrice(prices, func(candidate, current float64) bool { return candidate > current })
}

func pickPrice(prices []cijene.Price, better func(candidate, current float64) bool) (cijene.Price, bool) {
	var best cijene.Price
	found := false
	for _, p := range prices {
		if p.Effective() <= 0 {
			continue
		}
		if !found || better(p.Effective(), best.Effective()) {
			best = p
			found = true
		}
	}
	return best, found
}
