package catalog

import (
	"strings"

	"github.com/five82/cijene/internal/cijene"
)

// ProductSort selects the product ordering.
type ProductSort string

const (
	ProductSortName     ProductSort = "name"
	ProductSortBrand    ProductSort = "brand"
	ProductSortCategory ProductSort = "category"
)

// ProductSorts lists the product orderings in UI cycle order.
var ProductSorts = []ProductSort{ProductSortName, ProductSortBrand, ProductSortCategory}

// ProductFilter filters products by text, chain and category.
type ProductFilter struct {
	Query     string
	Chains    []string
	Category  string
	Sort      ProductSort
	Direction Direction
}

// Apply filters and sorts products.
func (f ProductFilter) Apply(products []cijene.Product) []cijene.Product {
	spec := Spec[cijene.Product]{
		Query: f.Query,
		SearchFields: []func(cijene.Product) string{
			func(p cijene.Product) string { return p.Name },
			func(p cijene.Product) string { return p.Brand },
			func(p cijene.Product) string { return p.EAN },
			func(p cijene.Product) string { return p.Category },
		},
		Direction: f.Direction,
	}
	switch f.Sort {
	case ProductSortName:
		spec.Sort = ByText(func(p cijene.Product) string { return p.Name })
	case ProductSortBrand:
		spec.Sort = ByText(func(p cijene.Product) string { return p.Brand })
	case ProductSortCategory:
		spec.Sort = ByText(func(p cijene.Product) string { return p.Category })
	}
	if len(f.Chains) > 0 {
		spec.Predicates = append(spec.Predicates, func(p cijene.Product) bool { return containsFold(f.Chains, p.ChainCode) })
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		spec.Predicates = append(spec.Predicates, func(p cijene.Product) bool {
			return strings.EqualFold(strings.TrimSpace(p.Category), category)
		})
	}
	return Apply(products, spec)
}
