package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/geo"
)

func ptr(v float64) *float64 { return &v }

func chainNames(chains []cijene.Chain) []string {
	out := make([]string, 0, len(chains))
	for _, c := range chains {
		out = append(out, c.Name)
	}
	return out
}

func TestApply_EmptyQueryKeepsEverything(t *testing.T) {
	items := []string{"b", "a", "c"}
	spec := Spec[string]{
		Query:        "   ",
		SearchFields: []func(string) string{func(s string) string { return s }},
	}

	got := Apply(items, spec)
	assert.Equal(t, items, got)

	got[0] = "mutated"
	assert.Equal(t, "b", items[0], "Apply must return a new slice")
}

func TestApply_QueryIsCaseInsensitiveSubstringAcrossFields(t *testing.T) {
	type pair struct{ a, b string }
	items := []pair{{"Konzum", "KONZUM"}, {"Spar", "spar"}, {"Plodine", "plo"}, {"Lidl", "lidl"}}
	spec := Spec[pair]{
		Query: "ON",
		SearchFields: []func(pair) string{
			func(p pair) string { return p.a },
			func(p pair) string { return p.b },
		},
	}

	got := Apply(items, spec)
	require.Len(t, got, 1)
	assert.Equal(t, "Konzum", got[0].a)

	spec.Query = "pl"
	got = Apply(items, spec)
	require.Len(t, got, 1)
	assert.Equal(t, "Plodine", got[0].a)

	for _, q := range []string{"i", "Z", "par"} {
		spec.Query = q
		for _, item := range Apply(items, spec) {
			hit := strings.Contains(strings.ToLower(item.a), strings.ToLower(q)) ||
				strings.Contains(strings.ToLower(item.b), strings.ToLower(q))
			assert.True(t, hit, "query %q matched %v", q, item)
		}
	}
}

func TestApply_StableSortBothDirections(t *testing.T) {
	type row struct {
		name string
		n    int
	}
	items := []row{{"b", 2}, {"a", 1}, {"c", 2}, {"d", 1}}

	asc := Apply(items, Spec[row]{Sort: ByNumber(func(r row) float64 { return float64(r.n) })})
	assert.Equal(t, []row{{"a", 1}, {"d", 1}, {"b", 2}, {"c", 2}}, asc)

	desc := Apply(items, Spec[row]{Sort: ByNumber(func(r row) float64 { return float64(r.n) }), Direction: Desc})
	assert.Equal(t, []row{{"b", 2}, {"c", 2}, {"a", 1}, {"d", 1}}, desc)

	byName := Apply([]row{{"beta", 0}, {"Alpha", 0}, {"alpha", 1}}, Spec[row]{Sort: ByText(func(r row) string { return r.name })})
	assert.Equal(t, []row{{"Alpha", 0}, {"alpha", 1}, {"beta", 0}}, byName)

	assert.Equal(t, []row{{"b", 2}, {"a", 1}, {"c", 2}, {"d", 1}}, items, "input must not be reordered")
}

func TestChainFilter_MinStores(t *testing.T) {
	chains := []cijene.Chain{
		{Code: "konzum", Name: "Konzum", StoresCount: 150},
		{Code: "spar", Name: "Spar", StoresCount: 95},
	}

	got := ChainFilter{MinStores: 100}.Apply(chains)
	assert.Equal(t, []string{"Konzum"}, chainNames(got))
}

func TestChainFilter_QueryAndSort(t *testing.T) {
	chains := []cijene.Chain{
		{Code: "spar", Name: "Spar", StoresCount: 95, ProductsCount: 30000, LastUpdated: "2025-06-02T08:00:00Z"},
		{Code: "konzum", Name: "Konzum", StoresCount: 150, ProductsCount: 40000, LastUpdated: "2025-06-01T08:00:00Z"},
		{Code: "ktc", Name: "KTC", StoresCount: 40, ProductsCount: 12000},
	}

	assert.Equal(t, []string{"Konzum", "KTC"}, chainNames(ChainFilter{Query: "k", Sort: ChainSortName}.Apply(chains)))
	assert.Equal(t, []string{"Spar"}, chainNames(ChainFilter{Query: "SPAR"}.Apply(chains)))
	assert.Equal(t, []string{"Konzum", "Spar"}, chainNames(ChainFilter{MinProducts: 30000, Sort: ChainSortProducts, Direction: Desc}.Apply(chains)))
	assert.Equal(t, []string{"KTC", "Konzum", "Spar"}, chainNames(ChainFilter{Sort: ChainSortUpdated}.Apply(chains)))
}

func TestSummarizeChains(t *testing.T) {
	s := SummarizeChains([]cijene.Chain{
		{StoresCount: 150, ProductsCount: 100},
		{StoresCount: 95, ProductsCount: 50},
	})
	assert.Equal(t, ChainSummary{Chains: 2, TotalStores: 245, TotalProducts: 150, AverageStores: 123}, s)
	assert.Equal(t, ChainSummary{}, SummarizeChains(nil))
}

func TestStoreFilter(t *testing.T) {
	center := geo.Point{Lat: 45.8150, Lon: 15.9819}
	stores := []cijene.Store{
		{ID: "1", Name: "Konzum Ilica", Address: "Ilica 1", City: "Zagreb", ChainCode: "konzum", StoreType: "supermarket", Latitude: ptr(45.8152), Longitude: ptr(15.9760)},
		{ID: "2", Name: "Spar Avenue", Address: "Avenija Dubrovnik 16", City: "ZAGREB", ChainCode: "spar", StoreType: "hipermarket", Latitude: ptr(45.7760), Longitude: ptr(15.9900)},
		{ID: "3", Name: "Konzum Split", Address: "Poljička 1", City: "Split", ChainCode: "konzum", StoreType: "supermarket", Latitude: ptr(43.5081), Longitude: ptr(16.4402)},
		{ID: "4", Name: "Spar bez lokacije", Address: "Nepoznata", City: "Zagreb", ChainCode: "spar"},
	}
	ids := func(list []cijene.Store) []string {
		out := []string{}
		for _, s := range list {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "4"}, ids(StoreFilter{City: "zagreb"}.Apply(stores)))
	assert.Equal(t, []string{"1", "3"}, ids(StoreFilter{StoreType: "supermarket"}.Apply(stores)))
	assert.Equal(t, []string{"2", "4"}, ids(StoreFilter{Chains: []string{"SPAR"}}.Apply(stores)))
	assert.Equal(t, []string{"3"}, ids(StoreFilter{Query: "polj"}.Apply(stores)))
	assert.Equal(t, []string{"1"}, ids(StoreFilter{Near: &center, Radius: 2000}.Apply(stores)))
	assert.Equal(t, []string{"1", "2"}, ids(StoreFilter{Near: &center, Radius: 10000, Sort: StoreSortDistance}.Apply(stores)))
	assert.Equal(t, []string{"2", "3"}, ids(StoreFilter{Query: "o", Chains: []string{"spar", "konzum"}, Sort: StoreSortCity, Direction: Desc}.Apply(stores[1:3])))

	assert.Equal(t, []string{"Split", "ZAGREB", "Zagreb"}, UniqueCities(stores))
	assert.Equal(t, []string{"hipermarket", "supermarket"}, UniqueStoreTypes(stores))
}

func TestStoreDistancePrefersServerValue(t *testing.T) {
	center := geo.Point{Lat: 45.8150, Lon: 15.9819}
	assert.Equal(t, 42.0, StoreDistance(cijene.Store{Distance: ptr(42)}, &center))
	assert.Zero(t, StoreDistance(cijene.Store{}, &center))
	assert.Zero(t, StoreDistance(cijene.Store{Latitude: ptr(1), Longitude: ptr(1)}, nil))
}

func TestProductFilter(t *testing.T) {
	products := []cijene.Product{
		{ID: "1", Name: "Mlijeko 2.8%", Brand: "Dukat", EAN: "3850102123456", Category: "Mliječni", ChainCode: "konzum"},
		{ID: "2", Name: "Kruh", Brand: "Klara", EAN: "3859888000001", Category: "Pekarski", ChainCode: "spar"},
		{ID: "3", Name: "Jogurt", Brand: "dukat", Category: "mliječni", ChainCode: "spar"},
	}
	names := func(list []cijene.Product) []string {
		out := []string{}
		for _, p := range list {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Mlijeko 2.8%", "Jogurt"}, names(ProductFilter{Query: "DUKAT"}.Apply(products)))
	assert.Equal(t, []string{"Kruh"}, names(ProductFilter{Query: "3859888"}.Apply(products)))
	assert.Equal(t, []string{"Kruh", "Jogurt"}, names(ProductFilter{Chains: []string{"spar"}}.Apply(products)))
	assert.Equal(t, []string{"Jogurt", "Mlijeko 2.8%"}, names(ProductFilter{Category: "MLIJEČNI", Sort: ProductSortName}.Apply(products)))
}

func TestPriceFilter(t *testing.T) {
	prices := []cijene.Price{
		{StoreID: "a", Chain: "konzum", Price: 1.50, Date: "2025-06-01"},
		{StoreID: "b", Chain: "spar", Price: 1.80, SpecialPrice: ptr(1.20), Date: "2025-06-03"},
		{StoreID: "c", Chain: "lidl", Price: 1.35, Date: "2025-06-02"},
	}
	stores := func(list []cijene.Price) []string {
		out := []string{}
		for _, p := range list {
			out = append(out, p.StoreID)
		}
		return out
	}

	assert.Equal(t, []string{"b", "c", "a"}, stores(PriceFilter{Sort: PriceSortAsc}.Apply(prices)))
	assert.Equal(t, []string{"a", "c", "b"}, stores(PriceFilter{Sort: PriceSortDesc}.Apply(prices)))
	assert.Equal(t, []string{"a", "c", "b"}, stores(PriceFilter{Sort: PriceSortChain}.Apply(prices)))
	assert.Equal(t, []string{"b", "c", "a"}, stores(PriceFilter{Sort: PriceSortDate}.Apply(prices)))
	assert.Equal(t, []string{"b"}, stores(PriceFilter{SpecialOnly: true}.Apply(prices)))
	assert.Equal(t, []string{"c"}, stores(PriceFilter{Chain: "LIDL"}.Apply(prices)))

	best, ok := BestPrice(prices)
	require.True(t, ok)
	assert.Equal(t, "b", best.StoreID)
	worst, ok := WorstPrice(prices)
	require.True(t, ok)
	assert.Equal(t, "a", worst.StoreID)

	_, ok = BestPrice(nil)
	assert.False(t, ok)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, p.Items)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext())
	assert.True(t, p.HasPrev())

	last := Paginate(items, 99, 2)
	assert.Equal(t, 3, last.Page)
	assert.Equal(t, []int{5}, last.Items)
	assert.False(t, last.HasNext())

	empty := Paginate([]int(nil), 1, 0)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, 20, empty.PerPage)
	assert.Empty(t, empty.Items)
}
