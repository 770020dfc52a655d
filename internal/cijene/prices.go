package cijene

import (
	"context"
	"strings"
)

// PriceQuery configures /v1/prices requests. Radius is in meters.
type PriceQuery struct {
	EANs      []string `validate:"required,min=1,dive,ean"`
	Chains    []string
	City      string
	Address   string
	Latitude  *float64 `validate:"omitempty,latitude"`
	Longitude *float64 `validate:"omitempty,longitude"`
	Radius    int      `validate:"omitempty,gte=500,lte=50000"`
}

// GetPrices returns every store price for the requested EANs.
func (c *Client) GetPrices(ctx context.Context, query PriceQuery) ([]Price, error) {
	eans := make([]string, 0, len(query.EANs))
	for _, ean := range query.EANs {
		if ean = strings.TrimSpace(ean); ean != "" {
			eans = append(eans, ean)
		}
	}
	query.EANs = eans
	if err := validateRequest(query); err != nil {
		return nil, err
	}

	p := newParams().
		addJoined("eans", query.EANs).
		addJoined("chains", query.Chains).
		add("city", query.City).
		add("address", query.Address).
		addFloat("lat", query.Latitude).
		addFloat("lon", query.Longitude).
		addRadius(query.Radius)

	var payload storePricesResponse
	if err := c.getJSON(ctx, p.url(pricesPath), &payload); err != nil {
		return nil, err
	}

	prices := make([]Price, 0, len(payload.StorePrices))
	for _, sp := range payload.StorePrices {
		prices = append(prices, sp.toPrice())
	}
	return prices, nil
}

// ComparePrices fetches the product's prices and aggregates them. When the
// query names no EANs the product's key is used.
func (c *Client) ComparePrices(ctx context.Context, product Product, query PriceQuery) (PriceComparison, error) {
	if len(query.EANs) == 0 {
		query.EANs = []string{product.Key()}
	}
	prices, err := c.GetPrices(ctx, query)
	if err != nil {
		return PriceComparison{}, err
	}
	return BuildComparison(product, prices), nil
}

// BuildComparison aggregates prices over their effective values, ignoring
// non-positive ones. Chains are listed once in first-seen order.
func BuildComparison(product Product, prices []Price) PriceComparison {
	out := PriceComparison{
		Product: product,
		Prices:  append([]Price(nil), prices...),
		Chains:  []string{},
	}

	seen := make(map[string]bool)
	var sum float64
	var n int
	for _, p := range prices {
		if !seen[p.Chain] {
			seen[p.Chain] = true
			out.Chains = append(out.Chains, p.Chain)
		}
		v := p.Effective()
		if v <= 0 {
			continue
		}
		if n == 0 || v < out.MinPrice {
			out.MinPrice = v
		}
		if n == 0 || v > out.MaxPrice {
			out.MaxPrice = v
		}
		sum += v
		n++
	}
	if n > 0 {
		out.AvgPrice = sum / float64(n)
	}
	return out
}

func (sp storePrice) toPrice() Price {
	p := Price{
		ProductID:    sp.EAN,
		StoreID:      sp.Store.Code,
		Chain:        sp.Chain,
		Price:        sp.RegularPrice.Value,
		Currency:     "EUR",
		Date:         sp.PriceDate,
		StoreAddress: sp.Store.Address,
		StoreCity:    sp.Store.City,
	}
	if sp.SpecialPrice.Set {
		v := sp.SpecialPrice.Value
		p.SpecialPrice = &v
	}
	if sp.UnitPrice.Set {
		p.Unit = "unit"
	}
	return p
}
