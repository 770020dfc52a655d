package cijene

import (
	"context"
	"net/url"
	"strings"
)

// StoreSearch configures /v1/stores requests. Radius is in meters and is
// only sent together with coordinates.
type StoreSearch struct {
	Query     string
	City      string
	Chains    []string
	Latitude  *float64 `validate:"omitempty,latitude"`
	Longitude *float64 `validate:"omitempty,longitude"`
	Radius    int      `validate:"omitempty,gte=500,lte=50000"`
	Page      int      `validate:"omitempty,gte=1"`
	PerPage   int      `validate:"omitempty,gte=1,lte=100"`
}

// SearchStores runs a store search.
func (c *Client) SearchStores(ctx context.Context, query StoreSearch) (StoreSearchResult, error) {
	if err := validateRequest(query); err != nil {
		return StoreSearchResult{}, err
	}
	if (query.Latitude == nil) != (query.Longitude == nil) {
		return StoreSearchResult{}, ValidationError("Latitude and longitude must be provided together")
	}

	p := newParams().
		add("address", query.Query).
		add("city", query.City).
		addJoined("chains", query.Chains)
	if query.Latitude != nil && query.Longitude != nil {
		p.addFloat("lat", query.Latitude).
			addFloat("lon", query.Longitude).
			addRadius(query.Radius)
	}
	p.addPagination(query.Page, query.PerPage, MaxPerPage)

	var payload StoreSearchResult
	if err := c.getJSON(ctx, p.url(storesPath), &payload); err != nil {
		return StoreSearchResult{}, err
	}
	return payload, nil
}

// GetStore fetches one store by id.
func (c *Client) GetStore(ctx context.Context, id string) (Store, error) {
	id = strings.TrimSpace(id)
	if err := validateRequired(id, "id"); err != nil {
		return Store{}, err
	}
	var payload Store
	rel := &url.URL{Path: storesPath + url.PathEscape(id) + "/"}
	if err := c.getJSON(ctx, rel, &payload); err != nil {
		return Store{}, err
	}
	return payload, nil
}
