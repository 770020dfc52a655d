package cijene

import (
	"context"
	"net/url"
	"strings"
)

// Endpoint roots.
const (
	productsPath   = "/v1/products/"
	storesPath     = "/v1/stores/"
	chainsPath     = "/v1/chains/"
	chainStatsPath = "/v1/chain-stats/"
	pricesPath     = "/v1/prices/"
	archivesPath   = "/v0/list/"
	healthPath     = "/health"
	versionPath    = "/version"
)

const (
	// MinQueryLength is the shortest query that triggers suggestions.
	MinQueryLength = 2
	// MaxSuggestionsPerPage bounds a suggestion lookup.
	MaxSuggestionsPerPage = 20
	maxPopularPerPage     = 50
)

// ProductSearch configures /v1/products requests. Query takes precedence
// over EAN; both map to the "q" parameter.
type ProductSearch struct {
	Query     string
	EAN       string `validate:"omitempty,ean"`
	ChainCode string
	Chains    []string
	Date      string `validate:"omitempty,isodate"`
	Page      int    `validate:"omitempty,gte=1"`
	PerPage   int    `validate:"omitempty,gte=1,lte=100"`
}

// SearchProducts runs a product search.
func (c *Client) SearchProducts(ctx context.Context, query ProductSearch) (ProductSearchResult, error) {
	query.Query = strings.TrimSpace(query.Query)
	query.EAN = strings.TrimSpace(query.EAN)
	query.Date = strings.TrimSpace(query.Date)
	if err := validateRequest(query); err != nil {
		return ProductSearchResult{}, err
	}

	p := newParams()
	if query.Query != "" {
		p.add("q", query.Query)
	} else {
		p.add("q", query.EAN)
	}
	chains := append([]string(nil), query.Chains...)
	if query.ChainCode != "" {
		chains = append(chains, query.ChainCode)
	}
	p.addArray("chains", chains).
		add("date", query.Date).
		addPagination(query.Page, query.PerPage, MaxPerPage)

	var payload ProductSearchResult
	if err := c.getJSON(ctx, p.url(productsPath), &payload); err != nil {
		return ProductSearchResult{}, err
	}
	return payload, nil
}

// GetProduct fetches one product by id or EAN.
func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if err := validateRequired(id, "id"); err != nil {
		return Product{}, err
	}
	var payload Product
	rel := &url.URL{Path: productsPath + url.PathEscape(id) + "/"}
	if err := c.getJSON(ctx, rel, &payload); err != nil {
		return Product{}, err
	}
	return payload, nil
}

// GetProductByEAN validates the barcode before fetching it.
func (c *Client) GetProductByEAN(ctx context.Context, ean string) (Product, error) {
	ean = strings.TrimSpace(ean)
	if err := validateRequired(ean, "ean"); err != nil {
		return Product{}, err
	}
	if !ValidEAN(ean) {
		return Product{}, ValidationError("Invalid EAN format. Must be 8-14 digits.")
	}
	return c.GetProduct(ctx, ean)
}

// SuggestProducts returns up to limit products for autocomplete. Queries
// shorter than MinQueryLength yield no suggestions and no request.
func (c *Client) SuggestProducts(ctx context.Context, query string, limit int) ([]Product, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return nil, nil
	}
	if limit <= 0 {
		return nil, ValidationError("Field 'limit' must be a positive number")
	}
	result, err := c.SearchProducts(ctx, ProductSearch{
		Query:   query,
		Page:    1,
		PerPage: min(limit, MaxSuggestionsPerPage),
	})
	if err != nil {
		return nil, err
	}
	return result.Products, nil
}

// PopularProducts returns the first page of an unfiltered product search.
func (c *Client) PopularProducts(ctx context.Context, limit int) ([]Product, error) {
	if limit <= 0 {
		return nil, ValidationError("Field 'limit' must be a positive number")
	}
	result, err := c.SearchProducts(ctx, ProductSearch{Page: 1, PerPage: min(limit, maxPopularPerPage)})
	if err != nil {
		return nil, err
	}
	return result.Products, nil
}
