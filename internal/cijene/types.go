package cijene

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Product mirrors a product record from /v1/products.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	Unit        string `json:"unit,omitempty"`
	EAN         string `json:"ean,omitempty"`
	ChainCode   string `json:"chain_code,omitempty"`
	Chain       string `json:"chain,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// Key returns the product's identity: the EAN when present, otherwise its id.
func (p Product) Key() string {
	if ean := strings.TrimSpace(p.EAN); ean != "" {
		return ean
	}
	return strings.TrimSpace(p.ID)
}

// Store mirrors a store record from /v1/stores.
type Store struct {
	ID        string   `json:"id"`
	Code      string   `json:"code,omitempty"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Phone     string   `json:"phone,omitempty"`
	Chain     string   `json:"chain"`
	ChainCode string   `json:"chain_code"`
	StoreType string   `json:"store_type,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Distance  *float64 `json:"distance,omitempty"`
}

// Key returns the store's identity: id, then code, then chain code joined
// with the address.
func (s Store) Key() string {
	if id := strings.TrimSpace(s.ID); id != "" {
		return id
	}
	if code := strings.TrimSpace(s.Code); code != "" {
		return code
	}
	if s.ChainCode == "" && s.Address == "" {
		return ""
	}
	return s.ChainCode + "-" + s.Address
}

// HasCoordinates reports whether both latitude and longitude are known.
func (s Store) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Chain is a retail chain joined with its statistics.
type Chain struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	StoresCount   int    `json:"stores_count"`
	ProductsCount int    `json:"products_count"`
	LastUpdated   string `json:"last_updated"`
}

// LastUpdatedTime parses LastUpdated, returning the zero time when it is
// missing or malformed.
func (c Chain) LastUpdatedTime() time.Time {
	return parseTime(c.LastUpdated)
}

// ChainStats mirrors one entry of /v1/chain-stats.
type ChainStats struct {
	ChainCode  string `json:"chain_code"`
	PriceDate  string `json:"price_date"`
	PriceCount int    `json:"price_count"`
	StoreCount int    `json:"store_count"`
	CreatedAt  string `json:"created_at"`
}

// Price is one store's price for a product.
type Price struct {
	ProductID    string   `json:"product_id"`
	StoreID      string   `json:"store_id"`
	Chain        string   `json:"chain"`
	Price        float64  `json:"price"`
	SpecialPrice *float64 `json:"special_price,omitempty"`
	Currency     string   `json:"currency"`
	Date         string   `json:"date"`
	Unit         string   `json:"unit,omitempty"`
	StoreAddress string   `json:"store_address,omitempty"`
	StoreCity    string   `json:"store_city,omitempty"`
}

// Effective returns the special price when one is set, else the regular price.
func (p Price) Effective() float64 {
	if p.SpecialPrice != nil && *p.SpecialPrice > 0 {
		return *p.SpecialPrice
	}
	return p.Price
}

// HasSpecial reports whether a positive special price is set.
func (p Price) HasSpecial() bool {
	return p.SpecialPrice != nil && *p.SpecialPrice > 0
}

// PriceComparison joins a product to its store prices with aggregates over
// the effective prices.
type PriceComparison struct {
	Product  Product  `json:"product"`
	Prices   []Price  `json:"prices"`
	MinPrice float64  `json:"min_price"`
	MaxPrice float64  `json:"max_price"`
	AvgPrice float64  `json:"avg_price"`
	Chains   []string `json:"chains"`
}

// Archive describes a daily price archive from /v0/list.
type Archive struct {
	Date    string `json:"date"`
	URL     string `json:"url"`
	Size    int64  `json:"size"`
	Updated string `json:"updated"`
}

// ProductSearchResult mirrors the /v1/products search payload.
type ProductSearchResult struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
}

// StoreSearchResult mirrors the /v1/stores search payload.
type StoreSearchResult struct {
	Stores     []Store `json:"stores"`
	TotalCount int     `json:"total_count"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
}

// HealthStatus mirrors /health.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type chainListResponse struct {
	Chains []string `json:"chains"`
}

type chainStatsResponse struct {
	ChainStats []ChainStats `json:"chain_stats"`
}

type archiveListResponse struct {
	Archives []Archive `json:"archives"`
}

type versionResponse struct {
	Version string `json:"version"`
}

type storePricesResponse struct {
	StorePrices []storePrice `json:"store_prices"`
}

type storePrice struct {
	Chain        string   `json:"chain"`
	EAN          string   `json:"ean"`
	PriceDate    string   `json:"price_date"`
	RegularPrice decimal  `json:"regular_price"`
	SpecialPrice decimal  `json:"special_price"`
	UnitPrice    decimal  `json:"unit_price"`
	BestPrice30  decimal  `json:"best_price_30"`
	AnchorPrice  decimal  `json:"anchor_price"`
	Store        apiStore `json:"store"`
}

type apiStore struct {
	ChainID int      `json:"chain_id"`
	Code    string   `json:"code"`
	Type    string   `json:"type"`
	Address string   `json:"address"`
	City    string   `json:"city"`
	Zipcode string   `json:"zipcode"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Phone   string   `json:"phone"`
}

// decimal accepts prices encoded either as JSON strings ("1.29") or numbers.
// An empty or null value decodes as not set.
type decimal struct {
	Value float64
	Set   bool
}

func (d *decimal) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*d = decimal{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*d = decimal{}
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*d = decimal{Value: v, Set: true}
	return nil
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
