package cijene

import (
	"net/url"
	"strconv"
	"strings"
)

// Pagination limits shared by the search endpoints.
const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// params collects query parameters, skipping empty values.
type params struct {
	values url.Values
}

func newParams() *params {
	return &params{values: url.Values{}}
}

func (p *params) add(key, value string) *params {
	if v := strings.TrimSpace(value); v != "" {
		p.values.Add(key, v)
	}
	return p
}

// addArray adds one key=value pair per non-empty value.
func (p *params) addArray(key string, values []string) *params {
	for _, v := range values {
		p.add(key, v)
	}
	return p
}

// addJoined adds the non-empty values as a single comma-separated parameter.
func (p *params) addJoined(key string, values []string) *params {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) > 0 {
		p.values.Set(key, strings.Join(kept, ","))
	}
	return p
}

func (p *params) addFloat(key string, value *float64) *params {
	if value != nil {
		p.values.Set(key, strconv.FormatFloat(*value, 'f', -1, 64))
	}
	return p
}

// addRadius converts meters to the API's kilometer "d" parameter.
func (p *params) addRadius(meters int) *params {
	if meters > 0 {
		p.values.Set("d", strconv.FormatFloat(float64(meters)/1000, 'f', -1, 64))
	}
	return p
}

// addPagination sets page and per_page, clamping per_page into [1, max] and
// defaulting to page 1 with DefaultPerPage entries.
func (p *params) addPagination(page, perPage, max int) *params {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if max > 0 && perPage > max {
		perPage = max
	}
	p.values.Set("page", strconv.Itoa(page))
	p.values.Set("per_page", strconv.Itoa(perPage))
	return p
}

func (p *params) url(path string) *url.URL {
	return &url.URL{Path: path, RawQuery: p.values.Encode()}
}
