package protocol

import (
	"math"
	"strings"
)

// SortOrder of listed Items.
type SortOrder string

// SortOrders of ListItemsRequest. SortRelevance orders by text-search score,
// and applies only to requests having a search query.
const (
	SortRelevance SortOrder = "relevance"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
)

// Validate returns an error if the SortOrder is not one of the enumerated values.
func (s SortOrder) Validate() error {
	switch s {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortNewest, SortOldest:
		return nil
	}
	return NewValidationError(
		"Invalid enum value. Expected 'relevance' | 'price_asc' | 'price_desc' | 'newest' | 'oldest', received '%s'", string(s))
}

// ListItemsRequest is the query of GET /api/items. It's decoded from URL
// query parameters, and Category may be repeated (?category=a&category=b).
type ListItemsRequest struct {
	Q        *string   `schema:"q"`
	Category []string  `schema:"category"`
	MinPrice *float64  `schema:"minPrice"`
	MaxPrice *float64  `schema:"maxPrice"`
	Sort     SortOrder `schema:"sort"`
	Page     *int      `schema:"page"`
	Limit    *int      `schema:"limit"`
}

// Defaults of ListItemsRequest.
const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// Normalize trims the query, trims and lower-cases Categories (dropping
// empty ones), and applies defaults for the Sort, Page, and Limit.
func (m *ListItemsRequest) Normalize() {
	if m.Q != nil {
		var q = strings.TrimSpace(*m.Q)
		m.Q = &q
	}
	var cats = m.Category[:0]
	for _, c := range m.Category {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			cats = append(cats, c)
		}
	}
	m.Category = cats

	if m.Sort == "" {
		m.Sort = SortNewest
	}
	if m.Page == nil {
		var p = DefaultPage
		m.Page = &p
	}
	if m.Limit == nil {
		var l = DefaultLimit
		m.Limit = &l
	}
}

// Validate returns an error if the ListItemsRequest is not well-formed.
// It must be Normalized first.
func (m *ListItemsRequest) Validate() error {
	var errs ValidationErrors

	if m.Q != nil {
		errs.Add("q", ValidateLength(*m.Q, "Search query", 1, 120))
	}
	for _, p := range []struct {
		field string
		v     *float64
	}{{"minPrice", m.MinPrice}, {"maxPrice", m.MaxPrice}} {
		if p.v == nil {
			continue
		} else if math.IsNaN(*p.v) || math.IsInf(*p.v, 0) {
			errs.Addf(p.field, "Expected number, received %v", *p.v)
		} else if *p.v < 0 {
			errs.Addf(p.field, "Number must be greater than or equal to 0")
		}
	}
	if m.MinPrice != nil && m.MaxPrice != nil && *m.MinPrice > *m.MaxPrice {
		errs.Addf("minPrice", "minPrice cannot be greater than maxPrice")
	}
	errs.Add("sort", m.Sort.Validate())

	if m.Page == nil || *m.Page < 1 {
		errs.Addf("page", "Number must be greater than or equal to 1")
	}
	if m.Limit == nil || *m.Limit < 1 {
		errs.Addf("limit", "Number must be greater than or equal to 1")
	} else if *m.Limit > MaxLimit {
		errs.Addf("limit", "Number must be less than or equal to %d", MaxLimit)
	}
	return errs.OrNil()
}

// Query returns the search query, or "" if there is none.
func (m *ListItemsRequest) Query() string {
	if m.Q == nil {
		return ""
	}
	return *m.Q
}

// ListItemsResponse is the response of GET /api/items.
type ListItemsResponse struct {
	Items    []Item `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}
