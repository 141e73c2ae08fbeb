package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPage is used when the page parameter is absent or invalid.
	DefaultPage = 1
	// DefaultLimit is used when the limit parameter is absent or invalid.
	DefaultLimit = 10
	// MaxLimit caps the limit accepted from a request.
	MaxLimit = 100
)

// Params holds a resolved page/limit pair and the derived row offset.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns page 1 with the default limit.
func DefaultParams() Params {
	return New(DefaultPage, DefaultLimit)
}

// New builds Params from page and limit. Values below 1 fall back to the
// defaults. The page is not bounded above: a page past the last one simply
// selects an empty window.
func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Range returns the inclusive row window [from, to] selected by p.
func (p Params) Range() (from, to int) {
	return p.Offset, p.Offset + p.Limit - 1
}

// FromRequest extracts page and limit from the query string. Non-numeric or
// non-positive values fall back to the defaults and limit is clamped to
// MaxLimit.
func FromRequest(r *http.Request) Params {
	def := DefaultParams()
	page, limit := def.Page, def.Limit

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, MaxLimit)
		}
	}

	return New(page, limit)
}

// TotalPages returns ceil(count/limit), or 0 when there is nothing to page.
func TotalPages(count, limit int) int {
	if count <= 0 || limit <= 0 {
		return 0
	}
	pages := count / limit
	if count%limit > 0 {
		pages++
	}
	return pages
}

// Envelope is the pagination metadata returned alongside every list payload.
type Envelope struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewEnvelope builds the envelope for a window of a result set of count rows.
func NewEnvelope(p Params, count int) Envelope {
	return Envelope{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalItems: count,
		TotalPages: TotalPages(count, p.Limit),
	}
}

// Window applies p to an in-memory slice and returns the selected items.
// A window past the end yields an empty, non-nil slice.
func Window[T any](items []T, p Params) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := min(p.Offset+p.Limit, len(items))
	return items[p.Offset:end]
}
