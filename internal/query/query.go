// Package query implements json-server style listing parameters:
// _page, _limit, _sort, _order and field equality filters.
package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

const (
	paramPage  = "_page"
	paramLimit = "_limit"
	paramSort  = "_sort"
	paramOrder = "_order"

	defaultPage = 1
	// defaultLimit applies to listings without their own default.
	defaultLimit = 10
)

// Defaults are the per-endpoint values used when a parameter is missing or
// invalid. A zero Limit leaves the listing unpaged unless the request
// asks for paging.
type Defaults struct {
	Page  int
	Limit int
	Sort  string
	Order Order
}

// Params are the resolved listing parameters of one request.
type Params struct {
	Page  int
	Limit int
	// Paged is false when the whole result should be returned.
	Paged bool
	Sort  string
	Order Order

	fallbackSort string
}

// Parse resolves the listing parameters in values against d.
func Parse(values url.Values, d Defaults) Params {
	p := Params{
		Page:         positiveOr(d.Page, defaultPage),
		Limit:        positiveOr(d.Limit, defaultLimit),
		Paged:        d.Limit > 0,
		Sort:         d.Sort,
		Order:        orderOr(d.Order, Asc),
		fallbackSort: d.Sort,
	}

	if raw, ok := lookup(values, paramPage); ok {
		p.Paged = true
		if page, err := strconv.Atoi(raw); err == nil && page >= 1 {
			p.Page = page
		}
	}
	if raw, ok := lookup(values, paramLimit); ok {
		p.Paged = true
		if limit, err := strconv.Atoi(raw); err == nil && limit >= 1 {
			p.Limit = limit
		}
	}
	if raw, ok := lookup(values, paramSort); ok {
		p.Sort = raw
	}
	if raw, ok := lookup(values, paramOrder); ok {
		switch Order(strings.ToLower(raw)) {
		case Asc:
			p.Order = Asc
		case Desc:
			p.Order = Desc
		}
	}
	return p
}

// Fields whitelists the sortable and filterable fields of a record type.
type Fields[T any] struct {
	// Sort maps a field name to a three-way comparison.
	Sort map[string]func(a, b T) int
	// Filter maps a field name to the string form compared against the
	// query value.
	Filter map[string]func(T) string
}

// Filter keeps the items whose whitelisted fields equal every matching
// query value. Repeated keys match any of their values.
func Filter[T any](items []T, values url.Values, f Fields[T]) []T {
	type condition struct {
		field  func(T) string
		accept []string
	}
	var conditions []condition
	for key, accept := range values {
		field, ok := f.Filter[key]
		if !ok || len(accept) == 0 {
			continue
		}
		conditions = append(conditions, condition{field: field, accept: accept})
	}
	if len(conditions) == 0 {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		matched := true
		for _, c := range conditions {
			if !slices.Contains(c.accept, c.field(item)) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, item)
		}
	}
	return out
}

// Sort orders items in place by p.Sort. An unknown field falls back to the
// endpoint default; with neither the input order is kept.
func Sort[T any](items []T, p Params, f Fields[T]) {
	compare, ok := f.Sort[p.Sort]
	if !ok {
		compare, ok = f.Sort[p.fallbackSort]
	}
	if !ok {
		return
	}
	if p.Order == Desc {
		slices.SortStableFunc(items, func(a, b T) int { return compare(b, a) })
		return
	}
	slices.SortStableFunc(items, compare)
}

// Page returns the window [(page-1)*limit, page*limit) clamped to items.
// Out of range pages are empty.
func Page[T any](items []T, p Params) []T {
	if !p.Paged {
		return items
	}
	if p.Page < 1 || p.Limit < 1 {
		return []T{}
	}
	// Compare page counts so huge page or limit values cannot overflow.
	pages := len(items) / p.Limit
	if len(items)%p.Limit != 0 {
		pages++
	}
	if p.Page > pages {
		return []T{}
	}
	start := (p.Page - 1) * p.Limit
	end := start + min(p.Limit, len(items)-start)
	return items[start:end]
}

// Apply sorts and pages items and reports the total before paging.
func Apply[T any](items []T, p Params, f Fields[T]) ([]T, int) {
	sorted := slices.Clone(items)
	Sort(sorted, p, f)
	return Page(sorted, p), len(sorted)
}

func lookup(values url.Values, key string) (string, bool) {
	if !values.Has(key) {
		return "", false
	}
	return strings.TrimSpace(values.Get(key)), true
}

func positiveOr(value, fallback int) int {
	if value < 1 {
		return fallback
	}
	return value
}

func orderOr(value, fallback Order) Order {
	if value == "" {
		return fallback
	}
	return value
}
