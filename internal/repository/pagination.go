package repository

import "strings"

// Page represents a simple limit/offset window for listing operations.
type Page struct {
	Limit  int
	Offset int
}

// DefaultPageLimit is the window size used when a caller asks for none.
const DefaultPageLimit = 10

// Bounded fills in DefaultPageLimit for a missing limit and pulls a negative
// offset back to the first row.
func (p Page) Bounded() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	p.Offset = max(p.Offset, 0)
	return p
}

// PageResult carries a slice of items and the total count matching the query.
// I return the total so clients can compute pagination without an extra round trip.
type PageResult[T any] struct {
	Items []T
	Total int64
}

// PlayerFilter narrows listings. Empty fields match everything.
type PlayerFilter struct {
	CountryCode string
	Sex         string
}

// Sort orders a listing by one document path.
type Sort struct {
	Field string
	Desc  bool
}

// DefaultSort keeps listings in ranking order.
var DefaultSort = Sort{Field: "data.rank"}

// SortableFields is the whitelist of document paths a listing may be ordered by.
var SortableFields = map[string]bool{
	"id":           true,
	"firstname":    true,
	"lastname":     true,
	"shortname":    true,
	"sex":          true,
	"country.code": true,
	"data.rank":    true,
	"data.points":  true,
	"data.weight":  true,
	"data.height":  true,
	"data.age":     true,
}

// ParseSort reads "field" or "-field". ok is false for anything outside SortableFields.
func ParseSort(raw string) (Sort, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort, true
	}
	s := Sort{Field: raw}
	if strings.HasPrefix(raw, "-") {
		s = Sort{Field: raw[1:], Desc: true}
	}
	if !SortableFields[s.Field] {
		return Sort{}, false
	}
	return s, true
}

// ListQuery is everything a listing needs in one value.
type ListQuery struct {
	Filter PlayerFilter
	Sort   Sort
	Page   Page
}
