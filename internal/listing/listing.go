// Package listing implements the query model shared by the admin table
// views: free-text search, single-field sorting, day-granular date ranges,
// pagination, and CSV export of the filtered rows.
package listing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit is the page size applied when none is requested
	DefaultLimit = 30

	// MaxLimit caps the requested page size
	MaxLimit = 200

	dateLayout = "2006-01-02"
)

// Query captures the list controls parsed from the request
type Query struct {
	Search    string
	SortField string
	SortOrder string // "asc" or "desc"
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	Limit     int
}

// Meta describes the pagination outcome for the response envelope
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ParseQuery reads the list controls from the request query string.
// Dates use YYYY-MM-DD; from is widened to the start of its day and to
// to the end of its day, so both bounds are inclusive.
func ParseQuery(c *gin.Context) (Query, error) {
	q := Query{
		Search:    strings.TrimSpace(c.Query("search")),
		SortField: strings.TrimSpace(c.Query("sort_field")),
		SortOrder: strings.ToLower(strings.TrimSpace(c.DefaultQuery("sort_order", "desc"))),
		Page:      1,
		Limit:     DefaultLimit,
	}

	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		return Query{}, fmt.Errorf("invalid sort_order: %q", c.Query("sort_order"))
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Query{}, fmt.Errorf("invalid page: %q", raw)
		}
		q.Page = page
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return Query{}, fmt.Errorf("invalid limit: %q", raw)
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		q.Limit = limit
	}

	if raw := c.Query("date_from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return Query{}, fmt.Errorf("invalid date_from: %q", raw)
		}
		q.DateFrom = &from
	}

	if raw := c.Query("date_to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return Query{}, fmt.Errorf("invalid date_to: %q", raw)
		}
		end := to.Add(24*time.Hour - time.Millisecond)
		q.DateTo = &end
	}

	return q, nil
}

// Filter keeps the items matching the search text and date range.
// The search is a case-insensitive substring match over the fields the
// accessor declares; an empty search matches everything.
func Filter[T any](items []T, q Query, searchFields func(T) []string, when func(T) time.Time) []T {
	needle := strings.ToLower(q.Search)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if q.DateFrom != nil || q.DateTo != nil {
			ts := when(item)
			if q.DateFrom != nil && ts.Before(*q.DateFrom) {
				continue
			}
			if q.DateTo != nil && ts.After(*q.DateTo) {
				continue
			}
		}

		if needle != "" {
			matched := false
			for _, field := range searchFields(item) {
				if strings.Contains(strings.ToLower(field), needle) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}

		out = append(out, item)
	}

	return out
}

// Sort orders the items by the query's sort field using the declared
// comparators. A comparator returns true when a sorts before b ascending.
// Unknown or empty sort fields leave the input order untouched.
func Sort[T any](items []T, q Query, less map[string]func(a, b T) bool) {
	if q.SortField == "" {
		return
	}

	cmp, ok := less[q.SortField]
	if !ok {
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		if q.SortOrder == "desc" {
			return cmp(items[j], items[i])
		}
		return cmp(items[i], items[j])
	})
}

// Paginate slices out the requested page and reports the totals
func Paginate[T any](items []T, q Query) ([]T, Meta) {
	total := len(items)
	totalPages := (total + q.Limit - 1) / q.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (q.Page - 1) * q.Limit
	if start >= total {
		return []T{}, Meta{Page: q.Page, Limit: q.Limit, Total: total, TotalPages: totalPages}
	}

	end := start + q.Limit
	if end > total {
		end = total
	}

	return items[start:end], Meta{Page: q.Page, Limit: q.Limit, Total: total, TotalPages: totalPages}
}
