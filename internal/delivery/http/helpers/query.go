package helpers

import (
	"net/http"

	"eventsapi/internal/domain"
)

// Query parameters accepted by the event list endpoint.
const (
	QuerySearch = "search"
	QuerySort   = "sort"
)

// ParseEventFilter reads search and sort from the request query string.
// Unknown sort values fall back to newest first.
func ParseEventFilter(r *http.Request) domain.EventFilter {
	q := r.URL.Query()
	return domain.EventFilter{
		Search: q.Get(QuerySearch),
		Sort:   domain.ParseSortKey(q.Get(QuerySort)),
	}
}
