package helpers

import (
	"net/http"
	"strconv"
)

// Limit query parameter defaults.
const (
	DefaultLimit = 5
	MaxLimit     = 50
)

// ParseLimit reads limit from the request query string and clamps it to
// [1, MaxLimit]. Missing or invalid values fall back to DefaultLimit.
func ParseLimit(r *http.Request) int {
	limit := DefaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			limit = min(v, MaxLimit)
		}
	}
	return limit
}
