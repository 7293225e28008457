package shared

import (
	"net/http"
	"strconv"
)

// LimitParam parses a ?limit= query parameter with default and cap.
func LimitParam(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
