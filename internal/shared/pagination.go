package shared

import (
	"net/http"
	"strconv"
)

// Page is a paginated listing response.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// PageParams reads limit/offset query parameters with sane bounds.
func PageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
