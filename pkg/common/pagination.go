package common

import (
	"net/http"
	"strconv"
)

const maxPageSize = 100

// PaginationParams is the page/size pair accepted by listing endpoints.
// The history list treats PageSize as its item limit.
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Page: 1, PageSize: 20}
}

// ExtractPaginationParams reads page and page_size from the query string,
// falling back to defaults and capping the size.
func ExtractPaginationParams(r *http.Request) PaginationParams {
	params := DefaultPaginationParams()

	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			params.Page = page
		}
	}

	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			if size > maxPageSize {
				size = maxPageSize
			}
			params.PageSize = size
		}
	}

	return params
}
