package handling

import (
	"catalog_server/database"
	"catalog_server/lib"
	"catalog_server/structs"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ParseListOptions reads search, page and limit. Missing or unusable numbers fall back to page 1 and
// the default page size.
func ParseListOptions(r *http.Request) structs.ListProductsInput {
	query := r.URL.Query()

	return structs.ListProductsInput{
		Search:   strings.TrimSpace(query.Get("search")),
		Page:     positiveIntOr(query.Get("page"), 1),
		PageSize: min(positiveIntOr(query.Get("limit"), database.DefaultPageSize), database.MaxPageSize),
	}
}

// ParseID reads the {id} path parameter.
func ParseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, lib.NewValidationError("id", "Invalid product id")
	}
	return id, nil
}

func positiveIntOr(s string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// splitAndTrim splits a comma-separated string, trims each part and drops empty ones
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
