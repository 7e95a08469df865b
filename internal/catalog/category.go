// Package catalog defines the fixed service categories of the salon.
package catalog

import (
	"strings"

	"github.com/gosimple/slug"
)

// Categories in display order.
var Categories = []string{"Hair Services", "Skin Care", "Facials & Others"}

// DefaultCategory is preselected in the admin form.
const DefaultCategory = "Hair Services"

// Category pairs a display name with its URL slug.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// List returns every category with its slug.
func List() []Category {
	out := make([]Category, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, Category{Name: c, Slug: slug.Make(c)})
	}
	return out
}

// Resolve maps a category name or slug (case-insensitive) to the canonical
// name.  "all" and the empty string resolve to "" with ok=true, meaning no
// filter.
func Resolve(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return "", true
	}
	for _, c := range Categories {
		if strings.EqualFold(c, s) || slug.Make(c) == strings.ToLower(s) {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether name is exactly one of Categories.
func Valid(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
