// Package query answers catalog queries over an in-memory collection of
// normalized tools. Every function is pure and keeps the input order.
package query

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"toolcatalog/internal/domain"
)

// Filters are combined by conjunction. Empty criteria are skipped.
type Filters struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	Pricing  string `json:"pricing,omitempty"`
}

// Apply runs search, then category, then pricing.
func Apply(tools []domain.Tool, filters Filters) []domain.Tool {
	result := tools
	if filters.Search != "" {
		result = Search(result, filters.Search)
	}
	if filters.Category != "" {
		result = FilterByCategory(result, filters.Category)
	}
	if filters.Pricing != "" {
		result = FilterByPricing(result, filters.Pricing)
	}
	return result
}

// Search matches keyword case-insensitively against name, description or any tag.
func Search(tools []domain.Tool, keyword string) []domain.Tool {
	needle := strings.ToLower(keyword)
	return lo.Filter(tools, func(tool domain.Tool, _ int) bool {
		if strings.Contains(strings.ToLower(tool.Name), needle) ||
			strings.Contains(strings.ToLower(tool.Description), needle) {
			return true
		}
		return lo.ContainsBy(tool.Tags, func(tag string) bool {
			return strings.Contains(strings.ToLower(tag), needle)
		})
	})
}

// FilterByCategory keeps tools whose category equals category, ignoring case.
func FilterByCategory(tools []domain.Tool, category string) []domain.Tool {
	return lo.Filter(tools, func(tool domain.Tool, _ int) bool {
		return strings.EqualFold(tool.Category, category)
	})
}

// FilterByPricing keeps tools whose pricing contains the query, ignoring case.
// "free" matches "free/paid"; "free/paid" does not match "free".
func FilterByPricing(tools []domain.Tool, pricing string) []domain.Tool {
	needle := strings.ToLower(pricing)
	return lo.Filter(tools, func(tool domain.Tool, _ int) bool {
		return strings.Contains(strings.ToLower(tool.Pricing), needle)
	})
}

// ByID returns the first tool with the given id.
func ByID(tools []domain.Tool, id int) (domain.Tool, bool) {
	return lo.Find(tools, func(tool domain.Tool) bool {
		return tool.ID == id
	})
}

// Compare returns the tools whose id is in ids, in store order.
func Compare(tools []domain.Tool, ids []int) []domain.Tool {
	wanted := lo.SliceToMap(ids, func(id int) (int, struct{}) {
		return id, struct{}{}
	})
	return lo.Filter(tools, func(tool domain.Tool, _ int) bool {
		_, ok := wanted[tool.ID]
		return ok
	})
}

// DistinctCategories returns the non-empty categories, sorted ascending.
func DistinctCategories(tools []domain.Tool) []string {
	categories := lo.Uniq(lo.FilterMap(tools, func(tool domain.Tool, _ int) (string, bool) {
		return tool.Category, tool.Category != ""
	}))
	sort.Strings(categories)
	return categories
}

func FilterPublished(tools []domain.Tool) []domain.Tool {
	return FilterByPublished(tools, true)
}

func FilterByPublished(tools []domain.Tool, published bool) []domain.Tool {
	return lo.Filter(tools, func(tool domain.Tool, _ int) bool {
		return tool.Published == published
	})
}
