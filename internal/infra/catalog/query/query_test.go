package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"toolcatalog/internal/domain"
)

func fixtureTools() []domain.Tool {
	return []domain.Tool{
		{ID: 1, Name: "ChatGPT", Description: "Conversational assistant", Category: "NLP", Pricing: "free/paid", Tags: []string{"chat", "llm"}, Published: true},
		{ID: 2, Name: "Copilot", Description: "Code completion powered by GPT models", Category: "Coding", Pricing: "paid", Tags: []string{"ide"}, Published: true},
		{ID: 3, Name: "Stable Diffusion", Description: "Image synthesis", Category: "Image", Pricing: "free", Tags: []string{"AutoGPT-compatible"}, Published: true},
		{ID: 4, Name: "Whisper", Description: "Speech to text", Category: "nlp", Pricing: "Free", Tags: []string{"audio"}, Published: false},
		{ID: 5, Name: "Untitled", Description: "", Category: "", Pricing: "", Tags: []string{}, Published: true},
	}
}

func ids(tools []domain.Tool) []int {
	out := make([]int, 0, len(tools))
	for _, tool := range tools {
		out = append(out, tool.ID)
	}
	return out
}

func TestSearch_MatchesNameDescriptionOrTag(t *testing.T) {
	require.Equal(t, []int{1, 2, 3}, ids(Search(fixtureTools(), "gpt")))
	require.Equal(t, []int{1, 2, 3}, ids(Search(fixtureTools(), "GPT")))
	require.Equal(t, []int{4}, ids(Search(fixtureTools(), "AUDIO")))
	require.Empty(t, Search(fixtureTools(), "nothing-matches"))
}

func TestFilterByCategory_IgnoresCase(t *testing.T) {
	require.Equal(t, []int{1, 4}, ids(FilterByCategory(fixtureTools(), "nlp")))
	require.Equal(t, []int{2}, ids(FilterByCategory(fixtureTools(), "CODING")))
	require.Empty(t, FilterByCategory(fixtureTools(), "cod"))
}

func TestFilterByPricing_SubstringOfStoredValue(t *testing.T) {
	tools := fixtureTools()
	require.Equal(t, []int{1, 3, 4}, ids(FilterByPricing(tools, "free")))
	require.Equal(t, []int{1, 2}, ids(FilterByPricing(tools, "paid")))
	require.Equal(t, []int{1}, ids(FilterByPricing(tools, "FREE/PAID")))

	paidOnly := []domain.Tool{{ID: 9, Pricing: "paid"}}
	require.Empty(t, FilterByPricing(paidOnly, "free"))
}

func TestByID(t *testing.T) {
	tool, ok := ByID(fixtureTools(), 3)
	require.True(t, ok)
	require.Equal(t, "Stable Diffusion", tool.Name)

	_, ok = ByID(fixtureTools(), 42)
	require.False(t, ok)
}

func TestCompare_KeepsStoreOrder(t *testing.T) {
	require.Equal(t, []int{1, 3}, ids(Compare(fixtureTools(), []int{3, 1})))
	require.Equal(t, []int{2}, ids(Compare(fixtureTools(), []int{2, 99})))
	require.Empty(t, Compare(fixtureTools(), nil))
}

func TestDistinctCategories_SortedAndNonEmpty(t *testing.T) {
	require.Equal(t, []string{"Coding", "Image", "NLP", "nlp"}, DistinctCategories(fixtureTools()))
	require.Empty(t, DistinctCategories(nil))
}

func TestFilterPublished(t *testing.T) {
	require.Equal(t, []int{1, 2, 3, 5}, ids(FilterPublished(fixtureTools())))
	require.Equal(t, []int{4}, ids(FilterByPublished(fixtureTools(), false)))
}

func TestApply_ComposesFilters(t *testing.T) {
	tools := fixtureTools()

	require.Equal(t, ids(tools), ids(Apply(tools, Filters{})))
	require.Equal(t, []int{1}, ids(Apply(tools, Filters{Search: "gpt", Category: "nlp"})))
	require.Equal(t, []int{1, 3}, ids(Apply(tools, Filters{Search: "gpt", Pricing: "free"})))
	require.Equal(t, []int{1, 4}, ids(Apply(tools, Filters{Category: "NLP", Pricing: "free"})))
	require.Empty(t, Apply(tools, Filters{Search: "whisper", Category: "image"}))
}
