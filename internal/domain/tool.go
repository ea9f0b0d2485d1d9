package domain

// RawRecord is one decoded record object before normalization.
type RawRecord = map[string]any

// Tool is the canonical catalog record.
type Tool struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Category    string   `json:"category" yaml:"category"`
	Pricing     string   `json:"pricing" yaml:"pricing"`
	Tags        []string `json:"tags" yaml:"tags"`
	Features    []string `json:"features" yaml:"features"`
	Website     string   `json:"website" yaml:"website"`
	Published   bool     `json:"published" yaml:"published"`
}

// Canonical field names of a Tool.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldPricing     = "pricing"
	FieldTags        = "tags"
	FieldFeatures    = "features"
	FieldWebsite     = "website"
	FieldPublished   = "published"
)

// Visibility selects between the public and the administrative query surface.
type Visibility string

const (
	// VisibilityPublic only exposes published tools.
	VisibilityPublic Visibility = "public"
	// VisibilityAdmin exposes every tool, optionally filtered by published state.
	VisibilityAdmin Visibility = "admin"
)

// MaxCompareTools bounds the number of ids accepted by a compare request.
const MaxCompareTools = 3

// NextToolID returns max(existing ids)+1, or 1 for an empty collection.
// Assigned ids are never below 1: id 0 means "create" to Upsert, and stores
// holding only ids <= 0 still hand out 1.
func NextToolID(tools []Tool) int {
	maxID := 0
	for _, tool := range tools {
		if tool.ID > maxID {
			maxID = tool.ID
		}
	}
	return maxID + 1
}
