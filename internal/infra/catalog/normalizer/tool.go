package normalizer

import (
	"toolcatalog/internal/domain"
)

// Field aliases, in resolution order. The first key present with a non-nil value wins.
var (
	idKeys          = []string{domain.FieldID}
	nameKeys        = []string{domain.FieldName, "title"}
	descriptionKeys = []string{domain.FieldDescription, "short_desc"}
	categoryKeys    = []string{domain.FieldCategory, "type"}
	pricingKeys     = []string{domain.FieldPricing, "cost"}
	tagsKeys        = []string{domain.FieldTags, "keywords"}
	featuresKeys    = []string{domain.FieldFeatures, "capabilities"}
	websiteKeys     = []string{domain.FieldWebsite, "url"}
	publishedKeys   = []string{domain.FieldPublished}
)

var fieldAliases = [][]string{
	idKeys, nameKeys, descriptionKeys, categoryKeys, pricingKeys,
	tagsKeys, featuresKeys, websiteKeys, publishedKeys,
}

const defaultPublished = true

// NormalizeTool maps an arbitrary record shape onto the canonical Tool schema.
// It never fails: missing or malformed fields fall back to safe defaults.
func NormalizeTool(raw domain.RawRecord) domain.Tool {
	published, ok := lookup(raw, publishedKeys)
	return domain.Tool{
		ID:          coerceInt(first(raw, idKeys)),
		Name:        coerceString(first(raw, nameKeys)),
		Description: coerceString(first(raw, descriptionKeys)),
		Category:    coerceString(first(raw, categoryKeys)),
		Pricing:     coerceString(first(raw, pricingKeys)),
		Tags:        coerceStringList(first(raw, tagsKeys)),
		Features:    coerceStringList(first(raw, featuresKeys)),
		Website:     coerceString(first(raw, websiteKeys)),
		Published:   coerceBool(published, ok, defaultPublished),
	}
}

// NormalizeTools normalizes every record, preserving order.
func NormalizeTools(raws []domain.RawRecord) []domain.Tool {
	tools := make([]domain.Tool, 0, len(raws))
	for _, raw := range raws {
		tools = append(tools, NormalizeTool(raw))
	}
	return tools
}

// ToRaw renders a tool in the canonical raw shape.
func ToRaw(tool domain.Tool) domain.RawRecord {
	return domain.RawRecord{
		domain.FieldID:          tool.ID,
		domain.FieldName:        tool.Name,
		domain.FieldDescription: tool.Description,
		domain.FieldCategory:    tool.Category,
		domain.FieldPricing:     tool.Pricing,
		domain.FieldTags:        append([]string{}, tool.Tags...),
		domain.FieldFeatures:    append([]string{}, tool.Features...),
		domain.FieldWebsite:     tool.Website,
		domain.FieldPublished:   tool.Published,
	}
}

// Canonicalize renames the aliased fields present in raw to their canonical
// names without coercing values. Absent fields stay absent, so the result is
// suitable for partial merges.
func Canonicalize(raw domain.RawRecord) domain.RawRecord {
	out := make(domain.RawRecord, len(fieldAliases))
	for _, aliases := range fieldAliases {
		if value, ok := lookup(raw, aliases); ok {
			out[aliases[0]] = value
		}
	}
	return out
}

func lookup(raw domain.RawRecord, keys []string) (any, bool) {
	for _, key := range keys {
		value, ok := raw[key]
		if ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

func first(raw domain.RawRecord, keys []string) any {
	value, _ := lookup(raw, keys)
	return value
}
