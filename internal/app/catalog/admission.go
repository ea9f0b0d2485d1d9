package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"toolcatalog/internal/domain"
)

// ToolCreate carries the fields of a new tool. Required fields must be
// supplied but may be empty strings.
type ToolCreate struct {
	Name        *string  `json:"name" yaml:"name" validate:"required"`
	Description *string  `json:"description" yaml:"description" validate:"required"`
	Category    *string  `json:"category" yaml:"category" validate:"required"`
	Pricing     *string  `json:"pricing" yaml:"pricing" validate:"required"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Features    []string `json:"features,omitempty" yaml:"features,omitempty"`
	Website     *string  `json:"website" yaml:"website" validate:"required"`
	Published   *bool    `json:"published,omitempty" yaml:"published,omitempty"`
}

// ToolUpdate carries any subset of tool fields. Nil fields are left untouched;
// supplied lists replace the stored list.
type ToolUpdate struct {
	Name        *string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description *string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category    *string   `json:"category,omitempty" yaml:"category,omitempty"`
	Pricing     *string   `json:"pricing,omitempty" yaml:"pricing,omitempty"`
	Tags        *[]string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Features    *[]string `json:"features,omitempty" yaml:"features,omitempty"`
	Website     *string   `json:"website,omitempty" yaml:"website,omitempty"`
	Published   *bool     `json:"published,omitempty" yaml:"published,omitempty"`
}

func (c ToolCreate) Fields() domain.RawRecord {
	fields := domain.RawRecord{}
	setString(fields, domain.FieldName, c.Name)
	setString(fields, domain.FieldDescription, c.Description)
	setString(fields, domain.FieldCategory, c.Category)
	setString(fields, domain.FieldPricing, c.Pricing)
	setString(fields, domain.FieldWebsite, c.Website)
	if c.Tags != nil {
		fields[domain.FieldTags] = append([]string{}, c.Tags...)
	}
	if c.Features != nil {
		fields[domain.FieldFeatures] = append([]string{}, c.Features...)
	}
	if c.Published != nil {
		fields[domain.FieldPublished] = *c.Published
	}
	return fields
}

func (u ToolUpdate) Fields() domain.RawRecord {
	fields := domain.RawRecord{}
	setString(fields, domain.FieldName, u.Name)
	setString(fields, domain.FieldDescription, u.Description)
	setString(fields, domain.FieldCategory, u.Category)
	setString(fields, domain.FieldPricing, u.Pricing)
	setString(fields, domain.FieldWebsite, u.Website)
	if u.Tags != nil {
		fields[domain.FieldTags] = append([]string{}, (*u.Tags)...)
	}
	if u.Features != nil {
		fields[domain.FieldFeatures] = append([]string{}, (*u.Features)...)
	}
	if u.Published != nil {
		fields[domain.FieldPublished] = *u.Published
	}
	return fields
}

func setString(fields domain.RawRecord, key string, value *string) {
	if value != nil {
		fields[key] = *value
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func admissionError(op string, err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domain.E(domain.CodeInvalidArgument, op, err.Error(), domain.ErrInvalidRequest)
	}
	missing := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		missing = append(missing, fieldErr.Field())
	}
	return domain.E(domain.CodeInvalidArgument, op,
		fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		domain.ErrInvalidRequest,
	)
}

// ParseCompareIDs parses a comma-separated id list with at most
// domain.MaxCompareTools entries. Repeated ids collapse.
func ParseCompareIDs(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, domain.E(domain.CodeInvalidArgument, "catalog.compare", "Invalid tool IDs", domain.ErrInvalidCompareIDs)
		}
		ids = append(ids, id)
	}
	if len(ids) > domain.MaxCompareTools {
		return nil, domain.E(domain.CodeInvalidArgument, "catalog.compare",
			fmt.Sprintf("Maximum %d tools can be compared", domain.MaxCompareTools),
			domain.ErrTooManyCompareIDs,
		)
	}
	return lo.Uniq(ids), nil
}
