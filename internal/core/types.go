// Package core implements the row-to-page synchronization engine: column
// mapping validation, per-type cell validation, conversion to typed Notion
// properties, and the upsert orchestration around them.
package core

import (
	"fmt"
	"strings"
)

// PropertyType is the declared target type of a mapped column. The set is
// closed; new variants require converter and validator support.
type PropertyType int

const (
	TypeInvalid PropertyType = iota
	TypeTitle
	TypeRichText
	TypeNumber
	TypeSelect
	TypeMultiSelect
	TypeDate
	TypeCheckbox
	TypeURL
	TypeEmail
	TypePhoneNumber
)

var propertyTypeNames = map[PropertyType]string{
	TypeTitle:       "title",
	TypeRichText:    "rich_text",
	TypeNumber:      "number",
	TypeSelect:      "select",
	TypeMultiSelect: "multi_select",
	TypeDate:        "date",
	TypeCheckbox:    "checkbox",
	TypeURL:         "url",
	TypeEmail:       "email",
	TypePhoneNumber: "phone_number",
}

// String returns the wire name of the type ("title", "multi_select", ...).
func (t PropertyType) String() string {
	if name, ok := propertyTypeNames[t]; ok {
		return name
	}
	return "invalid"
}

// Valid reports whether t is one of the supported property types.
func (t PropertyType) Valid() bool {
	_, ok := propertyTypeNames[t]
	return ok
}

// ParsePropertyType parses a configured type name. Matching is
// case-insensitive and tolerates dash/concatenated spellings plus a few
// aliases commonly seen in mapping files.
func ParsePropertyType(s string) (PropertyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title":
		return TypeTitle, nil
	case "rich_text", "rich-text", "richtext", "text":
		return TypeRichText, nil
	case "number":
		return TypeNumber, nil
	case "select":
		return TypeSelect, nil
	case "multi_select", "multi-select", "multiselect":
		return TypeMultiSelect, nil
	case "date":
		return TypeDate, nil
	case "checkbox":
		return TypeCheckbox, nil
	case "url":
		return TypeURL, nil
	case "email":
		return TypeEmail, nil
	case "phone_number", "phone-number", "phone":
		return TypePhoneNumber, nil
	default:
		return TypeInvalid, fmt.Errorf("unsupported property type %q", s)
	}
}

// ColumnMapping binds one source column to one target property. Column is
// the resolved zero-based index of SourceColumn; mappings are resolved at
// the configuration boundary so the engine never sees raw column refs.
type ColumnMapping struct {
	SourceColumn   string
	Column         int
	TargetProperty string
	Type           PropertyType
	Active         bool
	Required       bool
}

// RowData is one row of heterogeneous cell values, indexed positionally.
// Cells are string, float64, int, bool, time.Time, or nil. Row length is
// not fixed; mappings may resolve past the end of a short row.
type RowData []any

// ValidationError is a single validation failure for one field.
type ValidationError struct {
	Field   string // "column B (Status)" style label, empty for list-wide errors
	Value   string // offending literal, rendered as text
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult aggregates validation failures in check order. Errors
// never short-circuit each other except for malformed top-level input.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Messages renders all errors as ordered strings.
func (r ValidationResult) Messages() []string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}

func (r *ValidationResult) add(e ValidationError) {
	r.Valid = false
	r.Errors = append(r.Errors, e)
}
