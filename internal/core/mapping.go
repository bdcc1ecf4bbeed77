package core

// mapping.go validates the configured column mappings as a whole before
// any row is processed. Structural problems here are configuration
// mistakes, so every check runs and every violation is reported; nothing
// short-circuits.

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxPropertyNameLength is Notion's limit on property names.
const MaxPropertyNameLength = 100

// reservedProperties are property names owned by Notion itself. Writing
// them from a mapping would silently collide with page metadata.
var reservedProperties = map[string]bool{
	"id":               true,
	"created_time":     true,
	"last_edited_time": true,
	"created_by":       true,
	"last_edited_by":   true,
}

// IsReservedProperty reports whether name collides with Notion page
// metadata. Matching is case-insensitive.
func IsReservedProperty(name string) bool {
	return reservedProperties[strings.ToLower(strings.TrimSpace(name))]
}

// ResolveColumn resolves a column reference to a zero-based index.
// Numeric references parse directly ("0", "12"); letter references use
// spreadsheet base-26 encoding (A=0, Z=25, AA=26, ...).
func ResolveColumn(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("column reference is empty")
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 0 {
			return 0, fmt.Errorf("column index %d is negative", index)
		}
		return index, nil
	}

	index := 0
	for _, r := range strings.ToUpper(ref) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("column reference %q is neither an index nor a letter code", ref)
		}
		index = index*26 + int(r-'A') + 1
	}
	return index - 1, nil
}

// ValidateMappings checks the structural invariants of a mapping list:
// a non-empty list, well-formed entries, no duplicate source columns or
// target properties among active mappings, and exactly one active
// Title-typed mapping. All violations are collected in order.
func ValidateMappings(mappings []ColumnMapping) ValidationResult {
	result := ValidationResult{Valid: true}

	if len(mappings) == 0 {
		result.add(ValidationError{Message: "no column mappings are configured"})
		return result
	}

	for i, m := range mappings {
		label := fmt.Sprintf("mapping %d", i+1)
		if strings.TrimSpace(m.SourceColumn) == "" {
			result.add(ValidationError{Field: label, Message: "source column is empty"})
		}
		property := strings.TrimSpace(m.TargetProperty)
		switch {
		case property == "":
			result.add(ValidationError{Field: label, Message: "target property is empty"})
		case utf8.RuneCountInString(property) > MaxPropertyNameLength:
			result.add(ValidationError{
				Field:   label,
				Value:   property,
				Message: fmt.Sprintf("target property exceeds %d characters", MaxPropertyNameLength),
			})
		case IsReservedProperty(property):
			result.add(ValidationError{
				Field:   label,
				Value:   property,
				Message: "target property is a reserved Notion name",
			})
		}
		if !m.Type.Valid() {
			result.add(ValidationError{Field: label, Message: "property type is unsupported"})
		}
		if m.Column < 0 {
			result.add(ValidationError{
				Field:   label,
				Value:   m.SourceColumn,
				Message: "source column did not resolve to an index",
			})
		}
	}

	// List-wide invariants apply to the active subset only.
	seenColumns := make(map[int]string)
	seenProperties := make(map[string]string)
	titles := 0
	for i, m := range mappings {
		if !m.Active {
			continue
		}
		label := fmt.Sprintf("mapping %d", i+1)

		if m.Column >= 0 {
			if prev, dup := seenColumns[m.Column]; dup {
				result.add(ValidationError{
					Field:   label,
					Value:   m.SourceColumn,
					Message: fmt.Sprintf("source column %d is already mapped by %s", m.Column, prev),
				})
			} else {
				seenColumns[m.Column] = label
			}
		}

		property := strings.TrimSpace(m.TargetProperty)
		if property != "" {
			key := strings.ToLower(property)
			if prev, dup := seenProperties[key]; dup {
				result.add(ValidationError{
					Field:   label,
					Value:   property,
					Message: fmt.Sprintf("target property is already mapped by %s", prev),
				})
			} else {
				seenProperties[key] = label
			}
		}

		if m.Type == TypeTitle {
			titles++
		}
	}

	switch {
	case titles == 0:
		result.add(ValidationError{Message: "exactly one active mapping must have the title type; none does"})
	case titles > 1:
		result.add(ValidationError{Message: fmt.Sprintf("exactly one active mapping may have the title type; found %d", titles)})
	}

	return result
}
