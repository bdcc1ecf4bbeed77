package core

// convert.go turns validated cell values into typed Notion properties.
//
// Convert is a pure function: the same (value, type) pair always yields
// the same property or a *ConversionError. Empty input produces the
// well-formed empty variant for the type; the orchestrator instead omits
// empty optional fields from the payload entirely, so empty variants only
// reach the wire when a caller asks for them explicitly.

import (
	"fmt"
	"strings"

	"github.com/mkallberg/pagesync/internal/notion"
)

// ConversionError reports a cell that cannot be coerced to its declared
// property type.
type ConversionError struct {
	Type   PropertyType
	Value  any
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %s", cellString(e.Value), e.Type, e.Reason)
}

// propertyKinds maps declared types to their wire kind.
var propertyKinds = map[PropertyType]notion.PropertyKind{
	TypeTitle:       notion.KindTitle,
	TypeRichText:    notion.KindRichText,
	TypeNumber:      notion.KindNumber,
	TypeSelect:      notion.KindSelect,
	TypeMultiSelect: notion.KindMultiSelect,
	TypeDate:        notion.KindDate,
	TypeCheckbox:    notion.KindCheckbox,
	TypeURL:         notion.KindURL,
	TypeEmail:       notion.KindEmail,
	TypePhoneNumber: notion.KindPhoneNumber,
}

// Convert coerces a cell value into a typed Notion property, applying the
// type's normalization rules (truncation, option splitting, date serial
// conversion). Values that validation would reject yield *ConversionError.
func Convert(value any, typ PropertyType) (notion.Property, error) {
	kind, ok := propertyKinds[typ]
	if !ok {
		return notion.Property{}, &ConversionError{Type: typ, Value: value, Reason: "unsupported property type"}
	}
	if isEmptyCell(value) {
		return notion.Empty(kind), nil
	}

	switch typ {
	case TypeTitle, TypeRichText:
		s, ok := textValue(value)
		if !ok {
			return notion.Property{}, &ConversionError{Type: typ, Value: value, Reason: "value is not text or a number"}
		}
		s = truncateRunes(s, maxTextLength)
		if typ == TypeTitle {
			return notion.NewTitle(s), nil
		}
		return notion.NewRichText(s), nil

	case TypeNumber:
		f, reason := numberValue(value)
		if reason != "" {
			return notion.Property{}, &ConversionError{Type: typ, Value: value, Reason: "value is not a finite number"}
		}
		return notion.NewNumber(f), nil

	case TypeSelect:
		s, ok := textValue(value)
		if !ok || s == "" {
			return notion.Property{}, &ConversionError{Type: typ, Value: value, Reason: "value is not an option name"}
		}
		return notion.NewSelect(truncateRunes(s, maxSelectLength)), nil

	case TypeMultiSelect:
		s, ok := textValue(value)
		if !ok {
			return notion.Property{}, &ConversionError{Type: typ, Value: value, Reason: "value is not a list of option names"}
		}
		return notion.NewMultiSelect(splitOptions(s)), nil

	case TypeDate:
		t, ok := dateValue(value)
		if !ok {
			return notion.Property{}, &ConversionError{Type: typ, Value: value, Reason: "value is not a recognizable date"}
		}
		return notion.NewDate(t.Format("2006-01-02")), nil

	case TypeCheckbox:
		b, ok := parseCheckbox(value)
		if !ok {
			return notion.Property{}, &ConversionError{Type: typ, Value: value, Reason: "value is not a recognizable boolean"}
		}
		return notion.NewCheckbox(b), nil

	case TypeURL:
		s, ok := value.(string)
		if !ok || !urlPattern.MatchString(s) {
			return notion.Property{}, &ConversionError{Type: typ, Value: value, Reason: "value is not an http(s) URL"}
		}
		return notion.NewURL(truncateRunes(s, maxURLLength)), nil

	case TypeEmail:
		s, ok := value.(string)
		if !ok {
			return notion.Property{}, &ConversionError{Type: typ, Value: value, Reason: "value is not an email address"}
		}
		return notion.NewEmail(truncateRunes(strings.TrimSpace(s), maxEmailLength)), nil

	case TypePhoneNumber:
		s, ok := textValue(value)
		if !ok {
			return notion.Property{}, &ConversionError{Type: typ, Value: value, Reason: "value is not a phone number"}
		}
		return notion.NewPhoneNumber(truncateRunes(s, maxPhoneLength)), nil
	}

	return notion.Property{}, &ConversionError{Type: typ, Value: value, Reason: "unsupported property type"}
}

// splitOptions splits a multi-select cell on commas, trims each token,
// drops empty tokens, and applies the option count and length caps.
func splitOptions(s string) []string {
	parts := strings.Split(s, ",")
	options := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		options = append(options, truncateRunes(part, maxSelectLength))
		if len(options) == maxSelectOptions {
			break
		}
	}
	return options
}
