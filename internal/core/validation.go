package core

// validation.go checks one row's cell values against the declared column
// mappings before anything is sent to Notion.
//
// All active mappings are checked and all failures reported in mapping
// order; validation never stops at the first bad field. Every message
// names the field as "column <ref> (<property>)", the rule that was
// violated, and the offending literal, so a mapping mistake can be fixed
// from the error text alone.

import (
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"
)

// Limits shared between validation and conversion. Text and URL limits
// are Notion's own; the phone limit guards against junk columns.
const (
	maxTextLength    = 2000
	maxSelectLength  = 100
	maxURLLength     = 2000
	maxEmailLength   = 320
	maxPhoneLength   = 50
	minPhoneDigits   = 10
	maxSelectOptions = 100
)

var (
	urlPattern   = regexp.MustCompile(`^https?://`)
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[0-9+\-() ]+$`)
)

// ValidateRow validates a row against the active mappings. A nil row and
// a mapping list with no active entries each fail fast with a single
// error, since no per-cell check is meaningful in either case.
func ValidateRow(row RowData, mappings []ColumnMapping) ValidationResult {
	result := ValidationResult{Valid: true}

	if row == nil {
		result.add(ValidationError{Message: "row data is missing; expected a sequence of cells"})
		return result
	}

	active := 0
	for _, m := range mappings {
		if m.Active {
			active++
		}
	}
	if active == 0 {
		result.add(ValidationError{Message: "no active column mappings to validate against"})
		return result
	}

	for _, m := range mappings {
		if !m.Active {
			continue
		}
		label := fieldLabel(m)

		if m.Column < 0 || m.Column >= len(row) {
			if m.Required {
				result.add(ValidationError{
					Field: label,
					Message: fmt.Sprintf("resolved column index %d is out of range for a row of %d cells",
						m.Column, len(row)),
				})
			}
			continue
		}

		value := row[m.Column]
		if isEmptyCell(value) {
			if m.Required {
				result.add(ValidationError{Field: label, Message: "required value is empty"})
			}
			continue
		}

		if msg := checkCell(value, m.Type); msg != "" {
			result.add(ValidationError{Field: label, Value: cellString(value), Message: msg})
		}
	}

	return result
}

// fieldLabel names a mapped field for error messages.
func fieldLabel(m ColumnMapping) string {
	return fmt.Sprintf("column %s (%s)", m.SourceColumn, m.TargetProperty)
}

// checkCell applies the type-specific rule to a non-empty cell and
// returns an empty string when the value passes.
func checkCell(value any, typ PropertyType) string {
	switch typ {
	case TypeTitle, TypeRichText:
		s, ok := textValue(value)
		if !ok {
			return "must be text or a number"
		}
		if n := utf8.RuneCountInString(s); n > maxTextLength {
			return fmt.Sprintf("text exceeds %d characters (%d)", maxTextLength, n)
		}

	case TypeNumber:
		switch _, reason := numberValue(value); reason {
		case "nan":
			return "value is NaN, which is not a usable number"
		case "infinite":
			return "value is infinite, which is not a usable number"
		case "parse", "type":
			return "must be a finite number"
		}

	case TypeDate:
		if _, ok := value.(time.Time); ok {
			return ""
		}
		switch t := value.(type) {
		case string:
			if _, ok := parseDateString(t); !ok {
				return "must be a date (YYYY-MM-DD or a common regional format)"
			}
		default:
			serial, reason := numberValue(value)
			if reason != "" {
				return "must be a date, a date string, or a spreadsheet date serial"
			}
			if !validDateSerial(serial) {
				return fmt.Sprintf("date serial is outside the supported range %d..%d", minDateSerial, maxDateSerial)
			}
		}

	case TypeCheckbox:
		if _, ok := parseCheckbox(value); !ok {
			return "must be a boolean, 0/1, or one of true/false, yes/no, on/off"
		}

	case TypeSelect:
		s, ok := textValue(value)
		if !ok || s == "" {
			return "must be a non-empty option name"
		}
		if utf8.RuneCountInString(s) > maxSelectLength {
			return fmt.Sprintf("option name exceeds %d characters", maxSelectLength)
		}

	case TypeMultiSelect:
		if _, ok := textValue(value); !ok {
			return "must be a comma-separated list of option names"
		}

	case TypeURL:
		s, ok := value.(string)
		if !ok {
			return "must be a string URL"
		}
		if !urlPattern.MatchString(s) {
			return "must start with http:// or https://"
		}
		if utf8.RuneCountInString(s) > maxURLLength {
			return fmt.Sprintf("URL exceeds %d characters", maxURLLength)
		}

	case TypeEmail:
		s, ok := value.(string)
		if !ok {
			return "must be a string email address"
		}
		if utf8.RuneCountInString(s) > maxEmailLength {
			return fmt.Sprintf("email exceeds %d characters", maxEmailLength)
		}
		if !emailPattern.MatchString(s) {
			return "must be a valid email address (local@domain.tld)"
		}

	case TypePhoneNumber:
		s, ok := textValue(value)
		if !ok {
			return "must be a phone number"
		}
		if !phonePattern.MatchString(s) {
			return "may only contain digits, spaces, +, -, and parentheses"
		}
		if n := countDigits(s); n < minPhoneDigits {
			return fmt.Sprintf("must contain at least %d digits (found %d)", minPhoneDigits, n)
		}

	default:
		return "has an unsupported property type"
	}

	return ""
}
