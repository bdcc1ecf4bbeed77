package core

// cells.go contains the shared coercion helpers used by both the row
// validator and the property converter, so a value that validates is
// guaranteed to convert with the same interpretation.

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Spreadsheet date serials count days from the 1899-12-30 epoch, which is
// 25569 days before the Unix epoch. The supported range spans roughly
// 1900 through 9999.
const (
	serialEpochOffsetDays = 25569
	minDateSerial         = 1
	maxDateSerial         = 2958465
)

// dateLayouts are tried in order when parsing a string cell as a date.
// ISO forms come first; the regional variants mirror what spreadsheet
// exports commonly produce.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"01-02-2006",
	"1.2.2006",
	"01.02.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// isEmptyCell reports whether a cell carries no value: nil, or a string
// that is empty after trimming.
func isEmptyCell(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

// cellString renders a cell the way a spreadsheet would display it.
// Floats drop trailing zeros so 42.0 renders as "42".
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return toDefaultString(t)
	}
}

// toDefaultString is the fallback rendering for cell types the store is
// not expected to produce.
func toDefaultString(v any) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return ""
}

// textValue renders a cell as text when the cell is a string or number.
// Booleans and other types are rejected so text-typed columns do not
// silently absorb mistyped data.
func textValue(v any) (string, bool) {
	switch v.(type) {
	case string, int, int64, float64, float32:
		return cellString(v), true
	default:
		return "", false
	}
}

// numberValue coerces a cell to a float64. The second return is a short
// reason when coercion fails: "type" for non-numeric cell types, "parse"
// for unparsable strings, "nan" and "infinite" for non-finite results.
func numberValue(v any) (float64, string) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, "parse"
		}
		f = parsed
	default:
		return 0, "type"
	}

	if math.IsNaN(f) {
		return 0, "nan"
	}
	if math.IsInf(f, 0) {
		return 0, "infinite"
	}
	return f, ""
}

// parseCheckbox coerces a cell to a boolean. Accepted forms: native
// booleans, numeric 0/1, and the case-insensitive strings true/false,
// yes/no, 1/0, on/off.
func parseCheckbox(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case int:
		if t == 0 || t == 1 {
			return t == 1, true
		}
	case int64:
		if t == 0 || t == 1 {
			return t == 1, true
		}
	case float64:
		if t == 0 || t == 1 {
			return t == 1, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1", "on":
			return true, true
		case "false", "no", "0", "off":
			return false, true
		}
	}
	return false, false
}

// parseDateString parses a string cell against the supported layouts.
func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// validDateSerial reports whether a numeric cell is inside the supported
// spreadsheet serial range.
func validDateSerial(serial float64) bool {
	return serial >= minDateSerial && serial <= maxDateSerial
}

// serialToTime converts a spreadsheet date serial to UTC time using
// millisecond arithmetic, so fractional serials (intraday times) keep
// their day component intact.
func serialToTime(serial float64) time.Time {
	ms := (serial - serialEpochOffsetDays) * 86400 * 1000
	return time.UnixMilli(int64(ms)).UTC()
}

// dateValue coerces a cell to a time. Accepted forms: native times,
// parseable date strings, and numeric spreadsheet serials.
func dateValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return parseDateString(t)
	default:
		if serial, reason := numberValue(v); reason == "" && validDateSerial(serial) {
			return serialToTime(serial), true
		}
	}
	return time.Time{}, false
}

// countDigits returns the number of decimal digits in s.
func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// truncateRunes caps s at max runes without splitting a rune.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
