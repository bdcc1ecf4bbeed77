package core

import (
	"math"
	"strings"
	"testing"
	"time"
)

func singleMapping(typ PropertyType, required bool) []ColumnMapping {
	return []ColumnMapping{
		{SourceColumn: "A", Column: 0, TargetProperty: "Field", Type: typ, Active: true, Required: required},
	}
}

func TestValidateRowNilRow(t *testing.T) {
	result := ValidateRow(nil, singleMapping(TypeTitle, true))
	if result.Valid {
		t.Fatal("ValidateRow accepted a nil row")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "row data is missing") {
		t.Errorf("got errors %v, want a single missing-row error", result.Messages())
	}
}

func TestValidateRowNoActiveMappings(t *testing.T) {
	mappings := []ColumnMapping{
		{SourceColumn: "A", Column: 0, TargetProperty: "Name", Type: TypeTitle, Active: false},
	}
	result := ValidateRow(RowData{"x"}, mappings)
	if result.Valid {
		t.Fatal("ValidateRow accepted a row with no active mappings")
	}
	if !containsMessage(result, "no active column mappings") {
		t.Errorf("errors %v do not report the inactive mapping list", result.Messages())
	}
}

func TestValidateRowOutOfRangeColumn(t *testing.T) {
	required := []ColumnMapping{
		{SourceColumn: "E", Column: 4, TargetProperty: "Name", Type: TypeTitle, Active: true, Required: true},
	}
	result := ValidateRow(RowData{"a", "b"}, required)
	if result.Valid {
		t.Fatal("ValidateRow accepted a required mapping past the end of the row")
	}
	if !containsMessage(result, "out of range for a row of 2 cells") {
		t.Errorf("errors %v do not report the range violation", result.Messages())
	}

	optional := []ColumnMapping{
		{SourceColumn: "A", Column: 0, TargetProperty: "Name", Type: TypeTitle, Active: true, Required: true},
		{SourceColumn: "E", Column: 4, TargetProperty: "Status", Type: TypeSelect, Active: true},
	}
	if result := ValidateRow(RowData{"a", "b"}, optional); !result.Valid {
		t.Errorf("optional out-of-range mapping was rejected: %v", result.Messages())
	}
}

func TestValidateRowRequiredEmpty(t *testing.T) {
	for _, value := range []any{nil, "", "   "} {
		result := ValidateRow(RowData{value}, singleMapping(TypeTitle, true))
		if result.Valid {
			t.Errorf("ValidateRow accepted empty required value %#v", value)
			continue
		}
		if !containsMessage(result, "required value is empty") {
			t.Errorf("errors %v do not report the empty required value", result.Messages())
		}
	}
}

func TestValidateRowOptionalEmptySkipsTypeCheck(t *testing.T) {
	// An empty optional URL cell must not trip the URL format rule.
	if result := ValidateRow(RowData{""}, singleMapping(TypeURL, false)); !result.Valid {
		t.Errorf("empty optional cell was rejected: %v", result.Messages())
	}
}

func TestValidateRowTextRules(t *testing.T) {
	if result := ValidateRow(RowData{"hello"}, singleMapping(TypeTitle, true)); !result.Valid {
		t.Errorf("plain text rejected: %v", result.Messages())
	}
	if result := ValidateRow(RowData{42.0}, singleMapping(TypeRichText, true)); !result.Valid {
		t.Errorf("numeric cell rejected for text: %v", result.Messages())
	}
	if result := ValidateRow(RowData{true}, singleMapping(TypeTitle, true)); result.Valid {
		t.Error("boolean cell accepted for text")
	}
	long := strings.Repeat("a", maxTextLength+1)
	result := ValidateRow(RowData{long}, singleMapping(TypeTitle, true))
	if result.Valid || !containsMessage(result, "exceeds 2000 characters") {
		t.Errorf("overlong text not reported: %v", result.Messages())
	}
}

func TestValidateRowNumberRules(t *testing.T) {
	for _, value := range []any{42.0, -1, "3.14", " 7 "} {
		if result := ValidateRow(RowData{value}, singleMapping(TypeNumber, true)); !result.Valid {
			t.Errorf("number %#v rejected: %v", value, result.Messages())
		}
	}

	result := ValidateRow(RowData{math.NaN()}, singleMapping(TypeNumber, true))
	if result.Valid || !containsMessage(result, "NaN") {
		t.Errorf("NaN not reported distinctly: %v", result.Messages())
	}
	result = ValidateRow(RowData{math.Inf(1)}, singleMapping(TypeNumber, true))
	if result.Valid || !containsMessage(result, "infinite") {
		t.Errorf("infinity not reported distinctly: %v", result.Messages())
	}
	result = ValidateRow(RowData{"abc"}, singleMapping(TypeNumber, true))
	if result.Valid || !containsMessage(result, "finite number") {
		t.Errorf("unparsable number not reported: %v", result.Messages())
	}
}

func TestValidateRowDateRules(t *testing.T) {
	valid := []any{
		"2023-01-01",
		"1/2/2023",
		"Jan 2, 2023",
		44927.0, // 2023-01-01 as a spreadsheet serial
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, value := range valid {
		if result := ValidateRow(RowData{value}, singleMapping(TypeDate, true)); !result.Valid {
			t.Errorf("date %#v rejected: %v", value, result.Messages())
		}
	}

	result := ValidateRow(RowData{"not a date"}, singleMapping(TypeDate, true))
	if result.Valid {
		t.Error("unparsable date string accepted")
	}
	result = ValidateRow(RowData{3000000.0}, singleMapping(TypeDate, true))
	if result.Valid || !containsMessage(result, "outside the supported range") {
		t.Errorf("out-of-range serial not reported: %v", result.Messages())
	}
	if result := ValidateRow(RowData{0.0}, singleMapping(TypeDate, true)); result.Valid {
		t.Error("serial 0 accepted, want rejection below the minimum")
	}
}

func TestValidateRowCheckboxRules(t *testing.T) {
	valid := []any{true, false, "yes", "No", "ON", "off", "1", "0", 1, 0.0}
	for _, value := range valid {
		if result := ValidateRow(RowData{value}, singleMapping(TypeCheckbox, true)); !result.Valid {
			t.Errorf("checkbox %#v rejected: %v", value, result.Messages())
		}
	}
	for _, value := range []any{"maybe", 2, 0.5} {
		if result := ValidateRow(RowData{value}, singleMapping(TypeCheckbox, true)); result.Valid {
			t.Errorf("checkbox %#v accepted, want rejection", value)
		}
	}
}

func TestValidateRowSelectRules(t *testing.T) {
	if result := ValidateRow(RowData{"Option A"}, singleMapping(TypeSelect, true)); !result.Valid {
		t.Errorf("select option rejected: %v", result.Messages())
	}
	long := strings.Repeat("x", maxSelectLength+1)
	result := ValidateRow(RowData{long}, singleMapping(TypeSelect, true))
	if result.Valid || !containsMessage(result, "exceeds 100 characters") {
		t.Errorf("overlong option not reported: %v", result.Messages())
	}
}

func TestValidateRowURLRules(t *testing.T) {
	if result := ValidateRow(RowData{"https://example.com/x"}, singleMapping(TypeURL, true)); !result.Valid {
		t.Errorf("URL rejected: %v", result.Messages())
	}
	result := ValidateRow(RowData{"ftp://example.com"}, singleMapping(TypeURL, true))
	if result.Valid || !containsMessage(result, "http:// or https://") {
		t.Errorf("non-http scheme not reported: %v", result.Messages())
	}
	if result := ValidateRow(RowData{42.0}, singleMapping(TypeURL, true)); result.Valid {
		t.Error("numeric cell accepted for URL")
	}
}

func TestValidateRowEmailRules(t *testing.T) {
	if result := ValidateRow(RowData{"user@example.com"}, singleMapping(TypeEmail, true)); !result.Valid {
		t.Errorf("email rejected: %v", result.Messages())
	}
	for _, value := range []any{"not-an-email", "user@", "@example.com", "user@example"} {
		if result := ValidateRow(RowData{value}, singleMapping(TypeEmail, true)); result.Valid {
			t.Errorf("email %#v accepted, want rejection", value)
		}
	}
}

func TestValidateRowPhoneRules(t *testing.T) {
	if result := ValidateRow(RowData{"+1 (555) 123-4567"}, singleMapping(TypePhoneNumber, true)); !result.Valid {
		t.Errorf("phone rejected: %v", result.Messages())
	}
	result := ValidateRow(RowData{"555-1234"}, singleMapping(TypePhoneNumber, true))
	if result.Valid || !containsMessage(result, "at least 10 digits") {
		t.Errorf("short phone not reported: %v", result.Messages())
	}
	result = ValidateRow(RowData{"call me maybe"}, singleMapping(TypePhoneNumber, true))
	if result.Valid || !containsMessage(result, "may only contain") {
		t.Errorf("malformed phone not reported: %v", result.Messages())
	}
}

func TestValidateRowReportsAllFailuresInOrder(t *testing.T) {
	mappings := []ColumnMapping{
		{SourceColumn: "A", Column: 0, TargetProperty: "Name", Type: TypeTitle, Active: true, Required: true},
		{SourceColumn: "B", Column: 1, TargetProperty: "Count", Type: TypeNumber, Active: true, Required: true},
		{SourceColumn: "C", Column: 2, TargetProperty: "Site", Type: TypeURL, Active: true, Required: true},
	}
	row := RowData{"", "abc", "nope"}

	result := ValidateRow(row, mappings)
	if result.Valid {
		t.Fatal("ValidateRow accepted a row with three bad cells")
	}
	if len(result.Errors) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(result.Errors), result.Messages())
	}
	wantFields := []string{"column A (Name)", "column B (Count)", "column C (Site)"}
	for i, want := range wantFields {
		if got := result.Errors[i].Field; got != want {
			t.Errorf("error %d field = %q, want %q", i, got, want)
		}
	}
}

func TestValidateRowMixedRow(t *testing.T) {
	mappings := []ColumnMapping{
		{SourceColumn: "A", Column: 0, TargetProperty: "Name", Type: TypeTitle, Active: true, Required: true},
		{SourceColumn: "B", Column: 1, TargetProperty: "Notes", Type: TypeRichText, Active: true},
		{SourceColumn: "C", Column: 2, TargetProperty: "Count", Type: TypeNumber, Active: true},
	}
	row := RowData{"Task A", "", 42.0}

	if result := ValidateRow(row, mappings); !result.Valid {
		t.Errorf("valid mixed row rejected: %v", result.Messages())
	}
}
