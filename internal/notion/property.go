package notion

// property.go models the typed property payload that Notion's pages API
// expects. Each property is a discriminated union: the JSON object carries
// exactly one key named after the property kind, e.g.
//
//	{"title": [{"text": {"content": "Task A"}}]}
//	{"number": 42}
//	{"multi_select": [{"name": "Option A"}, {"name": "Option B"}]}
//
// Property values are immutable once built; use the New* constructors.

import (
	"encoding/json"
	"fmt"
)

// PropertyKind identifies the variant carried by a Property.
// The string value doubles as the JSON key on the wire.
type PropertyKind string

const (
	KindTitle       PropertyKind = "title"
	KindRichText    PropertyKind = "rich_text"
	KindNumber      PropertyKind = "number"
	KindSelect      PropertyKind = "select"
	KindMultiSelect PropertyKind = "multi_select"
	KindDate        PropertyKind = "date"
	KindCheckbox    PropertyKind = "checkbox"
	KindURL         PropertyKind = "url"
	KindEmail       PropertyKind = "email"
	KindPhoneNumber PropertyKind = "phone_number"
)

// RichText is a single rich-text fragment. Only plain text content is
// produced by this service; annotations are never set.
type RichText struct {
	Text TextContent `json:"text"`
}

// TextContent holds the plain text of a rich-text fragment.
type TextContent struct {
	Content string `json:"content"`
}

// SelectOption names one option of a select or multi-select property.
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue holds an ISO-8601 date (YYYY-MM-DD). End dates and times are
// not used by this service.
type DateValue struct {
	Start string `json:"start"`
}

// Property is one typed value in a page payload. Exactly one variant is
// populated, selected by Kind. The zero value is invalid and fails to
// marshal.
type Property struct {
	Kind PropertyKind

	Text        []RichText // title and rich_text
	Number      *float64
	Select      *SelectOption
	MultiSelect []SelectOption
	Date        *DateValue
	Checkbox    bool
	URL         *string
	Email       *string
	PhoneNumber *string
}

// NewTitle returns a title property with a single text fragment.
func NewTitle(text string) Property {
	return Property{Kind: KindTitle, Text: []RichText{{Text: TextContent{Content: text}}}}
}

// NewRichText returns a rich_text property with a single text fragment.
func NewRichText(text string) Property {
	return Property{Kind: KindRichText, Text: []RichText{{Text: TextContent{Content: text}}}}
}

// NewNumber returns a number property.
func NewNumber(value float64) Property {
	return Property{Kind: KindNumber, Number: &value}
}

// NewSelect returns a select property with the given option name.
func NewSelect(name string) Property {
	return Property{Kind: KindSelect, Select: &SelectOption{Name: name}}
}

// NewMultiSelect returns a multi_select property preserving option order.
func NewMultiSelect(names []string) Property {
	options := make([]SelectOption, len(names))
	for i, name := range names {
		options[i] = SelectOption{Name: name}
	}
	return Property{Kind: KindMultiSelect, MultiSelect: options}
}

// NewDate returns a date property. start must already be formatted as
// YYYY-MM-DD.
func NewDate(start string) Property {
	return Property{Kind: KindDate, Date: &DateValue{Start: start}}
}

// NewCheckbox returns a checkbox property.
func NewCheckbox(checked bool) Property {
	return Property{Kind: KindCheckbox, Checkbox: checked}
}

// NewURL returns a url property.
func NewURL(url string) Property {
	return Property{Kind: KindURL, URL: &url}
}

// NewEmail returns an email property.
func NewEmail(email string) Property {
	return Property{Kind: KindEmail, Email: &email}
}

// NewPhoneNumber returns a phone_number property.
func NewPhoneNumber(phone string) Property {
	return Property{Kind: KindPhoneNumber, PhoneNumber: &phone}
}

// Empty returns the well-formed empty value for a property kind: an empty
// fragment list for text kinds, an empty option list for multi_select,
// false for checkbox, and JSON null for the scalar kinds.
func Empty(kind PropertyKind) Property {
	switch kind {
	case KindTitle, KindRichText:
		return Property{Kind: kind, Text: []RichText{}}
	case KindMultiSelect:
		return Property{Kind: kind, MultiSelect: []SelectOption{}}
	default:
		return Property{Kind: kind}
	}
}

// PlainText returns the concatenated text content of a title or rich_text
// property, and the empty string for every other kind.
func (p Property) PlainText() string {
	var out string
	for _, fragment := range p.Text {
		out += fragment.Text.Content
	}
	return out
}

// MarshalJSON emits the single-key union object Notion expects.
func (p Property) MarshalJSON() ([]byte, error) {
	var value any
	switch p.Kind {
	case KindTitle, KindRichText:
		if p.Text == nil {
			value = []RichText{}
		} else {
			value = p.Text
		}
	case KindNumber:
		value = p.Number
	case KindSelect:
		value = p.Select
	case KindMultiSelect:
		if p.MultiSelect == nil {
			value = []SelectOption{}
		} else {
			value = p.MultiSelect
		}
	case KindDate:
		value = p.Date
	case KindCheckbox:
		value = p.Checkbox
	case KindURL:
		value = p.URL
	case KindEmail:
		value = p.Email
	case KindPhoneNumber:
		value = p.PhoneNumber
	default:
		return nil, fmt.Errorf("notion: cannot marshal property without a kind")
	}
	return json.Marshal(map[string]any{string(p.Kind): value})
}
