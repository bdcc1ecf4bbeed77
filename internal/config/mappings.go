package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mkallberg/pagesync/internal/core"
)

//go:embed mappings_schema.json
var mappingsSchemaJSON []byte

var mappingsSchema = mustCompileMappingsSchema()

func mustCompileMappingsSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("mappings_schema.json", bytes.NewReader(mappingsSchemaJSON)); err != nil {
		panic(fmt.Sprintf("config: adding mappings schema resource: %v", err))
	}
	schema, err := compiler.Compile("mappings_schema.json")
	if err != nil {
		panic(fmt.Sprintf("config: compiling mappings schema: %v", err))
	}
	return schema
}

// mappingEntry is the on-disk shape of one column mapping.
type mappingEntry struct {
	Column   string `json:"column"`
	Property string `json:"property"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Active   *bool  `json:"active"`
}

// LoadMappings reads the mapping file, checks it against the embedded
// JSON schema, resolves column references, and validates the resulting
// mapping list as a whole. Raw column refs and type names never leave
// this boundary.
func LoadMappings(path string) ([]core.ColumnMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mappings file: %w", err)
	}
	return ParseMappings(data)
}

// ParseMappings parses and validates mapping JSON. Split from
// LoadMappings so tests and other callers can feed bytes directly.
func ParseMappings(data []byte) ([]core.ColumnMapping, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("mappings file is not valid JSON: %w", err)
	}
	if err := mappingsSchema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("mappings file failed schema validation: %w", err)
	}

	var entries []mappingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding mappings: %w", err)
	}

	mappings := make([]core.ColumnMapping, 0, len(entries))
	for i, entry := range entries {
		index, err := core.ResolveColumn(entry.Column)
		if err != nil {
			return nil, fmt.Errorf("mapping %d: %w", i+1, err)
		}
		typ, err := core.ParsePropertyType(entry.Type)
		if err != nil {
			return nil, fmt.Errorf("mapping %d: %w", i+1, err)
		}
		active := true
		if entry.Active != nil {
			active = *entry.Active
		}
		mappings = append(mappings, core.ColumnMapping{
			SourceColumn:   strings.TrimSpace(entry.Column),
			Column:         index,
			TargetProperty: strings.TrimSpace(entry.Property),
			Type:           typ,
			Active:         active,
			Required:       entry.Required,
		})
	}

	if result := core.ValidateMappings(mappings); !result.Valid {
		return nil, fmt.Errorf("mappings are misconfigured:\n  - %s",
			strings.Join(result.Messages(), "\n  - "))
	}
	return mappings, nil
}
