package generator

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const componentsSchemaURL = "vuedoc://components.schema.json"

//go:embed components.schema.json
var componentsSchemaJSON []byte

var (
	componentsSchemaOnce sync.Once
	componentsSchema     *jsonschema.Schema
	componentsSchemaErr  error
)

func loadComponentsSchema() (*jsonschema.Schema, error) {
	componentsSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(componentsSchemaURL, bytes.NewReader(componentsSchemaJSON)); err != nil {
			componentsSchemaErr = err
			return
		}
		componentsSchema, componentsSchemaErr = compiler.Compile(componentsSchemaURL)
	})
	return componentsSchema, componentsSchemaErr
}

// ValidateJSON checks data, as written by RenderJSON, against the
// components schema.
func ValidateJSON(data []byte) error {
	schema, err := loadComponentsSchema()
	if err != nil {
		return fmt.Errorf("failed to compile components schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to decode components for schema validation: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("components schema validation failed: %w", err)
	}
	return nil
}
