// Package schemas provides JSON Schema validation for model output payloads.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed blueprint_payload.schema.json
var blueprintPayloadSchema string

var (
	payloadSchemaOnce sync.Once
	payloadSchema     *gojsonschema.Schema
	payloadSchemaErr  error
)

// FieldError is a single validation failure at a specific field path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates schema validation failures.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("schema validation failed:")
	for _, fe := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %s: %s;", fe.Field, fe.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

func loadPayloadSchema() (*gojsonschema.Schema, error) {
	payloadSchemaOnce.Do(func() {
		loader := gojsonschema.NewStringLoader(blueprintPayloadSchema)
		payloadSchema, payloadSchemaErr = gojsonschema.NewSchema(loader)
	})
	return payloadSchema, payloadSchemaErr
}

// ValidateBlueprintPayload validates raw JSON text against the blueprint
// payload schema. The schema requires a non-empty overview.summary; the
// optional plan sections are unconstrained beyond being arrays.
func ValidateBlueprintPayload(jsonText string) error {
	schema, err := loadPayloadSchema()
	if err != nil {
		return fmt.Errorf("failed to load blueprint payload schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonText))
	if err != nil {
		return fmt.Errorf("failed to validate payload: %w", err)
	}

	if result.Valid() {
		return nil
	}

	ve := &ValidationError{}
	for _, resultErr := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   resultErr.Field(),
			Message: resultErr.Description(),
		})
	}
	return ve
}
