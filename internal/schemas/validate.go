// Package schemas provides JSON Schema validation for persisted score documents.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jonathan/talent-pool/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed score_breakdown.v1.schema.json
var scoreBreakdownV1 string

// ScoreBreakdownSchemaV1 returns the raw v1 breakdown schema.
func ScoreBreakdownSchemaV1() string {
	return scoreBreakdownV1
}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// BreakdownValidator checks score breakdowns against a compiled schema.
type BreakdownValidator struct {
	version int
	schema  *gojsonschema.Schema
}

var (
	v1Once      sync.Once
	v1Validator *BreakdownValidator
	v1Err       error
)

// NewBreakdownValidator returns the validator for a score version.
func NewBreakdownValidator(version int) (*BreakdownValidator, error) {
	if version != 1 {
		return nil, fmt.Errorf("no breakdown schema for score version %d", version)
	}
	v1Once.Do(func() {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(scoreBreakdownV1))
		if err != nil {
			v1Err = &SchemaLoadError{Path: "score_breakdown.v1.schema.json", Message: "invalid embedded schema", Cause: err}
			return
		}
		v1Validator = &BreakdownValidator{version: 1, schema: schema}
	})
	return v1Validator, v1Err
}

// Version returns the score version this validator enforces.
func (v *BreakdownValidator) Version() int {
	return v.version
}

// ValidateBreakdown checks that a breakdown is a well-formed document for this version.
// The total must also equal the sum of the components.
func (v *BreakdownValidator) ValidateBreakdown(b types.ScoreBreakdown) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate breakdown: %w", err)
	}
	if !result.Valid() {
		return toValidationError(result)
	}

	if sum := min(b.ComponentSum(), 100); sum != b.Total {
		return &ValidationError{Errors: []FieldError{{
			Field:   "total",
			Message: fmt.Sprintf("total %d does not match component sum %d", b.Total, sum),
		}}}
	}
	return nil
}

// ValidateJSON validates a JSON file against a JSON Schema file
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaAbsPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to resolve schema path: %w", err)
	}

	jsonAbsPath, err := filepath.Abs(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}

	if _, err := os.Stat(schemaAbsPath); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", schemaAbsPath)
	}

	if _, err := os.Stat(jsonAbsPath); os.IsNotExist(err) {
		return fmt.Errorf("JSON file not found: %s", jsonAbsPath)
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaAbsPath)
	documentLoader := gojsonschema.NewReferenceLoader("file://" + jsonAbsPath)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaAbsPath,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}
	return toValidationError(result)
}

// ValidateBreakdownFile validates a breakdown JSON file against the embedded v1 schema.
func ValidateBreakdownFile(jsonPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(scoreBreakdownV1), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &SchemaLoadError{Path: jsonPath, Message: "document could not be loaded", Cause: err}
	}
	if result.Valid() {
		return nil
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) *ValidationError {
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
