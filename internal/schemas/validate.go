// Package schemas provides JSON Schema validation for the artifacts xliff_fixer writes.
package schemas

import (
	"fmt"
	"os"
	"strings"
	"sync"

	schemafiles "github.com/jonathan/xliff-fixer/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
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

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	reportSchemaOnce sync.Once
	reportSchema     *gojsonschema.Schema
	reportSchemaErr  error
)

// compiledReportSchema compiles the embedded report schema on first use.
func compiledReportSchema() (*gojsonschema.Schema, error) {
	reportSchemaOnce.Do(func() {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemafiles.RepairReport))
		if err != nil {
			reportSchemaErr = &SchemaLoadError{Path: schemafiles.RepairReportFile, Message: "schema does not compile", Cause: err}
			return
		}
		reportSchema = schema
	})
	return reportSchema, reportSchemaErr
}

// ValidateReport validates a repair report against the embedded report schema.
// Malformed JSON is reported as a *SchemaLoadError, schema violations as a *ValidationError.
func ValidateReport(data []byte) error {
	schema, err := compiledReportSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &SchemaLoadError{Path: schemafiles.RepairReportFile, Message: "report could not be loaded", Cause: err}
	}
	if result.Valid() {
		return nil
	}
	return newValidationError(result.Errors())
}

// ValidateReportFile validates a repair report on disk against the embedded report schema.
func ValidateReportFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ValidateReport(data)
}

func newValidationError(results []gojsonschema.ResultError) *ValidationError {
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(results)),
	}
	for _, desc := range results {
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
