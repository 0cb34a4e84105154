package schemas

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/xliff-fixer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReport() types.RepairReport {
	return types.RepairReport{
		GeneratedAt: "2024-05-01T10:00:00Z",
		Strategy:    types.StrategyHeuristic,
		Files: []types.ReportEntry{
			{
				Filename:   "messages.xlf",
				Hash:       strings.Repeat("a", 64),
				Size:       42,
				OutputPath: "out/messages_fixed.xlf",
				Result: types.RepairResult{
					FixedContent: "<a>x &amp; y</a>",
					IsValid:      true,
					Errors:       []string{},
					WasModified:  true,
					Strategy:     types.StrategyHeuristic,
				},
			},
		},
	}
}

func marshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestValidateReport_Valid(t *testing.T) {
	err := ValidateReport(marshal(t, validReport()))
	assert.NoError(t, err)
}

func TestValidateReport_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *types.RepairReport)
	}{
		{
			name:   "unknown strategy",
			mutate: func(r *types.RepairReport) { r.Strategy = "magic" },
		},
		{
			name:   "bad hash",
			mutate: func(r *types.RepairReport) { r.Files[0].Hash = "xyz" },
		},
		{
			name:   "empty filename",
			mutate: func(r *types.RepairReport) { r.Files[0].Filename = "" },
		},
		{
			name: "valid result with errors",
			mutate: func(r *types.RepairReport) {
				r.Files[0].Result.Errors = []string{"unexpected EOF"}
			},
		},
		{
			name: "invalid result without errors",
			mutate: func(r *types.RepairReport) {
				r.Files[0].Result.IsValid = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := validReport()
			tt.mutate(&report)

			err := ValidateReport(marshal(t, report))
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "got %T: %v", err, err)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateReport_MissingField(t *testing.T) {
	err := ValidateReport([]byte(`{"strategy": "heuristic", "files": []}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Error(), "generated_at")
}

func TestValidateReport_MalformedJSON(t *testing.T) {
	err := ValidateReport([]byte("{ invalid json }"))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateReportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, marshal(t, validReport()), 0644))

	assert.NoError(t, ValidateReportFile(path))
}

func TestValidateReportFile_NotFound(t *testing.T) {
	err := ValidateReportFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCompiledReportSchema_Reused(t *testing.T) {
	first, err := compiledReportSchema()
	require.NoError(t, err)
	second, err := compiledReportSchema()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestValidateReport_CollectsEveryViolation(t *testing.T) {
	err := ValidateReport([]byte(`{"strategy": "magic", "files": "none"}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.GreaterOrEqual(t, len(validationErr.Errors), 3)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Contains(t, errorMsg, "age")
}

func TestSchemaLoadError_Unwrap(t *testing.T) {
	cause := errors.New("bad pointer")
	err := &SchemaLoadError{Path: "x.json", Message: "load failed", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "x.json")
}
