// Package schemas holds the JSON Schema documents for artifacts written by xliff_fixer.
package schemas

import _ "embed"

// RepairReport is the JSON Schema for the report written by `xliff_fixer repair --report`.
//
//go:embed repair_result.schema.json
var RepairReport string

// RepairReportFile is the schema's path relative to the repository root.
const RepairReportFile = "schemas/repair_result.schema.json"
