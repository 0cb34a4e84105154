package types

// RepairReport is the JSON document written by `xliff_fixer repair --report`.
type RepairReport struct {
	GeneratedAt string        `json:"generated_at"` // RFC3339 format
	Strategy    Strategy      `json:"strategy"`
	Files       []ReportEntry `json:"files"`
}

// ReportEntry records the repair of a single input file.
type ReportEntry struct {
	Filename   string       `json:"filename"`
	Hash       string       `json:"hash"`
	Size       int          `json:"size"`
	OutputPath string       `json:"output_path,omitempty"`
	Result     RepairResult `json:"result"`
}

// AllValid reports whether every entry in the report produced valid XML.
func (r *RepairReport) AllValid() bool {
	for _, f := range r.Files {
		if !f.Result.IsValid {
			return false
		}
	}
	return true
}
