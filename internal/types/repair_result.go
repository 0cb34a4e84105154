// Package types provides type definitions for structured data used throughout the xliff-fixer system.
package types

// Strategy identifies how a candidate fix was produced.
type Strategy string

const (
	// StrategyHeuristic applies the fixed set of regex repairs.
	StrategyHeuristic Strategy = "heuristic"
	// StrategyAI asks a language model to rewrite the document.
	StrategyAI Strategy = "ai"
)

// ValidationOutcome is the well-formedness verdict for a document.
// Errors is empty if and only if IsValid is true.
type ValidationOutcome struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// RepairResult is the outcome of a single repair attempt.
type RepairResult struct {
	FixedContent string   `json:"fixed_content"`
	IsValid      bool     `json:"is_valid"`
	Errors       []string `json:"errors"`
	WasModified  bool     `json:"was_modified"`
	Strategy     Strategy `json:"strategy,omitempty"`
}

// NewRepairResult composes a RepairResult from candidate content and its validation outcome.
func NewRepairResult(content string, outcome ValidationOutcome, modified bool, strategy Strategy) RepairResult {
	errs := outcome.Errors
	if errs == nil {
		errs = []string{}
	}
	return RepairResult{
		FixedContent: content,
		IsValid:      outcome.IsValid,
		Errors:       errs,
		WasModified:  modified,
		Strategy:     strategy,
	}
}

// ParseStrategy converts a user supplied name into a Strategy.
// An empty name selects the heuristic strategy.
func ParseStrategy(name string) (Strategy, bool) {
	switch Strategy(name) {
	case "", StrategyHeuristic:
		return StrategyHeuristic, true
	case StrategyAI:
		return StrategyAI, true
	default:
		return "", false
	}
}
