// Package observability provides logging and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/xliff-fixer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// PrintRepairResult outputs a summary of one repaired file.
func (p *Printer) PrintRepairResult(filename string, result *types.RepairResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:      %s\n", filename))
	sb.WriteString(fmt.Sprintf("Strategy:  %s\n", result.Strategy))
	sb.WriteString(fmt.Sprintf("Modified:  %s\n", yesNo(result.WasModified)))
	sb.WriteString(fmt.Sprintf("Valid XML: %s", yesNo(result.IsValid)))

	if len(result.Errors) > 0 {
		sb.WriteString("\n\nErrors:\n")
		count := min(len(result.Errors), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", result.Errors[i]))
		}
		if len(result.Errors) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Errors)-maxItemsToShow))
		}
	}

	p.printBox("REPAIR RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidation outputs the validation outcome for a file.
func (p *Printer) PrintValidation(filename string, outcome *types.ValidationOutcome) {
	if outcome == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:      %s\n", filename))
	sb.WriteString(fmt.Sprintf("Valid XML: %s", yesNo(outcome.IsValid)))
	for _, e := range outcome.Errors {
		sb.WriteString(fmt.Sprintf("\n  • %s", e))
	}

	p.printBox("VALIDATION", sb.String())
}

// PrintLog outputs a single repair progress line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintLog(entry types.LogEntry) {
	fmt.Fprintf(p.out, "%s %s %s\n", entry.Time.Format("15:04:05"), levelIcon(entry.Level), entry.Message)
}

func levelIcon(level types.LogLevel) string {
	switch level {
	case types.LogSuccess:
		return "✅"
	case types.LogWarning:
		return "⚠️ "
	case types.LogError:
		return "❌"
	default:
		return "•"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
