// Package repair fixes structural corruption in XLIFF/XML localization files.
package repair

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/jonathan/xliff-fixer/internal/types"
	"github.com/jonathan/xliff-fixer/internal/validation"
)

// Fix names a single heuristic text repair.
type Fix string

// Heuristic fixes, in the order they are applied.
const (
	FixControlChars     Fix = "strip_control_chars"
	FixAmpersands       Fix = "escape_ampersands"
	FixBareLessThan     Fix = "escape_bare_less_than"
	FixTruncatedClosing Fix = "close_truncated_tag"
)

var (
	// XML 1.0 Char excludes every C0 control except tab, line feed and carriage return.
	illegalControlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

	// RE2 has no lookahead, so the entity check runs on regexp2.
	unescapedAmpersand = regexp2.MustCompile(`&(?!(?:amp|lt|gt|apos|quot|#[0-9]+|#[xX][0-9a-fA-F]+);)`, regexp2.None)

	// Whitespace as a JavaScript \s class sees it; a tag name never follows "< ".
	bareLessThan = regexp.MustCompile(`<([\s\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}])`)

	// XML Name: a letter, "_" or ":" followed by letters, digits, combining marks, "." "-" or middle dot.
	truncatedClosingTag = regexp.MustCompile(`</[\p{L}_:][\p{L}\p{N}\p{Mn}\p{Mc}\x{00B7}.:_-]*\z`)
)

// Repair applies the heuristic fixes to rawText and validates the result.
// It is deterministic, performs no I/O and is safe for concurrent use.
func Repair(rawText string) types.RepairResult {
	result, _ := repairHeuristic(rawText)
	return result
}

func repairHeuristic(rawText string) (types.RepairResult, []Fix) {
	fixed, applied := ApplyFixes(rawText)
	outcome := validation.Validate(fixed)
	return types.NewRepairResult(fixed, outcome, fixed != rawText, types.StrategyHeuristic), applied
}

// ApplyFixes runs the four text fixes in order and reports which of them changed the text.
// Each fix is skipped when its pattern does not occur.
func ApplyFixes(text string) (string, []Fix) {
	var applied []Fix

	if illegalControlChars.MatchString(text) {
		text = illegalControlChars.ReplaceAllString(text, "")
		applied = append(applied, FixControlChars)
	}

	if escaped, ok := escapeAmpersands(text); ok {
		text = escaped
		applied = append(applied, FixAmpersands)
	}

	if bareLessThan.MatchString(text) {
		text = bareLessThan.ReplaceAllString(text, "&lt;${1}")
		applied = append(applied, FixBareLessThan)
	}

	if truncatedClosingTag.MatchString(text) {
		text += ">"
		applied = append(applied, FixTruncatedClosing)
	}

	return text, applied
}

func escapeAmpersands(text string) (string, bool) {
	if !strings.Contains(text, "&") {
		return text, false
	}
	if ok, err := unescapedAmpersand.MatchString(text); err != nil || !ok {
		return text, false
	}
	escaped, err := unescapedAmpersand.Replace(text, "&amp;", -1, -1)
	if err != nil {
		return text, false
	}
	return escaped, true
}

// Describe returns a human readable label for a fix.
func (f Fix) Describe() string {
	switch f {
	case FixControlChars:
		return "removed illegal control characters"
	case FixAmpersands:
		return "escaped unescaped ampersands"
	case FixBareLessThan:
		return "escaped bare less-than signs"
	case FixTruncatedClosing:
		return "closed truncated closing tag"
	default:
		return string(f)
	}
}
