// Package validation checks XML documents for well-formedness.
package validation

import "fmt"

// Error represents a well-formedness failure detected outside the XML tokenizer.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("XML syntax error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("XML syntax error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
