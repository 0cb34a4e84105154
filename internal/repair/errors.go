// Package repair fixes structural corruption in XLIFF/XML localization files.
package repair

import "fmt"

// Error represents a general repair error
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repair error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("repair error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ProposeError represents a failure to obtain a candidate document from the LLM
// (missing credentials, client setup, transport or an empty answer).
type ProposeError struct {
	Message string
	Cause   error
}

func (e *ProposeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repair proposal error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("repair proposal error: %s", e.Message)
}

func (e *ProposeError) Unwrap() error {
	return e.Cause
}
