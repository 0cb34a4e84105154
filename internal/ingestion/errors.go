// Package ingestion reads localization files from disk or uploads and writes repaired output.
package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrFileTooLarge is returned when input exceeds MaxFileSize
	ErrFileTooLarge = errors.New("file too large")
	// ErrUnsupportedExtension is returned for files that are not .xlf, .xliff or .xml
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrNotText is returned when the input is not UTF-8 text
	ErrNotText = errors.New("file is not UTF-8 text")
)

// UploadError describes why an input file was rejected.
type UploadError struct {
	Filename string
	Message  string
	Cause    error
}

func (e *UploadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upload error: %s: %s: %v", e.Filename, e.Message, e.Cause)
	}
	return fmt.Sprintf("upload error: %s: %s", e.Filename, e.Message)
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}
