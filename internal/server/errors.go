package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/xliff-fixer/internal/ingestion"
	"github.com/jonathan/xliff-fixer/internal/llm"
	"github.com/jonathan/xliff-fixer/internal/repair"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		maxBytesErr   *http.MaxBytesError
		uploadErr     *ingestion.UploadError
		validationErr *ErrValidation
		fieldErrs     validator.ValidationErrors
		proposeErr    *repair.ProposeError
		repairErr     *repair.Error
	)

	switch {
	case errors.As(err, &maxBytesErr), errors.Is(err, ingestion.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &uploadErr), errors.As(err, &validationErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.As(err, &proposeErr):
		return http.StatusBadGateway
	case errors.As(err, &repairErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
