package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// RepairRequest is the JSON body accepted by the repair endpoints.
type RepairRequest struct {
	Content  string `json:"content" validate:"required"`
	Filename string `json:"filename,omitempty" validate:"omitempty,max=255"`
	Strategy string `json:"strategy,omitempty" validate:"omitempty,oneof=heuristic ai"`
}

// ValidateRequest is the JSON body accepted by the validate endpoint.
type ValidateRequest struct {
	Content string `json:"content" validate:"required"`
}

// Validate validates the RepairRequest using the validator.
func (r *RepairRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ValidateRequest using the validator.
func (r *ValidateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// LogLevel classifies a LogEntry.
type LogLevel string

// Log levels shown alongside repair progress.
const (
	LogInfo    LogLevel = "info"
	LogSuccess LogLevel = "success"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// LogEntry is a single progress line emitted while a repair runs.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   LogLevel  `json:"level"`
	Message string    `json:"message"`
}
