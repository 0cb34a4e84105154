package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/xliff-fixer/internal/types"
)

// SSE event names sent by /repair/stream.
const (
	eventLog    = "log"
	eventResult = "result"
	eventError  = "error"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteLog sends a repair progress line
func (s *SSEWriter) WriteLog(entry types.LogEntry) error {
	return s.WriteEvent(eventLog, entry)
}

// WriteResult sends the final repair result
func (s *SSEWriter) WriteResult(result RepairResponse) error {
	return s.WriteEvent(eventResult, result)
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(status int, message string) {
	s.WriteEvent(eventError, map[string]any{"error": message, "status": status}) //nolint:errcheck
}
