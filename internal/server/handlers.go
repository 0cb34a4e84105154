package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/jonathan/xliff-fixer/internal/ingestion"
	"github.com/jonathan/xliff-fixer/internal/llm"
	"github.com/jonathan/xliff-fixer/internal/repair"
	"github.com/jonathan/xliff-fixer/internal/types"
	"github.com/jonathan/xliff-fixer/internal/validation"
	"github.com/rs/zerolog"
)

// multipartOverhead is the allowance for form boundaries and fields beyond the file itself.
const multipartOverhead = 64 * 1024

// RepairResponse is the body returned by /repair and the SSE result event.
type RepairResponse struct {
	types.RepairResult
	Filename     string `json:"filename,omitempty"`
	DownloadName string `json:"download_name"`
}

// repairInput is a parsed repair request, from either a JSON body or a multipart upload.
type repairInput struct {
	content  string
	filename string
	strategy types.Strategy
}

// parseRepairInput reads a repair request from a JSON body or a multipart form with fields file and strategy.
func (s *Server) parseRepairInput(w http.ResponseWriter, r *http.Request) (*repairInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.parseMultipart(w, r)
	}

	// JSON escaping can expand content up to six bytes per input byte
	r.Body = http.MaxBytesReader(w, r.Body, 6*s.maxUploadBytes+multipartOverhead)

	var req types.RepairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Filename != "" {
		if err := ingestion.CheckFilename(req.Filename); err != nil {
			return nil, err
		}
	}
	if int64(len(req.Content)) > s.maxUploadBytes {
		return nil, &ingestion.UploadError{
			Filename: req.Filename,
			Message:  fmt.Sprintf("exceeds %d bytes", s.maxUploadBytes),
			Cause:    ingestion.ErrFileTooLarge,
		}
	}

	strategy, _ := types.ParseStrategy(req.Strategy)
	return &repairInput{content: req.Content, filename: req.Filename, strategy: strategy}, nil
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) (*repairInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, &ErrValidation{Field: "body", Message: err.Error()}
	}

	in := &repairInput{}
	var haveFile bool
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return nil, err
			}
			return nil, &ErrValidation{Field: "body", Message: err.Error()}
		}

		switch part.FormName() {
		case "file":
			if err := ingestion.CheckFilename(part.FileName()); err != nil {
				return nil, err
			}
			content, meta, err := ingestion.ReadUpload(part, part.FileName(), s.maxUploadBytes)
			if err != nil {
				return nil, err
			}
			in.content = content
			in.filename = meta.Filename
			haveFile = true
		case "strategy":
			value, err := io.ReadAll(io.LimitReader(part, 64))
			if err != nil {
				return nil, &ErrValidation{Field: "strategy", Message: err.Error()}
			}
			strategy, ok := types.ParseStrategy(strings.TrimSpace(string(value)))
			if !ok {
				return nil, &ErrValidation{Field: "strategy", Message: "must be one of heuristic, ai"}
			}
			in.strategy = strategy
		}
		_ = part.Close()
	}

	if !haveFile {
		return nil, &ErrValidation{Field: "file", Message: "is required"}
	}
	if in.strategy == "" {
		in.strategy = types.StrategyHeuristic
	}
	return in, nil
}

// runRepair executes a parsed request and logs its outcome.
func (s *Server) runRepair(r *http.Request, in *repairInput, onLog func(types.LogEntry)) (types.RepairResult, error) {
	logger := zerolog.Ctx(r.Context())

	result, err := s.service.Repair(r.Context(), repair.Input{
		Content:  in.content,
		Filename: in.filename,
		Strategy: in.strategy,
		OnLog:    onLog,
	})
	if err != nil {
		logger.Warn().Err(err).Str("filename", in.filename).Str("strategy", string(in.strategy)).Msg("repair failed")
		return types.RepairResult{}, err
	}

	logger.Info().
		Str("filename", in.filename).
		Str("strategy", string(in.strategy)).
		Bool("modified", result.WasModified).
		Bool("valid", result.IsValid).
		Msg("repair completed")
	return result, nil
}

// prepare parses the request and applies the AI limit. It writes the error response and returns nil on failure.
// AI requests are charged to the AI bucket only when the service has credentials.
func (s *Server) prepare(w http.ResponseWriter, r *http.Request) *repairInput {
	in, err := s.parseRepairInput(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return nil
	}
	if in.strategy == types.StrategyAI {
		if !s.service.AIAvailable() {
			err := &repair.ProposeError{Message: "AI repair unavailable", Cause: llm.ErrMissingAPIKey}
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return nil
		}
		if !s.allowAI(w, r) {
			return nil
		}
	}
	return in
}

func newRepairResponse(in *repairInput, result types.RepairResult) RepairResponse {
	return RepairResponse{
		RepairResult: result,
		Filename:     in.filename,
		DownloadName: ingestion.FixedFilename(in.filename),
	}
}

// handleValidate reports whether the posted content is well-formed XML
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 6*s.maxUploadBytes+multipartOverhead)

	var req types.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, validation.Validate(req.Content))
}

// handleRepair repairs the posted document and returns the result as JSON
func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	in := s.prepare(w, r)
	if in == nil {
		return
	}

	result, err := s.runRepair(r, in, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, newRepairResponse(in, result))
}

// handleRepairDownload repairs the posted document and returns it as an XML attachment
func (s *Server) handleRepairDownload(w http.ResponseWriter, r *http.Request) {
	in := s.prepare(w, r)
	if in == nil {
		return
	}

	result, err := s.runRepair(r, in, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if !result.IsValid {
		s.jsonResponse(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "repaired file is not valid XML",
			"errors": result.Errors,
		})
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": ingestion.FixedFilename(in.filename),
	})
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, result.FixedContent); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write download")
	}
}

// handleRepairStream repairs the posted document and streams progress via SSE
func (s *Server) handleRepairStream(w http.ResponseWriter, r *http.Request) {
	in := s.prepare(w, r)
	if in == nil {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger := zerolog.Ctx(r.Context())
	onLog := func(entry types.LogEntry) {
		if err := sse.WriteLog(entry); err != nil {
			logger.Debug().Err(err).Msg("failed to write SSE log event")
		}
	}

	result, err := s.runRepair(r, in, onLog)
	if err != nil {
		sse.WriteError(HTTPStatus(err), err.Error())
		return
	}

	if err := sse.WriteResult(newRepairResponse(in, result)); err != nil {
		logger.Debug().Err(err).Msg("failed to write SSE result event")
	}
}
