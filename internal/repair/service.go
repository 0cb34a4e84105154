package repair

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/xliff-fixer/internal/llm"
	"github.com/jonathan/xliff-fixer/internal/types"
	"github.com/jonathan/xliff-fixer/internal/validation"
)

// DefaultAITimeout bounds a single AI repair call.
const DefaultAITimeout = 120 * time.Second

// ClientFactory creates the LLM client used by the AI strategy.
type ClientFactory func(ctx context.Context, config *llm.Config, apiKey string) (llm.Client, error)

// Options configures a Service.
type Options struct {
	APIKey    string
	LLMConfig *llm.Config
	Tier      llm.ModelTier
	AITimeout time.Duration
	// NewClient defaults to a Gemini client wrapped in llm.ResilientClient.
	NewClient ClientFactory
}

// Input is a single document to repair.
type Input struct {
	Content  string
	Filename string
	Strategy types.Strategy
	// OnLog receives progress lines as the repair runs. May be nil.
	OnLog func(types.LogEntry)
}

// Service dispatches repairs to the heuristic or AI strategy.
// It holds no per-call state and is safe for concurrent use.
type Service struct {
	opts Options
}

// NewService creates a Service, filling unset options with defaults.
func NewService(opts Options) *Service {
	if opts.LLMConfig == nil {
		opts.LLMConfig = llm.DefaultConfig()
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierAdvanced
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = DefaultAITimeout
	}
	if opts.NewClient == nil {
		timeout := opts.AITimeout
		opts.NewClient = func(ctx context.Context, config *llm.Config, apiKey string) (llm.Client, error) {
			client, err := llm.NewClient(ctx, config, apiKey)
			if err != nil {
				return nil, err
			}
			return llm.NewResilientClientWithConfig(client, llm.ResilienceConfig{Timeout: timeout}), nil
		}
	}
	return &Service{opts: opts}
}

// AIAvailable reports whether the AI strategy has credentials.
func (s *Service) AIAvailable() bool {
	return s.opts.APIKey != ""
}

// Repair runs the requested strategy on in.Content.
// Only the AI strategy returns an error, when no candidate document could be produced.
func (s *Service) Repair(ctx context.Context, in Input) (types.RepairResult, error) {
	logf := func(level types.LogLevel, format string, args ...any) {
		if in.OnLog != nil {
			in.OnLog(types.LogEntry{Time: time.Now(), Level: level, Message: fmt.Sprintf(format, args...)})
		}
	}

	var (
		result types.RepairResult
		err    error
	)
	switch in.Strategy {
	case types.StrategyAI:
		result, err = s.repairWithAI(ctx, in, logf)
		if err != nil {
			logf(types.LogError, "AI repair failed: %v", err)
			return types.RepairResult{}, err
		}
	case types.StrategyHeuristic, "":
		result = s.repairHeuristic(in, logf)
	default:
		return types.RepairResult{}, &Error{Message: fmt.Sprintf("unknown repair strategy %q", in.Strategy)}
	}

	if result.IsValid {
		logf(types.LogSuccess, "Repaired file is valid XML")
	} else {
		logf(types.LogWarning, "Repaired file is still invalid: %s", strings.Join(result.Errors, "; "))
	}
	return result, nil
}

func (s *Service) repairHeuristic(in Input, logf func(types.LogLevel, string, ...any)) types.RepairResult {
	logf(types.LogInfo, "Starting heuristic repair of %s", displayName(in.Filename))

	result, applied := repairHeuristic(in.Content)
	if len(applied) == 0 {
		logf(types.LogInfo, "No heuristic fixes applied")
	}
	for _, fix := range applied {
		logf(types.LogInfo, "Fix applied: %s", fix.Describe())
	}
	return result
}

func (s *Service) repairWithAI(ctx context.Context, in Input, logf func(types.LogLevel, string, ...any)) (types.RepairResult, error) {
	if !s.AIAvailable() {
		return types.RepairResult{}, &ProposeError{Message: "AI repair unavailable", Cause: llm.ErrMissingAPIKey}
	}

	logf(types.LogInfo, "Starting AI repair of %s", displayName(in.Filename))

	original := validation.Validate(in.Content)

	ctx, cancel := context.WithTimeout(ctx, s.opts.AITimeout)
	defer cancel()

	client, err := s.opts.NewClient(ctx, s.opts.LLMConfig, s.opts.APIKey)
	if err != nil {
		return types.RepairResult{}, &ProposeError{Message: "failed to create LLM client", Cause: err}
	}
	defer func() { _ = client.Close() }()

	logf(types.LogInfo, "Sending document to %s", client.GetModel(s.opts.Tier))

	return NewAIRepairer(client).WithTier(s.opts.Tier).Repair(ctx, in.Content, in.Filename, original.Errors)
}

func displayName(filename string) string {
	if filename == "" {
		return "document"
	}
	return filename
}
