package repair

import (
	"context"
	"strings"

	"github.com/jonathan/xliff-fixer/internal/llm"
	"github.com/jonathan/xliff-fixer/internal/prompts"
	"github.com/jonathan/xliff-fixer/internal/types"
	"github.com/jonathan/xliff-fixer/internal/validation"
)

// AIRepairer asks a language model to rewrite a corrupted document.
type AIRepairer struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewAIRepairer creates an AIRepairer backed by client, using the advanced model tier.
func NewAIRepairer(client llm.Client) *AIRepairer {
	return &AIRepairer{client: client, tier: llm.TierAdvanced}
}

// WithTier returns a copy of the repairer that uses the given model tier.
func (a *AIRepairer) WithTier(tier llm.ModelTier) *AIRepairer {
	return &AIRepairer{client: a.client, tier: tier}
}

// Repair sends rawText to the model and validates whatever comes back.
// The result is always marked as modified since the content is newly generated.
// filename and parseErrors only enrich the prompt and may be empty.
func (a *AIRepairer) Repair(ctx context.Context, rawText, filename string, parseErrors []string) (types.RepairResult, error) {
	prompt, err := buildFixPrompt(rawText, filename, parseErrors)
	if err != nil {
		return types.RepairResult{}, &ProposeError{Message: "failed to build prompt", Cause: err}
	}

	responseText, err := a.client.GenerateContent(ctx, prompt, a.tier)
	if err != nil {
		return types.RepairResult{}, &ProposeError{Message: "failed to generate content", Cause: err}
	}

	fixed := llm.CleanCodeBlock(responseText)
	if fixed == "" {
		return types.RepairResult{}, &ProposeError{Message: "model returned an empty document"}
	}

	return types.NewRepairResult(fixed, validation.Validate(fixed), true, types.StrategyAI), nil
}

// RepairWithAI creates a client for apiKey, repairs rawText and releases the client.
func RepairWithAI(ctx context.Context, rawText, apiKey string, config *llm.Config) (types.RepairResult, error) {
	if apiKey == "" {
		return types.RepairResult{}, &ProposeError{Message: "AI repair unavailable", Cause: llm.ErrMissingAPIKey}
	}

	client, err := llm.NewClient(ctx, config, apiKey)
	if err != nil {
		return types.RepairResult{}, &ProposeError{Message: "failed to create LLM client", Cause: err}
	}
	defer func() { _ = client.Close() }()

	return NewAIRepairer(client).Repair(ctx, rawText, "", nil)
}

func buildFixPrompt(rawText, filename string, parseErrors []string) (string, error) {
	key := prompts.KeyFixXLIFF
	if len(parseErrors) > 0 {
		key = prompts.KeyFixXLIFFWithErrors
	}

	template, err := prompts.Get(key)
	if err != nil {
		return "", err
	}

	if filename == "" {
		filename = "untitled"
	}

	var errList strings.Builder
	for _, e := range parseErrors {
		errList.WriteString("- ")
		errList.WriteString(e)
		errList.WriteString("\n")
	}

	return prompts.Format(template, map[string]string{
		"Content":  rawText,
		"Filename": filename,
		"Errors":   strings.TrimSuffix(errList.String(), "\n"),
	}), nil
}
