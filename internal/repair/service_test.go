package repair

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/xliff-fixer/internal/llm"
	"github.com/jonathan/xliff-fixer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(client *fakeClient, apiKey string) *Service {
	return NewService(Options{
		APIKey: apiKey,
		NewClient: func(_ context.Context, _ *llm.Config, _ string) (llm.Client, error) {
			return client, nil
		},
	})
}

func collectLogs(entries *[]types.LogEntry) func(types.LogEntry) {
	return func(entry types.LogEntry) {
		*entries = append(*entries, entry)
	}
}

func TestService_Heuristic(t *testing.T) {
	svc := newTestService(nil, "")
	var logs []types.LogEntry

	result, err := svc.Repair(context.Background(), Input{
		Content:  "<a>A & B</a>",
		Filename: "a.xlf",
		Strategy: types.StrategyHeuristic,
		OnLog:    collectLogs(&logs),
	})
	require.NoError(t, err)

	assert.Equal(t, "<a>A &amp; B</a>", result.FixedContent)
	assert.True(t, result.IsValid)
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0].Message, "a.xlf")
	assert.Equal(t, types.LogSuccess, logs[len(logs)-1].Level)
}

func TestService_DefaultStrategyIsHeuristic(t *testing.T) {
	svc := newTestService(nil, "")

	result, err := svc.Repair(context.Background(), Input{Content: "<a/>"})
	require.NoError(t, err)
	assert.Equal(t, types.StrategyHeuristic, result.Strategy)
	assert.False(t, result.WasModified)
}

func TestService_HeuristicMatchesRepair(t *testing.T) {
	svc := newTestService(nil, "")
	inputs := []string{"<a>&</a>", "<a>5 < 6</a", "\x01<a/>", "<a><b></a>"}

	for _, input := range inputs {
		got, err := svc.Repair(context.Background(), Input{Content: input})
		require.NoError(t, err)
		assert.Equal(t, Repair(input), got, "input %q", input)
	}
}

func TestService_InvalidResultLogsWarning(t *testing.T) {
	svc := newTestService(nil, "")
	var logs []types.LogEntry

	result, err := svc.Repair(context.Background(), Input{Content: "<a><b></a>", OnLog: collectLogs(&logs)})
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	assert.Equal(t, types.LogWarning, logs[len(logs)-1].Level)
}

func TestService_AI(t *testing.T) {
	client := &fakeClient{response: "<a>&amp;</a>"}
	svc := newTestService(client, "test-key")
	var logs []types.LogEntry

	result, err := svc.Repair(context.Background(), Input{
		Content:  "<a>&</a>",
		Strategy: types.StrategyAI,
		OnLog:    collectLogs(&logs),
	})
	require.NoError(t, err)

	assert.True(t, result.IsValid)
	assert.True(t, result.WasModified)
	assert.True(t, client.closed)
	// The original parse error is forwarded to the model
	assert.Contains(t, client.lastPrompt, "failed XML parsing")

	var sawModel bool
	for _, entry := range logs {
		if entry.Message == "Sending document to fake-advanced" {
			sawModel = true
		}
	}
	assert.True(t, sawModel)
}

func TestService_AIMissingKey(t *testing.T) {
	svc := newTestService(&fakeClient{}, "")
	assert.False(t, svc.AIAvailable())

	_, err := svc.Repair(context.Background(), Input{Content: "<a>", Strategy: types.StrategyAI})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrMissingAPIKey))
}

func TestService_AIClientFactoryError(t *testing.T) {
	svc := NewService(Options{
		APIKey: "test-key",
		NewClient: func(_ context.Context, _ *llm.Config, _ string) (llm.Client, error) {
			return nil, errors.New("dial failed")
		},
	})
	var logs []types.LogEntry

	_, err := svc.Repair(context.Background(), Input{Content: "<a>", Strategy: types.StrategyAI, OnLog: collectLogs(&logs)})
	require.Error(t, err)

	var proposeErr *ProposeError
	assert.True(t, errors.As(err, &proposeErr))
	assert.Equal(t, types.LogError, logs[len(logs)-1].Level)
}

func TestService_AITimeout(t *testing.T) {
	client := &fakeClient{response: "<a/>"}
	svc := NewService(Options{
		APIKey:    "test-key",
		AITimeout: time.Nanosecond,
		NewClient: func(_ context.Context, _ *llm.Config, _ string) (llm.Client, error) {
			time.Sleep(time.Millisecond)
			return client, nil
		},
	})

	_, err := svc.Repair(context.Background(), Input{Content: "<a>", Strategy: types.StrategyAI})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestService_UnknownStrategy(t *testing.T) {
	svc := newTestService(nil, "")

	_, err := svc.Repair(context.Background(), Input{Content: "<a/>", Strategy: "magic"})
	require.Error(t, err)

	var repairErr *Error
	assert.True(t, errors.As(err, &repairErr))
}
