package llm

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// ResilienceConfig bounds retries and per-attempt duration of a ResilientClient.
type ResilienceConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

// DefaultResilienceConfig returns two attempts, a one second initial backoff and a 120s ceiling.
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		MaxAttempts: 2,
		RetryDelay:  time.Second,
		Timeout:     120 * time.Second,
	}
}

// ResilientClient wraps a Client with retry and timeout around GenerateContent.
type ResilientClient struct {
	inner  Client
	config ResilienceConfig
}

// NewResilientClient wraps inner with DefaultResilienceConfig.
func NewResilientClient(inner Client) *ResilientClient {
	return NewResilientClientWithConfig(inner, DefaultResilienceConfig())
}

// NewResilientClientWithConfig wraps inner; zero fields in cfg take their defaults.
func NewResilientClientWithConfig(inner Client, cfg ResilienceConfig) *ResilientClient {
	defaults := DefaultResilienceConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	return &ResilientClient{inner: inner, config: cfg}
}

// GenerateContent retries the wrapped call with exponential backoff inside an overall timeout.
func (c *ResilientClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	r := retry.New[string](retry.Config{
		MaxAttempts:   c.config.MaxAttempts,
		InitialDelay:  c.config.RetryDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[string](timeout.Config{
		DefaultTimeout: c.config.Timeout,
	})

	return t.Execute(ctx, c.config.Timeout, func(ctx context.Context) (string, error) {
		return r.Do(ctx, func(ctx context.Context) (string, error) {
			return c.inner.GenerateContent(ctx, prompt, tier)
		})
	})
}

// GetModel delegates to the wrapped client.
func (c *ResilientClient) GetModel(tier ModelTier) string {
	return c.inner.GetModel(tier)
}

// Close delegates to the wrapped client.
func (c *ResilientClient) Close() error {
	return c.inner.Close()
}
