// Package llm wraps text-generation providers behind a single completion
// contract. Agents hand it a system instruction and a user prompt and get
// one completion string back; provider selection and transport live here.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tkaria/council/internal/config"
)

// ErrEmptyResponse is returned when a provider answers with no choices.
var ErrEmptyResponse = errors.New("llm: provider returned empty response")

// Client is the text-generation contract every agent depends on.
type Client interface {
	// Complete sends one system+user exchange and returns the completion
	// text. Callers decide how to handle failures; agents convert them
	// into sentinel text rather than propagating.
	Complete(ctx context.Context, system, user string, opts ...CallOption) (string, error)
}

// CallOption tunes a single completion request.
type CallOption func(*callConfig)

type callConfig struct {
	temperature float64
	maxTokens   int
}

// WithTemperature sets the sampling temperature for this call.
func WithTemperature(t float64) CallOption {
	return func(c *callConfig) {
		c.temperature = t
	}
}

// WithMaxTokens caps the completion length for this call.
func WithMaxTokens(n int) CallOption {
	return func(c *callConfig) {
		c.maxTokens = n
	}
}

func applyCallOptions(opts []CallOption) callConfig {
	cfg := callConfig{temperature: 0.7, maxTokens: 800}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// NewFromConfig constructs the provider named by the project configuration.
func NewFromConfig(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "openai":
		apiKey := ""
		if cfg.APIKeyEnv != "" {
			apiKey = os.Getenv(cfg.APIKeyEnv)
		}
		return NewOpenAI(cfg.Model, cfg.BaseURL, apiKey)
	case "ollama":
		return NewOllama(cfg.Model, cfg.BaseURL)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
