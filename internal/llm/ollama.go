package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Ollama runs completions against a local Ollama server, for sessions that
// should not leave the machine.
type Ollama struct {
	client *ollama.LLM
}

// NewOllama builds an Ollama-backed client. An empty serverURL uses the
// Ollama default (http://localhost:11434).
func NewOllama(model, serverURL string) (*Ollama, error) {
	opts := []ollama.Option{}
	if model != "" {
		opts = append(opts, ollama.WithModel(model))
	}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: ollama: %w", err)
	}
	return &Ollama{client: client}, nil
}

// Complete sends one system+user exchange and returns the completion text.
func (o *Ollama) Complete(ctx context.Context, system, user string, opts ...CallOption) (string, error) {
	cfg := applyCallOptions(opts)
	resp, err := o.client.GenerateContent(ctx, promptMessages(system, user),
		llms.WithTemperature(cfg.temperature),
		llms.WithMaxTokens(cfg.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("llm: ollama: %w", err)
	}
	return firstChoice(resp)
}
