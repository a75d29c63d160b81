package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// OpenAI talks to the OpenAI chat API or any OpenAI-compatible endpoint
// (Groq, Together, vLLM) selected via base URL.
type OpenAI struct {
	client *openai.LLM
}

// NewOpenAI builds an OpenAI-backed client. An empty baseURL targets the
// official API.
func NewOpenAI(model, baseURL, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("llm: openai: api key is not set")
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
	}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: openai: %w", err)
	}
	return &OpenAI{client: client}, nil
}

// Complete sends one system+user exchange and returns the completion text.
func (o *OpenAI) Complete(ctx context.Context, system, user string, opts ...CallOption) (string, error) {
	cfg := applyCallOptions(opts)
	resp, err := o.client.GenerateContent(ctx, promptMessages(system, user),
		llms.WithTemperature(cfg.temperature),
		llms.WithMaxTokens(cfg.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("llm: openai: %w", err)
	}
	return firstChoice(resp)
}

func promptMessages(system, user string) []llms.MessageContent {
	return []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(user)},
		},
	}
}

func firstChoice(resp *llms.ContentResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
