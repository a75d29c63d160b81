package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const defaultImageEndpoint = "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-xl-base-1.0"

const (
	defaultImageRetries   = 3
	defaultImageRetryWait = 20 * time.Second
)

// ErrNoImageToken means no inference API token is configured; callers
// skip image generation instead of treating this as a failure.
var ErrNoImageToken = errors.New("content: image token not configured")

// ImageClient renders post images through a hosted diffusion model.
type ImageClient struct {
	token      string
	endpoint   string
	client     *http.Client
	maxRetries int
	retryWait  time.Duration
}

// ImageOption configures an ImageClient.
type ImageOption func(*ImageClient)

// WithImageEndpoint overrides the inference endpoint.
func WithImageEndpoint(url string) ImageOption {
	return func(ic *ImageClient) { ic.endpoint = url }
}

// WithImageHTTPClient overrides the HTTP client.
func WithImageHTTPClient(c *http.Client) ImageOption {
	return func(ic *ImageClient) { ic.client = c }
}

// WithImageRetryWait overrides the wait between model-loading retries.
func WithImageRetryWait(d time.Duration) ImageOption {
	return func(ic *ImageClient) { ic.retryWait = d }
}

// WithImageMaxRetries overrides the attempt budget.
func WithImageMaxRetries(n int) ImageOption {
	return func(ic *ImageClient) { ic.maxRetries = n }
}

// NewImageClient builds a client for the given API token.
func NewImageClient(token string, opts ...ImageOption) *ImageClient {
	ic := &ImageClient{
		token:      token,
		endpoint:   defaultImageEndpoint,
		client:     &http.Client{Timeout: 60 * time.Second},
		maxRetries: defaultImageRetries,
		retryWait:  defaultImageRetryWait,
	}
	for _, opt := range opts {
		opt(ic)
	}
	return ic
}

type imageRequest struct {
	Inputs string `json:"inputs"`
}

// Generate renders the prompt and writes the image bytes to outPath,
// returning the saved path. Hosted models answer 503 while they load,
// so those responses are retried after a wait.
func (ic *ImageClient) Generate(ctx context.Context, prompt, outPath string) (string, error) {
	if ic.token == "" {
		return "", ErrNoImageToken
	}

	enhanced := prompt + ", professional marketing image, high quality, clean design, product photography style, 4k"
	body, err := json.Marshal(imageRequest{Inputs: enhanced})
	if err != nil {
		return "", fmt.Errorf("content: encode image request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < ic.maxRetries; attempt++ {
		image, retry, err := ic.request(ctx, body)
		if err == nil {
			if err := saveImage(outPath, image); err != nil {
				return "", err
			}
			return outPath, nil
		}
		lastErr = err
		if !retry {
			return "", err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(ic.retryWait):
		}
	}
	return "", fmt.Errorf("content: image generation failed after %d attempts: %w", ic.maxRetries, lastErr)
}

func (ic *ImageClient) request(ctx context.Context, body []byte) (image []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ic.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("content: image request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+ic.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ic.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("content: image request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, false, fmt.Errorf("content: read image: %w", err)
		}
		return data, false, nil
	case http.StatusServiceUnavailable:
		return nil, true, errors.New("content: image model still loading")
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, false, fmt.Errorf("content: image generation failed: status %d: %s", resp.StatusCode, snippet)
	}
}

func saveImage(outPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("content: create image dir: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("content: save image: %w", err)
	}
	return nil
}
