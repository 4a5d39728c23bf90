// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/slr-engine/internal/httputil"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// defaultBaseURL is the chat completions endpoint base. Package-level var
// for test substitution.
var defaultBaseURL = "https://api.openai.com/v1"

// OpenAIBackend calls an OpenAI-compatible chat completions API.
type OpenAIBackend struct {
	APIKey  string
	BaseURL string
	Client  *http.Client

	// MaxRetries bounds the 429 backoff loop; 0 uses the httputil default.
	MaxRetries int
}

// NewOpenAIBackend builds a backend from config. The HTTP client carries
// the configured timeout so no generation call can hang unbounded.
func NewOpenAIBackend(cfg types.AIConfig, timeout time.Duration) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generation backend: API key is required")
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &OpenAIBackend{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Client:     &http.Client{Timeout: timeout},
		MaxRetries: cfg.MaxRetries,
	}, nil
}

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// chatResponse is the subset of the chat completions response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete posts the request and returns the first choice's content,
// trimmed. Non-200 statuses and empty choice lists become *Error.
func (b *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	base := b.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(base, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.APIKey)

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, b.MaxRetries)
	if err != nil {
		return "", &Error{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &Error{StatusCode: resp.StatusCode, Message: string(msg)}
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", &Error{Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(cResp.Choices) == 0 {
		return "", &Error{Message: "response contained no choices"}
	}

	return strings.TrimSpace(cResp.Choices[0].Message.Content), nil
}
