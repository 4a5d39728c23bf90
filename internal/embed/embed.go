// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed converts text into fixed-dimension embedding vectors.
// The vectors populate per-document indexes at ingestion time and embed
// incoming queries at retrieval time; both sides must use the same model.
package embed

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/slr-engine/pkg/types"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = openai.SmallEmbedding3

// Provider converts a text string into an embedding vector. Implementations
// must return vectors of a single fixed dimension for the lifetime of the
// provider.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Error reports a failure from the embedding provider: unreachable service,
// exhausted retries, or a malformed response. A retrieval call that hits one
// aborts with no partial results.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("embedding: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// backoffBase controls the base duration for exponential backoff between
// embedding attempts. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// OpenAIProvider is a Provider backed by the OpenAI embeddings API. It is
// constructed once and passed by reference; there is no hidden package
// state beyond the test backoff knob.
type OpenAIProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	timeout    time.Duration
	maxRetries int
}

// NewOpenAIProvider builds a provider from config. The API key is required;
// model, timeout, and retry count fall back to defaults.
func NewOpenAIProvider(cfg types.EmbeddingConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding provider: API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := openai.EmbeddingModel(cfg.Model)
	if cfg.Model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		timeout:    timeout,
		maxRetries: maxRetries,
	}, nil
}

// Embed returns the embedding vector for text. Transient failures are
// retried with exponential backoff up to the configured attempt count; each
// attempt carries its own timeout. All failures are reported as *Error.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return nil, &Error{Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		vec, err := p.embedOnce(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
	}

	return nil, &Error{Err: fmt.Errorf("after %d retries: %w", p.maxRetries, lastErr)}
}

func (p *OpenAIProvider) embedOnce(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: p.model,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings in response")
	}

	vec := resp.Data[0].Embedding
	if len(vec) == 0 {
		return nil, fmt.Errorf("empty embedding vector in response")
	}
	return vec, nil
}
