// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai is the client for the text generation service: it takes
// role-tagged messages plus sampling parameters and returns generated text.
// The service itself is opaque; failures propagate to the caller as hard
// errors and abort the surrounding operation.
package genai

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Message is one role-tagged entry in a generation request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries a structured prompt and sampling parameters.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Backend executes a generation request. Implementations must honor the
// context for cancellation and timeout.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Error reports a failure from the generation service: a non-success
// status, unreachable endpoint, or malformed content where structure was
// required.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation service returned %d: %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("generation service: %v", e.Err)
	}
	return "generation service: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// backoffBase controls the base duration for exponential backoff between
// generation attempts. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// CompleteWithRetry calls the backend with bounded exponential backoff.
// Every attempt failure is retried; the last error is wrapped after the
// budget is spent. maxRetries <= 0 uses 3 attempts.
func CompleteWithRetry(ctx context.Context, backend Backend, req Request, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := backend.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
