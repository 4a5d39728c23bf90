// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan drafts the protocol stage of a review: a focused objective
// statement and a numbered research question list for a topic.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/slr-engine/internal/genai"
	"github.com/pdiddy/slr-engine/pkg/types"
)

const (
	planTemperature = 0.7

	minQuestions = 5
	maxQuestions = 7
)

const objectivePrompt = `You are an expert researcher planning a systematic literature review on the topic below.

Topic: %s

Write a single focused objective statement for the review, one or two sentences, starting with "The objective of this review is". Return only the objective text.`

const questionsPrompt = `You are an expert researcher planning a systematic literature review.

Objective: %s

Propose between %d and %d research questions that together cover the objective. For each question give a short purpose explaining what answering it contributes to the review.

Return ONLY a JSON array, no prose and no code fences, where each element is an object with exactly two string fields: "question" and "purpose".`

// Objective asks the generation service for a review objective on topic.
func Objective(ctx context.Context, backend genai.Backend, model, topic string, maxRetries int) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("topic is empty")
	}

	text, err := genai.CompleteWithRetry(ctx, backend, genai.Request{
		Model: model,
		Messages: []genai.Message{
			{Role: "user", Content: fmt.Sprintf(objectivePrompt, topic)},
		},
		Temperature: planTemperature,
	}, maxRetries)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// responseItem is one question as returned by the generation service.
type responseItem struct {
	Question string `json:"question"`
	Purpose  string `json:"purpose"`
}

// Questions asks the generation service for a research question list
// covering objective and validates the response shape.
func Questions(ctx context.Context, backend genai.Backend, model, objective string, maxRetries int) (*types.QuestionsFile, error) {
	if strings.TrimSpace(objective) == "" {
		return nil, fmt.Errorf("objective is empty")
	}

	text, err := genai.CompleteWithRetry(ctx, backend, genai.Request{
		Model: model,
		Messages: []genai.Message{
			{Role: "user", Content: fmt.Sprintf(questionsPrompt, objective, minQuestions, maxQuestions)},
		},
		Temperature: planTemperature,
	}, maxRetries)
	if err != nil {
		return nil, err
	}

	items, err := parseQuestions(text)
	if err != nil {
		return nil, err
	}

	qf := &types.QuestionsFile{Objective: objective}
	for _, item := range items {
		qf.ResearchQuestions = append(qf.ResearchQuestions, types.ResearchQuestion{
			Question: item.Question,
			Purpose:  item.Purpose,
		})
	}
	return qf, nil
}

// parseQuestions decodes and validates the question array. Models
// sometimes wrap JSON in code fences despite instructions, so fences are
// stripped before decoding.
func parseQuestions(text string) ([]responseItem, error) {
	text = stripFences(text)

	var items []responseItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("parsing question list: %w", err)
	}

	var errors []string
	for i, item := range items {
		if strings.TrimSpace(item.Question) == "" {
			errors = append(errors, fmt.Sprintf("item %d: empty question", i))
		}
		if strings.TrimSpace(item.Purpose) == "" {
			errors = append(errors, fmt.Sprintf("item %d: empty purpose", i))
		}
	}
	if len(errors) > 0 {
		return nil, fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	if len(items) < minQuestions || len(items) > maxQuestions {
		return nil, fmt.Errorf("got %d questions, want between %d and %d", len(items), minQuestions, maxQuestions)
	}
	return items, nil
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
