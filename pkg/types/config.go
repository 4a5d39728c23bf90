// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "slr-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible servers.
	// Empty uses the default endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EmbeddingConfig holds settings for the embedding provider. The model must
// match the one used when a project's indexes were built; resources indexed
// under a different dimension are skipped at query time.
type EmbeddingConfig struct {
	AIConfig `yaml:",inline"`

	// Timeout bounds a single embedding request (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// IngestionConfig holds settings for the ingestion stage.
type IngestionConfig struct {
	// ProjectsDir is the base directory holding one subdirectory per project.
	ProjectsDir string `json:"projects_dir" yaml:"projects_dir"`

	// ChunkSize is the maximum chunk length in runes (default 4000).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`
}

// RetrievalConfig holds settings for evidence retrieval.
type RetrievalConfig struct {
	// TotalPassages is the maximum number of evidence notes per query (default 24).
	TotalPassages int `json:"total_passages" yaml:"total_passages"`

	// MaxPerDoc caps the notes drawn from one document (default 2).
	MaxPerDoc int `json:"max_per_doc" yaml:"max_per_doc"`

	// Trim is the hard character bound applied to each note's text (default 700).
	Trim int `json:"trim" yaml:"trim"`

	// ChatTopK is the passage count for the interactive chat path (default 5).
	ChatTopK int `json:"chat_top_k" yaml:"chat_top_k"`
}

// GenerationConfig holds settings for report generation.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// OutputDir is the directory for generated reports (e.g. "output/reports/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding"`
	Ingestion  IngestionConfig  `json:"ingestion" yaml:"ingestion"`
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
}
