// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "deep-research/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds settings for the AI text generation port.
type AIConfig struct {
	// Provider selects the AI adapter (e.g. "openai").
	Provider string `json:"provider" yaml:"provider"`

	// BaseURL overrides the provider's API endpoint (OpenAI-compatible
	// gateways, local inference servers). Empty uses the provider default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// ThinkingModel is used for planning and final report writing.
	ThinkingModel string `json:"thinking_model" yaml:"thinking_model"`

	// TaskModel is used for per-query synthesis.
	TaskModel string `json:"task_model" yaml:"task_model"`
}

// SearchConfig holds settings for the search provider port.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the search adapter: "model" (the AI performs
	// retrieval itself), "tavily", "pubmed", or "biomed" (fan-out across
	// the biomedical databases).
	Provider string `json:"provider" yaml:"provider"`

	// BaseURL overrides the provider endpoint. Empty uses the default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey is the authentication key for the search API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults caps the number of sources returned per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Scope is an optional category hint passed through to providers
	// (e.g. "pathway", "structure", "literature").
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`

	// InterBackendDelay is the delay between calls to different database
	// backends inside a fan-out provider (default 0).
	InterBackendDelay time.Duration `json:"inter_backend_delay" yaml:"inter_backend_delay"`
}

// ResearchConfig holds settings for the research orchestrator.
type ResearchConfig struct {
	// Language forces the response language. Empty lets the model mirror
	// the user's language.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// EnableCitationImage controls whether the final report embeds images
	// collected during research.
	EnableCitationImage bool `json:"enable_citation_image" yaml:"enable_citation_image"`

	// EnableReferences controls whether reports carry inline citation
	// markers and a numbered reference list.
	EnableReferences bool `json:"enable_references" yaml:"enable_references"`

	// Requirement is an optional free-form writing requirement forwarded
	// to the final report stage (tone, length, audience).
	Requirement string `json:"requirement,omitempty" yaml:"requirement,omitempty"`

	// OutputDir is the directory for stage handoff files and reports
	// (e.g. "output/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// TaskStoreConfig holds settings for the task record store.
type TaskStoreConfig struct {
	// DataDir is the directory holding the task database (contains tasks.db).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	AI        AIConfig        `json:"ai" yaml:"ai"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Research  ResearchConfig  `json:"research" yaml:"research"`
	TaskStore TaskStoreConfig `json:"task_store" yaml:"task_store"`
}
