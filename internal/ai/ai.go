// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai abstracts text generation providers behind a small capability
// interface: streaming and one-shot completion from a system prompt and a
// user prompt. Provider adapters are selected by name at construction time;
// nothing outside this package inspects provider-specific response shapes.
package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/deep-research/pkg/types"
)

// EventKind tags a stream event variant.
type EventKind int

const (
	// EventTextDelta carries a fragment of visible answer text.
	EventTextDelta EventKind = iota

	// EventReasoning carries a fragment of model reasoning text.
	EventReasoning

	// EventSource carries a source reference surfaced by the provider's
	// built-in retrieval tool.
	EventSource

	// EventFinish closes the stream and carries provider metadata.
	EventFinish
)

// StreamEvent is one element of a generation stream. Exactly one payload
// field is meaningful per Kind; consumers switch on Kind exhaustively.
type StreamEvent struct {
	Kind   EventKind
	Text   string       // EventTextDelta, EventReasoning
	Source types.Source // EventSource
	Finish *FinishMeta  // EventFinish
}

// FinishMeta is the completion payload of a stream.
type FinishMeta struct {
	// Provider is the adapter name that produced the stream.
	Provider string

	// Grounding maps generated text segments to the source indices that
	// informed them, when the provider reports such metadata.
	Grounding []GroundingSupport

	// Err is the terminal error, nil on clean completion.
	Err error
}

// GroundingSupport associates one generated text segment with sources.
type GroundingSupport struct {
	// SegmentText is the exact segment as reported by the provider.
	SegmentText string

	// SourceIndices are zero-based indices into the accumulated source
	// list for this generation.
	SourceIndices []int
}

// Options configures one generation call.
type Options struct {
	// Model is the model identifier for this call.
	Model string

	// EnableWebSearch asks the provider to use its built-in retrieval
	// tool, if it has one. Adapters without one ignore this.
	EnableWebSearch bool

	// MaxSearchResults hints how much retrieved context the provider
	// tool should gather.
	MaxSearchResults int
}

// Generator produces text from prompts. GenerateStream returns an event
// channel and a cancel function that releases the underlying connection;
// the channel is closed after the EventFinish event. Generate is the
// non-streaming variant used for structured JSON outputs.
type Generator interface {
	GenerateStream(ctx context.Context, systemPrompt, userPrompt string, opts Options) (<-chan StreamEvent, func(), error)
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error)
}

// NewGenerator builds the adapter named by cfg.Provider. An empty provider
// defaults to "openai", which also serves OpenAI-compatible endpoints via
// cfg.BaseURL.
func NewGenerator(cfg types.AIConfig, client *http.Client) (Generator, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIGenerator(cfg, client), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
