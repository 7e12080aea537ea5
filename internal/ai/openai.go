// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/deep-research/pkg/types"
)

const providerOpenAI = "openai"

// OpenAIGenerator adapts the OpenAI chat completion API (and compatible
// endpoints) to the Generator interface.
type OpenAIGenerator struct {
	client *openai.Client
}

// NewOpenAIGenerator builds an adapter for cfg. A non-empty cfg.BaseURL
// points the client at an OpenAI-compatible gateway or local server.
func NewOpenAIGenerator(cfg types.AIConfig, httpClient *http.Client) *OpenAIGenerator {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		c.HTTPClient = httpClient
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(c)}
}

// Generate performs a non-streaming completion and returns the text of the
// first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, chatRequest(systemPrompt, userPrompt, opts, false))
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty choice list")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream performs a streaming completion. Deltas are translated to
// the tagged event union; the returned cancel function closes the stream.
func (g *OpenAIGenerator) GenerateStream(ctx context.Context, systemPrompt, userPrompt string, opts Options) (<-chan StreamEvent, func(), error) {
	stream, err := g.client.CreateChatCompletionStream(ctx, chatRequest(systemPrompt, userPrompt, opts, true))
	if err != nil {
		return nil, nil, fmt.Errorf("openai stream: %w", err)
	}

	ch := make(chan StreamEvent, 32)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = stream.Close()
		})
	}

	go func() {
		defer close(ch)
		defer cancel()
		// Every send races against consumer abandonment; a bare send would
		// park this goroutine forever once the buffer fills.
		send := func(ev StreamEvent) bool {
			select {
			case ch <- ev:
				return true
			case <-done:
				return false
			case <-ctx.Done():
				return false
			}
		}
		for {
			resp, err := stream.Recv()
			if err != nil {
				meta := &FinishMeta{Provider: providerOpenAI}
				if !errors.Is(err, io.EOF) {
					meta.Err = err
				}
				send(StreamEvent{Kind: EventFinish, Finish: meta})
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta
			if delta.ReasoningContent != "" {
				if !send(StreamEvent{Kind: EventReasoning, Text: delta.ReasoningContent}) {
					return
				}
			}
			if delta.Content != "" {
				if !send(StreamEvent{Kind: EventTextDelta, Text: delta.Content}) {
					return
				}
			}
		}
	}()

	return ch, cancel, nil
}

// chatRequest builds the request shared by both call shapes. Retrieval-capable
// gateway models perform web search on their own when asked to in the prompt;
// the EnableWebSearch hint needs no request field here.
func chatRequest(systemPrompt, userPrompt string, opts Options, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:  opts.Model,
		Stream: stream,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
}
