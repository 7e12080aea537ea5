// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

// tavilyAPIBase is the Tavily search endpoint. Declared as a var so tests
// can substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com/search"

// TavilyProvider queries the Tavily web search API, which returns page
// extracts and related images in one call.
type TavilyProvider struct {
	Client *http.Client
	Config types.SearchConfig
}

// Name returns the provider identifier.
func (p *TavilyProvider) Name() string { return "tavily" }

type tavilyRequest struct {
	Query         string `json:"query"`
	APIKey        string `json:"api_key"`
	MaxResults    int    `json:"max_results"`
	IncludeImages bool   `json:"include_images"`
	Topic         string `json:"topic,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
	Images []struct {
		URL         string `json:"url"`
		Description string `json:"description"`
	} `json:"images"`
}

// Search posts the query to Tavily and maps the response onto the unified
// result shape.
func (p *TavilyProvider) Search(ctx context.Context, query string, opts Options) (Result, error) {
	if p.Config.APIKey == "" {
		return Result{}, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("API key is missing")}
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	body, err := json.Marshal(tavilyRequest{
		Query:         query,
		APIKey:        p.Config.APIKey,
		MaxResults:    maxResults,
		IncludeImages: true,
		Topic:         opts.Scope,
	})
	if err != nil {
		return Result{}, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("marshaling request: %w", err)}
	}

	base := tavilyAPIBase
	if p.Config.BaseURL != "" {
		base = p.Config.BaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base, bytes.NewReader(body))
	if err != nil {
		return Result{}, &ProviderError{Provider: p.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", p.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return Result{}, &ProviderError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Result{}, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("parsing response: %w", err)}
	}

	var result Result
	for _, r := range tr.Results {
		result.Sources = append(result.Sources, types.Source{URL: r.URL, Title: r.Title, Content: r.Content})
	}
	for _, img := range tr.Images {
		result.Images = append(result.Images, types.ImageSource{URL: img.URL, Description: img.Description})
	}
	result.Sources = DedupSources(result.Sources)
	result.Images = DedupImages(result.Images)
	return result, nil
}
