// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search retrieves sources and images for a query from external
// providers and merges heterogeneous database outputs into one shape.
package search

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Options carries per-call search parameters.
type Options struct {
	// MaxResults caps the number of sources returned (default 5).
	MaxResults int

	// Scope is an optional category hint ("pathway", "structure",
	// "literature"); backends that understand it narrow their search.
	Scope string
}

// Result is the unified output shape of every provider.
type Result struct {
	Sources []types.Source
	Images  []types.ImageSource
}

// Provider retrieves sources and images for one query. Implementations wrap
// a single external call or a fan-out across several databases; either way
// a failure surfaces as a *ProviderError.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) (Result, error)
}

// ProviderError is the single error type surfaced by search providers.
// The orchestrator does not distinguish sub-causes; they stay in Err.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s]: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Backend searches a single named database inside a fan-out provider.
// Each backend (PubMed, UniProt, KEGG) implements this interface per the
// Strategy pattern.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, opts Options, cfg types.SearchConfig) ([]types.Source, error)
}

// NewProvider builds the provider named by cfg.Provider. "model" is handled
// upstream by the orchestrator (the AI performs retrieval itself) and is not
// a valid name here.
func NewProvider(cfg types.SearchConfig, client *http.Client) (Provider, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	switch cfg.Provider {
	case "tavily":
		return &TavilyProvider{Client: client, Config: cfg}, nil
	case "pubmed":
		return &FanoutProvider{
			ProviderName: "pubmed",
			Backends:     []Backend{&PubMedBackend{Client: client}},
			Config:       cfg,
		}, nil
	case "biomed":
		return &FanoutProvider{
			ProviderName: "biomed",
			Backends: []Backend{
				&PubMedBackend{Client: client},
				&UniProtBackend{Client: client},
				&KEGGBackend{Client: client},
			},
			Config: cfg,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", cfg.Provider)
	}
}

// FanoutProvider queries several database backends concurrently and merges
// their outputs into one url-deduplicated result. Individual backend
// failures are tolerated; the provider fails only when every backend fails.
type FanoutProvider struct {
	ProviderName string
	Backends     []Backend
	Config       types.SearchConfig
}

// Name returns the provider identifier.
func (p *FanoutProvider) Name() string { return p.ProviderName }

// Search fans the query out to backends selected by the scope hint, waits
// for all of them, and merges results preserving backend declaration order
// so citation numbering is stable across reruns.
func (p *FanoutProvider) Search(ctx context.Context, query string, opts Options) (Result, error) {
	backends := p.selectBackends(opts.Scope)
	if len(backends) == 0 {
		return Result{}, &ProviderError{Provider: p.ProviderName, Err: fmt.Errorf("no backends configured")}
	}

	type backendResult struct {
		index   int
		sources []types.Source
		err     error
		name    string
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup

	for i, b := range backends {
		if i > 0 && p.Config.InterBackendDelay > 0 {
			select {
			case <-ctx.Done():
				return Result{}, &ProviderError{Provider: p.ProviderName, Err: ctx.Err()}
			case <-time.After(p.Config.InterBackendDelay):
			}
		}
		wg.Add(1)
		go func(i int, b Backend) {
			defer wg.Done()
			sources, err := b.Search(ctx, query, opts, p.Config)
			ch <- backendResult{index: i, sources: sources, err: err, name: b.Name()}
		}(i, b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	perBackend := make([][]types.Source, len(backends))
	var failures []string
	for br := range ch {
		if br.err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", br.name, br.err))
			continue
		}
		perBackend[br.index] = br.sources
	}

	if len(failures) == len(backends) {
		return Result{}, &ProviderError{
			Provider: p.ProviderName,
			Err:      fmt.Errorf("all backends failed: %v", failures),
		}
	}

	var all []types.Source
	for _, sources := range perBackend {
		all = append(all, sources...)
	}
	merged := DedupSources(all)

	max := opts.MaxResults
	if max <= 0 {
		max = 5
	}
	// The cap applies per backend count so one noisy database cannot
	// crowd out the rest entirely; the merged list is still bounded.
	if limit := max * len(backends); len(merged) > limit {
		merged = merged[:limit]
	}

	return Result{Sources: merged}, nil
}

// selectBackends narrows the fan-out by scope: pathway queries include KEGG
// first, structure and literature queries lean on PubMed. Unknown scopes use
// the full set.
func (p *FanoutProvider) selectBackends(scope string) []Backend {
	if scope == "" {
		return p.Backends
	}
	var preferred, rest []Backend
	for _, b := range p.Backends {
		if backendServesScope(b.Name(), scope) {
			preferred = append(preferred, b)
		} else {
			rest = append(rest, b)
		}
	}
	if len(preferred) == 0 {
		return p.Backends
	}
	return append(preferred, rest...)
}

// DedupSources removes url duplicates preserving first-seen order; the first
// occurrence's title and content win.
func DedupSources(sources []types.Source) []types.Source {
	seen := make(map[string]bool, len(sources))
	var out []types.Source
	for _, s := range sources {
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	return out
}

// DedupImages removes url duplicates preserving first-seen order.
func DedupImages(images []types.ImageSource) []types.ImageSource {
	seen := make(map[string]bool, len(images))
	var out []types.ImageSource
	for _, img := range images {
		if img.URL == "" || seen[img.URL] {
			continue
		}
		seen[img.URL] = true
		out = append(out, img)
	}
	return out
}
