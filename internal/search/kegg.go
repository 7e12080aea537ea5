// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

// keggAPIBase is the KEGG REST endpoint. Declared as a var so tests can
// substitute an httptest server.
var keggAPIBase = "https://rest.kegg.jp"

// KEGGBackend queries the KEGG REST API for gene and pathway entries. KEGG
// responds with tab-separated text, one entry per line.
type KEGGBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *KEGGBackend) Name() string { return "kegg" }

// Search runs a KEGG find query. Pathway-scoped queries search the pathway
// database, everything else searches genes.
func (b *KEGGBackend) Search(ctx context.Context, query string, opts Options, cfg types.SearchConfig) ([]types.Source, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	db := "genes"
	if opts.Scope == "pathway" {
		db = "pathway"
	}

	// KEGG find matches space-separated keywords; database syntax like
	// "TP53[Gene Name]" from other backends would match nothing.
	terms := sanitizeKEGGQuery(query)
	if terms == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/find/%s/%s", keggAPIBase, db, url.PathEscape(terms))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("KEGG API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("KEGG API returned HTTP %d", resp.StatusCode)
	}

	var sources []types.Source
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(sources) < maxResults {
		id, desc, ok := strings.Cut(scanner.Text(), "\t")
		if !ok || id == "" {
			continue
		}
		sources = append(sources, types.Source{
			URL:     "https://www.kegg.jp/entry/" + id,
			Title:   desc,
			Content: fmt.Sprintf("KEGG entry %s: %s", id, desc),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading KEGG response: %w", err)
	}
	return sources, nil
}

// sanitizeKEGGQuery strips database field qualifiers ("[Gene Name]") and
// boolean operators, leaving plain keywords.
func sanitizeKEGGQuery(query string) string {
	var b strings.Builder
	depth := 0
	for _, r := range query {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	var terms []string
	for _, f := range strings.Fields(b.String()) {
		switch strings.ToUpper(f) {
		case "AND", "OR", "NOT":
			continue
		}
		terms = append(terms, f)
	}
	return strings.Join(terms, " ")
}
