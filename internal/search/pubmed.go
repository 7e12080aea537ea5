// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

// eutilsAPIBase is the NCBI E-utilities endpoint. Declared as a var so tests
// can substitute an httptest server.
var eutilsAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMedBackend queries PubMed through the NCBI E-utilities: esearch for
// PMIDs, then esummary for titles and abstracts.
type PubMedBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *PubMedBackend) Name() string { return "pubmed" }

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// esummaryResponse carries the document summaries keyed by PMID. The "uids"
// member inside result lists them in rank order.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryDoc struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	PubDate string `json:"pubdate"`
}

// Search queries PubMed and returns one source per matching publication.
func (b *PubMedBackend) Search(ctx context.Context, query string, opts Options, cfg types.SearchConfig) ([]types.Source, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {fmt.Sprintf("%d", maxResults)},
		"retmode": {"json"},
	}
	if b.APIKey != "" {
		params.Set("api_key", b.APIKey)
	}

	var sr esearchResponse
	if err := b.getJSON(ctx, cfg, "/esearch.fcgi?"+params.Encode(), &sr); err != nil {
		return nil, err
	}
	pmids := sr.ESearchResult.IDList
	if len(pmids) == 0 {
		return nil, nil
	}

	sumParams := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"json"},
	}
	if b.APIKey != "" {
		sumParams.Set("api_key", b.APIKey)
	}

	var sum esummaryResponse
	if err := b.getJSON(ctx, cfg, "/esummary.fcgi?"+sumParams.Encode(), &sum); err != nil {
		return nil, err
	}

	var sources []types.Source
	for _, pmid := range pmids {
		raw, ok := sum.Result[pmid]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		content := doc.Title
		if doc.Source != "" || doc.PubDate != "" {
			content = fmt.Sprintf("%s\nJournal: %s\nPublished: %s\nPMID: %s", doc.Title, doc.Source, doc.PubDate, pmid)
		}
		sources = append(sources, types.Source{
			URL:     fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", pmid),
			Title:   doc.Title,
			Content: content,
		})
	}
	return sources, nil
}

func (b *PubMedBackend) getJSON(ctx context.Context, cfg types.SearchConfig, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, eutilsAPIBase+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return fmt.Errorf("E-utilities request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("E-utilities returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing E-utilities response: %w", err)
	}
	return nil
}
