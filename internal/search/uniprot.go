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

// uniprotAPIBase is the UniProtKB search endpoint. Declared as a var so
// tests can substitute an httptest server.
var uniprotAPIBase = "https://rest.uniprot.org/uniprotkb/search"

const uniprotFields = "accession,id,protein_name,gene_names,organism_name,cc_function"

// UniProtBackend queries the UniProtKB REST API for curated protein entries.
type UniProtBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *UniProtBackend) Name() string { return "uniprot" }

type uniprotResponse struct {
	Results []uniprotEntry `json:"results"`
}

type uniprotEntry struct {
	PrimaryAccession   string `json:"primaryAccession"`
	UniProtkbID        string `json:"uniProtkbId"`
	ProteinDescription struct {
		RecommendedName struct {
			FullName struct {
				Value string `json:"value"`
			} `json:"fullName"`
		} `json:"recommendedName"`
	} `json:"proteinDescription"`
	Genes []struct {
		GeneName struct {
			Value string `json:"value"`
		} `json:"geneName"`
	} `json:"genes"`
	Organism struct {
		ScientificName string `json:"scientificName"`
	} `json:"organism"`
	Comments []struct {
		CommentType string `json:"commentType"`
		Texts       []struct {
			Value string `json:"value"`
		} `json:"texts"`
	} `json:"comments"`
}

// Search queries UniProtKB and returns one source per protein entry, with
// the curated function comment as content.
func (b *UniProtBackend) Search(ctx context.Context, query string, opts Options, cfg types.SearchConfig) ([]types.Source, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{
		"query":  {query},
		"format": {"json"},
		"size":   {fmt.Sprintf("%d", maxResults)},
		"fields": {uniprotFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uniprotAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("UniProt API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("UniProt API returned HTTP %d", resp.StatusCode)
	}

	var ur uniprotResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("parsing UniProt response: %w", err)
	}

	var sources []types.Source
	for _, entry := range ur.Results {
		acc := entry.PrimaryAccession
		if acc == "" {
			acc = entry.UniProtkbID
		}
		if acc == "" {
			continue
		}
		sources = append(sources, types.Source{
			URL:     "https://www.uniprot.org/uniprotkb/" + acc,
			Title:   entry.ProteinDescription.RecommendedName.FullName.Value,
			Content: formatUniProtEntry(entry),
		})
	}
	return sources, nil
}

// formatUniProtEntry flattens the curated entry into the labeled text block
// embedded in synthesis prompts.
func formatUniProtEntry(e uniprotEntry) string {
	gene := ""
	if len(e.Genes) > 0 {
		gene = e.Genes[0].GeneName.Value
	}
	function := ""
	for _, c := range e.Comments {
		if c.CommentType == "FUNCTION" && len(c.Texts) > 0 {
			function = c.Texts[0].Value
			break
		}
	}
	lines := []string{
		"Protein: " + e.ProteinDescription.RecommendedName.FullName.Value,
		"Gene: " + gene,
		"Organism: " + e.Organism.ScientificName,
	}
	if function != "" {
		lines = append(lines, "Function: "+function)
	}
	return strings.Join(lines, "\n")
}
