// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/deep-research/pkg/types"
)

func testSearchConfig() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "deep-research-test/0.1",
		},
		MaxResults: 5,
	}
}

// --- Tavily ---

func TestTavilySearch(t *testing.T) {
	var captured tavilyRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"results": [
				{"title": "Result A", "url": "https://a.example", "content": "text a"},
				{"title": "Result B", "url": "https://b.example", "content": "text b"},
				{"title": "Dup of A", "url": "https://a.example", "content": "dup"}
			],
			"images": [
				{"url": "https://img.example/1.png", "description": "figure"}
			]
		}`)
	}))
	defer ts.Close()

	old := tavilyAPIBase
	tavilyAPIBase = ts.URL
	defer func() { tavilyAPIBase = old }()

	cfg := testSearchConfig()
	cfg.APIKey = "tvly-test"
	p := &TavilyProvider{Client: ts.Client(), Config: cfg}

	result, err := p.Search(context.Background(), "protein folding", Options{MaxResults: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if captured.Query != "protein folding" || captured.APIKey != "tvly-test" || captured.MaxResults != 3 {
		t.Errorf("request = %+v", captured)
	}
	if !captured.IncludeImages {
		t.Error("include_images should be set")
	}
	if len(result.Sources) != 2 {
		t.Fatalf("sources = %d, want 2 after url dedup", len(result.Sources))
	}
	if result.Sources[0].Title != "Result A" {
		t.Errorf("first source = %+v", result.Sources[0])
	}
	if len(result.Images) != 1 || result.Images[0].Description != "figure" {
		t.Errorf("images = %+v", result.Images)
	}
}

func TestTavilySearchMissingAPIKey(t *testing.T) {
	p := &TavilyProvider{Client: http.DefaultClient, Config: testSearchConfig()}
	_, err := p.Search(context.Background(), "anything", Options{})
	perr, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if perr.Provider != "tavily" {
		t.Errorf("provider = %q", perr.Provider)
	}
}

func TestTavilySearchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	old := tavilyAPIBase
	tavilyAPIBase = ts.URL
	defer func() { tavilyAPIBase = old }()

	cfg := testSearchConfig()
	cfg.APIKey = "tvly-test"
	p := &TavilyProvider{Client: ts.Client(), Config: cfg}

	_, err := p.Search(context.Background(), "anything", Options{})
	if _, ok := err.(*ProviderError); !ok {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
}

// --- PubMed ---

func TestPubMedSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "esearch"):
			if got := r.URL.Query().Get("term"); got != "TP53 apoptosis" {
				t.Errorf("term = %q", got)
			}
			if got := r.URL.Query().Get("retmax"); got != "2" {
				t.Errorf("retmax = %q", got)
			}
			fmt.Fprint(w, `{"esearchresult": {"idlist": ["111", "222"]}}`)
		case strings.Contains(r.URL.Path, "esummary"):
			if got := r.URL.Query().Get("id"); got != "111,222" {
				t.Errorf("id = %q", got)
			}
			fmt.Fprint(w, `{"result": {
				"uids": ["111", "222"],
				"111": {"title": "Paper One", "source": "Nature", "pubdate": "2024 Jan"},
				"222": {"title": "Paper Two", "source": "Cell", "pubdate": "2023 Jun"}
			}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	old := eutilsAPIBase
	eutilsAPIBase = ts.URL
	defer func() { eutilsAPIBase = old }()

	b := &PubMedBackend{Client: ts.Client()}
	sources, err := b.Search(context.Background(), "TP53 apoptosis", Options{MaxResults: 2}, testSearchConfig())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(sources))
	}
	if sources[0].URL != "https://pubmed.ncbi.nlm.nih.gov/111/" {
		t.Errorf("url = %q", sources[0].URL)
	}
	if sources[0].Title != "Paper One" {
		t.Errorf("title = %q", sources[0].Title)
	}
	if !strings.Contains(sources[0].Content, "Journal: Nature") || !strings.Contains(sources[0].Content, "PMID: 111") {
		t.Errorf("content = %q", sources[0].Content)
	}
}

func TestPubMedSearchNoHits(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"esearchresult": {"idlist": []}}`)
	}))
	defer ts.Close()

	old := eutilsAPIBase
	eutilsAPIBase = ts.URL
	defer func() { eutilsAPIBase = old }()

	b := &PubMedBackend{Client: ts.Client()}
	sources, err := b.Search(context.Background(), "zzz no such gene", Options{}, testSearchConfig())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if sources != nil {
		t.Errorf("sources = %+v, want none", sources)
	}
}

// --- UniProt ---

func TestUniProtSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "TP53" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": [{
			"primaryAccession": "P04637",
			"uniProtkbId": "P53_HUMAN",
			"proteinDescription": {"recommendedName": {"fullName": {"value": "Cellular tumor antigen p53"}}},
			"genes": [{"geneName": {"value": "TP53"}}],
			"organism": {"scientificName": "Homo sapiens"},
			"comments": [{"commentType": "FUNCTION", "texts": [{"value": "Acts as a tumor suppressor."}]}]
		}]}`)
	}))
	defer ts.Close()

	old := uniprotAPIBase
	uniprotAPIBase = ts.URL
	defer func() { uniprotAPIBase = old }()

	b := &UniProtBackend{Client: ts.Client()}
	sources, err := b.Search(context.Background(), "TP53", Options{}, testSearchConfig())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(sources) != 1 {
		t.Fatalf("sources = %d, want 1", len(sources))
	}
	s := sources[0]
	if s.URL != "https://www.uniprot.org/uniprotkb/P04637" {
		t.Errorf("url = %q", s.URL)
	}
	if s.Title != "Cellular tumor antigen p53" {
		t.Errorf("title = %q", s.Title)
	}
	for _, want := range []string{"Gene: TP53", "Organism: Homo sapiens", "Function: Acts as a tumor suppressor."} {
		if !strings.Contains(s.Content, want) {
			t.Errorf("content missing %q:\n%s", want, s.Content)
		}
	}
}

// --- KEGG ---

func TestKEGGSearch(t *testing.T) {
	var capturedPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		fmt.Fprint(w, "hsa:7157\tTP53, BCC7; tumor protein p53\nptr:455214\tTP53; tumor protein p53\n")
	}))
	defer ts.Close()

	old := keggAPIBase
	keggAPIBase = ts.URL
	defer func() { keggAPIBase = old }()

	b := &KEGGBackend{Client: ts.Client()}
	sources, err := b.Search(context.Background(), "TP53[Gene Name] AND human", Options{MaxResults: 2}, testSearchConfig())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if !strings.HasPrefix(capturedPath, "/find/genes/") {
		t.Errorf("path = %q, want /find/genes/ prefix", capturedPath)
	}
	if strings.Contains(capturedPath, "[") || strings.Contains(capturedPath, "AND") {
		t.Errorf("query qualifiers must be stripped: %q", capturedPath)
	}
	if len(sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(sources))
	}
	if sources[0].URL != "https://www.kegg.jp/entry/hsa:7157" {
		t.Errorf("url = %q", sources[0].URL)
	}
	if sources[0].Title != "TP53, BCC7; tumor protein p53" {
		t.Errorf("title = %q", sources[0].Title)
	}
}

func TestKEGGSearchPathwayScope(t *testing.T) {
	var capturedPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		fmt.Fprint(w, "map00010\tGlycolysis / Gluconeogenesis\n")
	}))
	defer ts.Close()

	old := keggAPIBase
	keggAPIBase = ts.URL
	defer func() { keggAPIBase = old }()

	b := &KEGGBackend{Client: ts.Client()}
	sources, err := b.Search(context.Background(), "glycolysis", Options{Scope: "pathway"}, testSearchConfig())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.HasPrefix(capturedPath, "/find/pathway/") {
		t.Errorf("path = %q, want /find/pathway/ prefix", capturedPath)
	}
	if len(sources) != 1 || sources[0].URL != "https://www.kegg.jp/entry/map00010" {
		t.Errorf("sources = %+v", sources)
	}
}

// --- Provider factory ---

func TestNewProvider(t *testing.T) {
	cfg := testSearchConfig()

	cfg.Provider = "tavily"
	p, err := NewProvider(cfg, nil)
	if err != nil || p.Name() != "tavily" {
		t.Errorf("tavily: p = %v, err = %v", p, err)
	}

	cfg.Provider = "biomed"
	p, err = NewProvider(cfg, nil)
	if err != nil || p.Name() != "biomed" {
		t.Errorf("biomed: p = %v, err = %v", p, err)
	}

	cfg.Provider = "bogus"
	if _, err = NewProvider(cfg, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}
