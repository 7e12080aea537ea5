// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"strings"
	"testing"

	"github.com/pdiddy/deep-research/internal/ai"
	"github.com/pdiddy/deep-research/pkg/types"
)

func TestTitleFromReport(t *testing.T) {
	tests := []struct {
		name   string
		report string
		want   string
	}{
		{
			name:   "markdown heading",
			report: "# TP53 Gene Function Report\n\nBody text...",
			want:   "TP53 Gene Function Report",
		},
		{
			name:   "bold first line",
			report: "**A Survey of Kinases**\nBody",
			want:   "A Survey of Kinases",
		},
		{
			name:   "leading blank lines skipped",
			report: "\n\n  \n## Results\nBody",
			want:   "Results",
		},
		{
			name:   "plain first line",
			report: "Untitled notes\nmore",
			want:   "Untitled notes",
		},
		{
			name:   "empty report",
			report: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleFromReport(tt.report); got != tt.want {
				t.Errorf("TitleFromReport() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReferenceList(t *testing.T) {
	sources := []types.Source{
		{URL: "https://example.org/a", Title: "Paper A"},
		{URL: "https://example.org/b", Title: `He said "quoted"`},
		{URL: "https://example.org/c"},
	}

	got := ReferenceList(sources)

	if !strings.HasPrefix(got, "\n\n---\n\n") {
		t.Errorf("missing separator prefix: %q", got)
	}
	for _, want := range []string{
		`[1]: https://example.org/a "Paper A"`,
		`[2]: https://example.org/b "He said  quoted "`,
		`[3]: https://example.org/c`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("reference list missing %q in:\n%s", want, got)
		}
	}

	if ReferenceList(nil) != "" {
		t.Error("empty source list should render nothing")
	}
}

func TestImageBlock(t *testing.T) {
	images := []types.ImageSource{
		{URL: "https://example.org/fig1.png", Description: "Figure 1"},
		{URL: "https://example.org/fig2.png", Description: "Figure 2"},
	}

	got := ImageBlock(images)
	want := "\n\n---\n\n![Figure 1](https://example.org/fig1.png)\n![Figure 2](https://example.org/fig2.png)"
	if got != want {
		t.Errorf("ImageBlock() = %q, want %q", got, want)
	}

	if ImageBlock(nil) != "" {
		t.Error("empty image list should render nothing")
	}
}

func TestNormalizeCitationBrackets(t *testing.T) {
	got := NormalizeCitationBrackets("Protein folds in stages【1】【2】.")
	want := "Protein folds in stages[1][2]."
	if got != want {
		t.Errorf("NormalizeCitationBrackets() = %q, want %q", got, want)
	}
}

func TestInjectGroundingMarkers(t *testing.T) {
	text := "TP53 regulates apoptosis. It is mutated in many cancers."

	grounding := []ai.GroundingSupport{
		{SegmentText: "TP53 regulates apoptosis.", SourceIndices: []int{0}},
		{SegmentText: "It is mutated in many cancers.", SourceIndices: []int{1, 2}},
		{SegmentText: "this segment does not appear", SourceIndices: []int{0}},
		{SegmentText: "", SourceIndices: []int{0}},
	}

	got, skipped := InjectGroundingMarkers(text, grounding)

	want := "TP53 regulates apoptosis.[1] It is mutated in many cancers.[2][3]"
	if got != want {
		t.Errorf("InjectGroundingMarkers() = %q, want %q", got, want)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}

func TestInjectGroundingMarkersNoGrounding(t *testing.T) {
	text := "unchanged"
	got, skipped := InjectGroundingMarkers(text, nil)
	if got != text || skipped != 0 {
		t.Errorf("got %q skipped %d, want unchanged with 0 skips", got, skipped)
	}
}
