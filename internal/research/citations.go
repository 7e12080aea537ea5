// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"strings"

	"github.com/pdiddy/deep-research/internal/ai"
	"github.com/pdiddy/deep-research/pkg/types"
)

// NormalizeCitationBrackets rewrites full-width citation brackets some models
// emit (【1】) to the ASCII [1] form downstream consumers parse.
func NormalizeCitationBrackets(text string) string {
	text = strings.ReplaceAll(text, "【", "[")
	text = strings.ReplaceAll(text, "】", "]")
	return text
}

// InjectGroundingMarkers anchors bracketed citation markers into text from
// provider grounding metadata. For each support whose segment text appears
// verbatim in text, a [n] marker per source index is inserted immediately
// after the segment. Segments with no exact match are skipped and counted;
// the count is surfaced so silent citation loss stays observable.
func InjectGroundingMarkers(text string, grounding []ai.GroundingSupport) (string, int) {
	skipped := 0
	for _, g := range grounding {
		if g.SegmentText == "" || len(g.SourceIndices) == 0 {
			continue
		}

		var marker strings.Builder
		for _, idx := range g.SourceIndices {
			fmt.Fprintf(&marker, "[%d]", idx+1)
		}

		pos := strings.Index(text, g.SegmentText)
		if pos < 0 {
			skipped++
			continue
		}
		end := pos + len(g.SegmentText)
		text = text[:end] + marker.String() + text[end:]
	}
	return text, skipped
}

// ImageBlock renders the trailing image block appended to learnings and
// reports: a horizontal rule followed by one markdown image per line.
// Empty input renders nothing.
func ImageBlock(images []types.ImageSource) string {
	if len(images) == 0 {
		return ""
	}
	lines := make([]string, 0, len(images))
	for _, img := range images {
		lines = append(lines, fmt.Sprintf("![%s](%s)", img.Description, img.URL))
	}
	return "\n\n---\n\n" + strings.Join(lines, "\n")
}

// ReferenceList renders the trailing numbered reference list in the
// link-definition form downstream parsers expect: [n]: url "title".
// Double quotes inside a title would break the form, so they are replaced
// with spaces; sources without a title get a bare [n]: url line.
func ReferenceList(sources []types.Source) string {
	if len(sources) == 0 {
		return ""
	}
	lines := make([]string, 0, len(sources))
	for i, s := range sources {
		line := fmt.Sprintf("[%d]: %s", i+1, s.URL)
		if s.Title != "" {
			line += fmt.Sprintf(" %q", strings.ReplaceAll(s.Title, `"`, " "))
		}
		lines = append(lines, line)
	}
	return "\n\n---\n\n" + strings.Join(lines, "\n")
}

// TitleFromReport derives a report title: the first non-empty line with
// markdown heading and emphasis markers stripped and whitespace trimmed.
func TitleFromReport(report string) string {
	for _, line := range strings.Split(report, "\n") {
		cleaned := strings.ReplaceAll(line, "#", "")
		cleaned = strings.ReplaceAll(cleaned, "*", "")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned != "" {
			return cleaned
		}
	}
	return ""
}
