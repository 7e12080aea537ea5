// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stream

import (
	"strings"
	"testing"
)

// feed runs the chunk sequence through a fresh processor and returns the
// concatenated visible and reasoning output.
func feed(chunks []string) (visible, reasoning string) {
	p := NewThinkTagProcessor()
	var vis, rea strings.Builder
	for _, c := range chunks {
		p.Process(c, func(s string) { vis.WriteString(s) }, func(s string) { rea.WriteString(s) })
	}
	p.End(func(s string) { vis.WriteString(s) }, func(s string) { rea.WriteString(s) })
	return vis.String(), rea.String()
}

func TestDemuxTagSplitAcrossChunks(t *testing.T) {
	vis, rea := feed([]string{"<thi", "nk>reasoning text</th", "ink>visible text"})
	if rea != "reasoning text" {
		t.Errorf("reasoning = %q, want %q", rea, "reasoning text")
	}
	if vis != "visible text" {
		t.Errorf("visible = %q, want %q", vis, "visible text")
	}
}

func TestDemuxNoTags(t *testing.T) {
	vis, rea := feed([]string{"plain ", "answer"})
	if vis != "plain answer" {
		t.Errorf("visible = %q, want %q", vis, "plain answer")
	}
	if rea != "" {
		t.Errorf("reasoning = %q, want empty", rea)
	}
}

func TestDemuxMultipleBlocks(t *testing.T) {
	vis, rea := feed([]string{"a<think>x</think>b<think>y</think>c"})
	if vis != "abc" {
		t.Errorf("visible = %q, want %q", vis, "abc")
	}
	if rea != "xy" {
		t.Errorf("reasoning = %q, want %q", rea, "xy")
	}
}

func TestDemuxOneBytePerChunk(t *testing.T) {
	input := "start<think>hidden plan</think>end"
	var chunks []string
	for _, r := range input {
		chunks = append(chunks, string(r))
	}
	vis, rea := feed(chunks)
	if vis != "startend" {
		t.Errorf("visible = %q, want %q", vis, "startend")
	}
	if rea != "hidden plan" {
		t.Errorf("reasoning = %q, want %q", rea, "hidden plan")
	}
}

func TestDemuxUnterminatedThinkFlushesVisible(t *testing.T) {
	vis, rea := feed([]string{"answer<think>trailing reasoning</th"})
	if rea != "trailing reasoning" {
		t.Errorf("reasoning = %q, want %q", rea, "trailing reasoning")
	}
	// The partial close tag held in the buffer is flushed to visible at End.
	if vis != "answer</th" {
		t.Errorf("visible = %q, want %q", vis, "answer</th")
	}
}

func TestDemuxFalseTagPrefix(t *testing.T) {
	// "<thin ice" starts like an open tag but never completes one.
	vis, rea := feed([]string{"<thin", " ice"})
	if vis != "<thin ice" {
		t.Errorf("visible = %q, want %q", vis, "<thin ice")
	}
	if rea != "" {
		t.Errorf("reasoning = %q, want empty", rea)
	}
}

func TestDemuxNoByteLostOrDuplicated(t *testing.T) {
	input := "aa<think>bb</think>cc<think>dd</think>ee"
	for size := 1; size <= len(input); size++ {
		var chunks []string
		for i := 0; i < len(input); i += size {
			end := i + size
			if end > len(input) {
				end = len(input)
			}
			chunks = append(chunks, input[i:end])
		}
		vis, rea := feed(chunks)
		if vis != "aaccee" {
			t.Fatalf("chunk size %d: visible = %q, want %q", size, vis, "aaccee")
		}
		if rea != "bbdd" {
			t.Fatalf("chunk size %d: reasoning = %q, want %q", size, rea, "bbdd")
		}
	}
}
