// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stream separates visible answer text from inline reasoning in an
// incremental model output stream.
package stream

import "strings"

const (
	openTag  = "<think>"
	closeTag = "</think>"
)

// SinkFunc receives one routed chunk of text.
type SinkFunc func(text string)

// ThinkTagProcessor demultiplexes a token stream that may interleave visible
// text with reasoning delimited by <think>...</think> sentinels. It is
// resumable per chunk: a sentinel split across chunk boundaries is buffered
// until enough bytes arrive to decide, so no tag is missed and no byte is
// routed twice.
type ThinkTagProcessor struct {
	inside bool
	buf    strings.Builder
}

// NewThinkTagProcessor returns a processor in the outside-think state.
func NewThinkTagProcessor() *ThinkTagProcessor {
	return &ThinkTagProcessor{}
}

// Process routes one incoming chunk. Text outside think sentinels goes to
// visible, text inside goes to reasoning. Either sink may be nil, which
// drops that channel's text.
func (p *ThinkTagProcessor) Process(chunk string, visible, reasoning SinkFunc) {
	p.buf.WriteString(chunk)
	data := p.buf.String()
	p.buf.Reset()

	for data != "" {
		tag := closeTag
		sink := reasoning
		if !p.inside {
			tag = openTag
			sink = visible
		}

		idx := strings.Index(data, tag)
		if idx >= 0 {
			emit(sink, data[:idx])
			data = data[idx+len(tag):]
			p.inside = !p.inside
			continue
		}

		// No full sentinel. Hold back the longest suffix that could still
		// become one when the next chunk arrives; emit the rest.
		hold := partialTagSuffix(data, tag)
		emit(sink, data[:len(data)-hold])
		p.buf.WriteString(data[len(data)-hold:])
		return
	}
}

// End flushes any buffered text. An unterminated think block at stream end is
// routed to the visible sink rather than dropped.
func (p *ThinkTagProcessor) End(visible, reasoning SinkFunc) {
	rest := p.buf.String()
	p.buf.Reset()
	if rest == "" {
		return
	}
	if p.inside {
		// Held bytes inside an open think block can only be a partial
		// close tag; they belong to reasoning until proven otherwise,
		// but with the stream over we surface them as visible text.
		emit(visible, rest)
		return
	}
	emit(visible, rest)
}

// partialTagSuffix returns the length of the longest suffix of data that is
// a proper prefix of tag.
func partialTagSuffix(data, tag string) int {
	max := len(tag) - 1
	if max > len(data) {
		max = len(data)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(data, tag[:n]) {
			return n
		}
	}
	return 0
}

func emit(sink SinkFunc, text string) {
	if sink != nil && text != "" {
		sink(text)
	}
}
