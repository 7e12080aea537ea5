// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

// EventKind tags a lifecycle event variant.
type EventKind string

const (
	// EventProgress marks a stage boundary or per-task transition.
	EventProgress EventKind = "progress"

	// EventMessage carries visible report text as it streams in.
	EventMessage EventKind = "message"

	// EventReasoning carries model reasoning text as it streams in.
	EventReasoning EventKind = "reasoning"

	// EventError carries the terminal failure message of a run.
	EventError EventKind = "error"
)

// Progress step identifiers.
const (
	StepReportPlan  = "report-plan"
	StepSERPQuery   = "serp-query"
	StepTaskList    = "task-list"
	StepSearchTask  = "search-task"
	StepFinalReport = "final-report"
)

// Progress status values.
const (
	StatusStart = "start"
	StatusEnd   = "end"
)

// Progress describes one stage boundary.
type Progress struct {
	// Step names the pipeline stage.
	Step string `json:"step"`

	// Status is "start" or "end".
	Status string `json:"status"`

	// Name identifies the item within a stage (the query of a search task).
	Name string `json:"name,omitempty"`

	// Data carries an optional stage payload (counts, derived artifacts).
	Data any `json:"data,omitempty"`
}

// Event is one lifecycle notification pushed to the run's event sink.
// Progress is set for EventProgress; Text for the other kinds.
type Event struct {
	Kind     EventKind `json:"event"`
	Progress *Progress `json:"progress,omitempty"`
	Text     string    `json:"text,omitempty"`
}

// EventSink receives lifecycle events for one run. Sinks must be fast and
// must not retain the event past the call; the engine calls them inline on
// its single flow of control.
type EventSink func(Event)

func (e *Engine) emitProgress(step, status, name string, data any) {
	if e.sink == nil {
		return
	}
	e.sink(Event{Kind: EventProgress, Progress: &Progress{Step: step, Status: status, Name: name, Data: data}})
}

func (e *Engine) emitMessage(text string) {
	if e.sink != nil && text != "" {
		e.sink(Event{Kind: EventMessage, Text: text})
	}
}

func (e *Engine) emitReasoning(text string) {
	if e.sink != nil && text != "" {
		e.sink(Event{Kind: EventReasoning, Text: text})
	}
}

func (e *Engine) emitError(text string) {
	if e.sink != nil {
		e.sink(Event{Kind: EventError, Text: text})
	}
}
