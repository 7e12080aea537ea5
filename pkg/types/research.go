// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Source is a retrieved document reference. The URL is the uniqueness key:
// across one research run a URL appears at most once in a final source list,
// and the first occurrence's title and content win.
type Source struct {
	// URL locates the document and serves as the dedup key.
	URL string `json:"url" yaml:"url"`

	// Title is the document title, when the provider reports one.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Content is the retrieved text (abstract, snippet, or page extract).
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// ImageSource is a retrieved image reference, deduplicated by URL the same
// way as Source.
type ImageSource struct {
	// URL locates the image and serves as the dedup key.
	URL string `json:"url" yaml:"url"`

	// Description is the provider-supplied caption or alt text.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SearchTask pairs a search-engine-style query with the research goal it is
// meant to advance. Tasks are produced in batch by the query-generation stage
// and are immutable once created.
type SearchTask struct {
	// Query is the SERP query string.
	Query string `json:"query" yaml:"query"`

	// ResearchGoal states what the query should accomplish and which
	// follow-up directions it opens.
	ResearchGoal string `json:"researchGoal" yaml:"research_goal"`
}

// TaskState tracks a search task through the processing loop.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
)

// CompletedSearchTask records the outcome of processing one SearchTask:
// the synthesized learning plus the sources and images that informed it.
// Entries preserve the input task order.
type CompletedSearchTask struct {
	SearchTask `yaml:",inline"`

	// State is the terminal state of the task.
	State TaskState `json:"state" yaml:"state"`

	// Learning is the synthesized summary text, including any trailing
	// image block and numbered reference list.
	Learning string `json:"learning" yaml:"learning"`

	// Sources lists the documents retrieved for this task.
	Sources []Source `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Images lists the images retrieved for this task.
	Images []ImageSource `json:"images,omitempty" yaml:"images,omitempty"`
}

// FinalReportResult is the terminal artifact of a research run.
type FinalReportResult struct {
	// Title is the first non-empty line of the report with markdown
	// heading and emphasis markers stripped.
	Title string `json:"title" yaml:"title"`

	// FinalReport is the full report markdown, including citation markers
	// and the trailing reference list.
	FinalReport string `json:"finalReport" yaml:"final_report"`

	// Learnings holds each task's synthesized summary in task order.
	Learnings []string `json:"learnings" yaml:"learnings"`

	// Sources is the url-deduplicated source list across all tasks and
	// report generation; order is first-seen and drives citation numbers.
	Sources []Source `json:"sources" yaml:"sources"`

	// Images is the url-deduplicated image list across all tasks.
	Images []ImageSource `json:"images" yaml:"images"`
}
