// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research drives the end-to-end research pipeline: plan the report,
// generate search queries, retrieve and synthesize per-query learnings, and
// compose a final cited report. One Engine instance is scoped to exactly one
// run; it holds that run's accumulators and must not be shared across runs.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/deep-research/internal/ai"
	"github.com/pdiddy/deep-research/internal/prompt"
	"github.com/pdiddy/deep-research/internal/search"
	"github.com/pdiddy/deep-research/internal/stream"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Engine orchestrates one research run. Stages execute in strict sequence;
// within RunSearchTask, tasks run one at a time in input order so citation
// numbering stays stable and per-provider rate limits stay simple.
type Engine struct {
	cfg types.PipelineConfig
	gen ai.Generator

	// provider retrieves sources for search tasks. Nil selects model-driven
	// retrieval: the model's own search tool supplies sources via stream
	// events instead of an explicit search call.
	provider search.Provider

	// geneProvider, when set, replaces provider for runs classified as gene
	// research (typically the biomedical database fan-out).
	geneProvider search.Provider

	classifier prompt.Classifier
	sink       EventSink

	gene             bool
	skippedCitations int
}

// NewEngine builds an engine for one run. provider may be nil for
// model-driven retrieval; sink may be nil to discard lifecycle events.
func NewEngine(cfg types.PipelineConfig, gen ai.Generator, provider search.Provider, sink EventSink) *Engine {
	return &Engine{
		cfg:        cfg,
		gen:        gen,
		provider:   provider,
		classifier: prompt.NewGeneClassifier(),
		sink:       sink,
	}
}

// SetGeneProvider installs the provider used when a query classifies as
// gene research.
func (e *Engine) SetGeneProvider(p search.Provider) { e.geneProvider = p }

// SetClassifier replaces the gene-research routing policy.
func (e *Engine) SetClassifier(c prompt.Classifier) { e.classifier = c }

// SetGeneResearch forces the gene-research pipeline variant for individually
// invoked stages. Start overrides it from the classifier.
func (e *Engine) SetGeneResearch(v bool) { e.gene = v }

// SkippedCitations returns how many grounding segments failed to anchor a
// citation marker so far in this run.
func (e *Engine) SkippedCitations() int { return e.skippedCitations }

// Start runs the full pipeline for query: plan, search queries, the
// search-and-synthesize loop, and the final report. Gene-research queries
// are routed through the gene prompt variants and the gene provider. Any
// stage failure is reported once via an error event and returned; there is
// no partial result.
func (e *Engine) Start(ctx context.Context, query string) (*types.FinalReportResult, error) {
	e.gene = e.classifier.IsGeneResearchQuery(query)

	result, err := e.run(ctx, query)
	if err != nil {
		e.emitError(err.Error())
		return nil, err
	}
	return result, nil
}

func (e *Engine) run(ctx context.Context, query string) (*types.FinalReportResult, error) {
	plan, err := e.WriteReportPlan(ctx, query)
	if err != nil {
		return nil, err
	}

	tasks, err := e.GenerateSERPQuery(ctx, plan)
	if err != nil {
		return nil, err
	}

	completed, err := e.RunSearchTask(ctx, tasks, e.cfg.Research.EnableReferences)
	if err != nil {
		return nil, err
	}

	return e.WriteFinalReport(ctx, plan, completed,
		e.cfg.Research.EnableCitationImage, e.cfg.Research.EnableReferences)
}

// WriteReportPlan streams a section-by-section report plan for query from
// the thinking model, demuxing inline reasoning away from the plan text.
func (e *Engine) WriteReportPlan(ctx context.Context, query string) (string, error) {
	e.emitProgress(StepReportPlan, StatusStart, "", nil)

	user := prompt.ReportPlanPrompt(query)
	if e.gene {
		user = prompt.GeneReportPlanPrompt(query)
	}

	res, err := e.streamText(ctx, StepReportPlan, user, e.cfg.AI.ThinkingModel, ai.Options{})
	if err != nil {
		return "", err
	}

	e.emitProgress(StepReportPlan, StatusEnd, "", nil)
	return res.Text, nil
}

// GenerateSERPQuery turns a report plan into a validated list of search
// tasks. The model's response must be a JSON array of {query, researchGoal}
// objects; a malformed or off-schema response is surfaced, not retried.
func (e *Engine) GenerateSERPQuery(ctx context.Context, plan string) ([]types.SearchTask, error) {
	e.emitProgress(StepSERPQuery, StatusStart, "", nil)

	user := prompt.SERPQueriesPrompt(plan)
	if e.gene {
		user = prompt.GeneSERPQueriesPrompt(plan)
	}

	text, err := e.gen.Generate(ctx, e.systemPrompt(), user, ai.Options{Model: e.cfg.AI.ThinkingModel})
	if err != nil {
		return nil, stageError(ctx, StepSERPQuery, err)
	}

	tasks, err := prompt.ParseSERPQueries(stripThink(text))
	if err != nil {
		return nil, err
	}

	e.emitProgress(StepSERPQuery, StatusEnd, "", len(tasks))
	return tasks, nil
}

// RunSearchTask processes tasks sequentially in input order. A failing
// search provider aborts the whole batch; remaining tasks are not attempted.
// Each completed task carries its synthesized learning with a trailing image
// block and numbered source list when retrieval produced any.
func (e *Engine) RunSearchTask(ctx context.Context, tasks []types.SearchTask, enableReferences bool) ([]types.CompletedSearchTask, error) {
	e.emitProgress(StepTaskList, StatusStart, "", nil)

	completed := make([]types.CompletedSearchTask, 0, len(tasks))
	for _, t := range tasks {
		e.emitProgress(StepSearchTask, StatusStart, t.Query, nil)

		done, err := e.runOneTask(ctx, t, enableReferences)
		if err != nil {
			return nil, err
		}
		completed = append(completed, done)

		e.emitProgress(StepSearchTask, StatusEnd, t.Query, nil)
	}

	e.emitProgress(StepTaskList, StatusEnd, "", len(completed))
	return completed, nil
}

func (e *Engine) runOneTask(ctx context.Context, t types.SearchTask, enableReferences bool) (types.CompletedSearchTask, error) {
	var (
		res     streamResult
		sources []types.Source
		images  []types.ImageSource
		err     error
	)

	if provider := e.activeProvider(); provider == nil {
		res, err = e.streamText(ctx, StepSearchTask,
			prompt.DirectSearchPrompt(t.Query, t.ResearchGoal), e.cfg.AI.TaskModel,
			ai.Options{EnableWebSearch: true, MaxSearchResults: e.cfg.Search.MaxResults})
		if err != nil {
			return types.CompletedSearchTask{}, err
		}
		sources = search.DedupSources(res.Sources)
	} else {
		found, serr := provider.Search(ctx, t.Query, search.Options{
			MaxResults: e.cfg.Search.MaxResults,
			Scope:      e.searchScope(t.Query),
		})
		if serr != nil {
			if ctx.Err() != nil {
				return types.CompletedSearchTask{}, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
			}
			return types.CompletedSearchTask{}, serr
		}
		sources = found.Sources
		images = found.Images

		user := prompt.SearchResultPrompt(t.Query, t.ResearchGoal, sources, enableReferences)
		if e.gene {
			user = prompt.GeneSearchResultPrompt(t.Query, t.ResearchGoal, sources, enableReferences)
		}
		res, err = e.streamText(ctx, StepSearchTask, user, e.cfg.AI.TaskModel, ai.Options{})
		if err != nil {
			return types.CompletedSearchTask{}, err
		}
		sources = search.DedupSources(append(sources, res.Sources...))
	}

	learning, skipped := InjectGroundingMarkers(res.Text, res.Grounding)
	e.skippedCitations += skipped
	learning += ImageBlock(images)
	learning += ReferenceList(sources)

	return types.CompletedSearchTask{
		SearchTask: t,
		State:      types.TaskCompleted,
		Learning:   learning,
		Sources:    sources,
		Images:     images,
	}, nil
}

// WriteFinalReport composes the terminal report from the accumulated tasks.
// Sources and images are deduplicated by url across all tasks before they
// enter the prompt, first occurrence winning, so citation numbers are stable
// across report regenerations.
func (e *Engine) WriteFinalReport(ctx context.Context, plan string, tasks []types.CompletedSearchTask, enableCitationImage, enableReferences bool) (*types.FinalReportResult, error) {
	learnings := make([]string, 0, len(tasks))
	var allSources []types.Source
	var allImages []types.ImageSource
	for _, t := range tasks {
		learnings = append(learnings, t.Learning)
		allSources = append(allSources, t.Sources...)
		allImages = append(allImages, t.Images...)
	}
	sources := search.DedupSources(allSources)
	images := search.DedupImages(allImages)

	e.emitProgress(StepFinalReport, StatusStart, "", nil)

	in := prompt.FinalReportInput{
		Plan:                plan,
		Learnings:           learnings,
		Sources:             sources,
		Images:              images,
		Requirement:         e.cfg.Research.Requirement,
		EnableCitationImage: enableCitationImage,
		EnableReferences:    enableReferences,
	}
	user := prompt.FinalReportPrompt(in)
	if e.gene {
		user = prompt.GeneFinalReportPrompt(in)
	}

	res, err := e.streamText(ctx, StepFinalReport, user, e.cfg.AI.ThinkingModel, ai.Options{})
	if err != nil {
		return nil, err
	}

	report, skipped := InjectGroundingMarkers(res.Text, res.Grounding)
	e.skippedCitations += skipped

	// Sources surfaced by the model during report generation join the list
	// behind the accumulated ones, keeping established citation numbers.
	// enableReferences shapes the prompt only; the trailing list renders
	// whenever any sources exist so the [n] markers stay resolvable.
	sources = search.DedupSources(append(sources, res.Sources...))
	report += ReferenceList(sources)

	result := &types.FinalReportResult{
		Title:       TitleFromReport(report),
		FinalReport: report,
		Learnings:   learnings,
		Sources:     sources,
		Images:      images,
	}

	e.emitProgress(StepFinalReport, StatusEnd, "", map[string]int{
		"skipped_citations": e.skippedCitations,
	})
	return result, nil
}

// streamResult is the accumulated outcome of one streaming generation.
type streamResult struct {
	Text      string
	Sources   []types.Source
	Grounding []ai.GroundingSupport
}

// streamText runs one streaming generation, demuxes think tags, forwards
// message and reasoning events, and accumulates visible text, stream-surfaced
// sources, and grounding metadata.
func (e *Engine) streamText(ctx context.Context, stage, userPrompt, model string, opts ai.Options) (streamResult, error) {
	opts.Model = model
	events, cancel, err := e.gen.GenerateStream(ctx, e.systemPrompt(), userPrompt, opts)
	if err != nil {
		return streamResult{}, stageError(ctx, stage, err)
	}
	defer cancel()

	var res streamResult
	var visible strings.Builder
	proc := stream.NewThinkTagProcessor()
	visSink := func(text string) {
		visible.WriteString(text)
		e.emitMessage(text)
	}
	reaSink := func(text string) { e.emitReasoning(text) }

	var finish *ai.FinishMeta
loop:
	for {
		select {
		case <-ctx.Done():
			cancel()
			return streamResult{}, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			switch ev.Kind {
			case ai.EventTextDelta:
				proc.Process(ev.Text, visSink, reaSink)
			case ai.EventReasoning:
				reaSink(ev.Text)
			case ai.EventSource:
				res.Sources = append(res.Sources, ev.Source)
			case ai.EventFinish:
				finish = ev.Finish
			}
		}
	}
	proc.End(visSink, reaSink)

	if finish != nil && finish.Err != nil {
		return streamResult{}, stageError(ctx, stage, finish.Err)
	}

	res.Text = visible.String()
	if finish != nil {
		res.Grounding = finish.Grounding
		if finish.Provider == "openai" {
			res.Text = NormalizeCitationBrackets(res.Text)
		}
	}
	if res.Text == "" {
		return streamResult{}, stageError(ctx, stage, errors.New("empty response"))
	}
	return res, nil
}

// systemPrompt returns the run's system instruction with the response
// language pinned.
func (e *Engine) systemPrompt() string {
	base := prompt.SystemPrompt()
	if e.gene {
		base = prompt.GeneSystemPrompt()
	}
	return base + "\n\n" + prompt.ResponseLanguagePrompt(e.cfg.Research.Language)
}

func (e *Engine) activeProvider() search.Provider {
	if e.gene && e.geneProvider != nil {
		return e.geneProvider
	}
	return e.provider
}

// searchScope picks the category hint for one task: gene runs derive it per
// query, general runs use the configured scope.
func (e *Engine) searchScope(query string) string {
	if e.gene {
		return prompt.QueryScope(query)
	}
	return e.cfg.Search.Scope
}

// stripThink removes terminated think-tag regions from a complete response.
func stripThink(text string) string {
	var b strings.Builder
	keep := func(s string) { b.WriteString(s) }
	p := stream.NewThinkTagProcessor()
	p.Process(text, keep, nil)
	p.End(keep, nil)
	return b.String()
}
