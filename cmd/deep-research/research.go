// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/research"
	"github.com/pdiddy/deep-research/internal/task"
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Run the full research pipeline for a query",
	Long: `Research runs every pipeline stage in sequence: report planning, search
query generation, per-query retrieval and synthesis, and final report
composition. The report is written to the output directory and the run is
recorded in the task database.

Gene-function questions are detected automatically and routed through the
biomedical databases (PubMed, UniProt, KEGG); use --gene to force it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	cfg := pipelineConfig(cmd)
	ctx := context.Background()

	if err := ensureOutputDir(cfg.Research.OutputDir); err != nil {
		return err
	}

	store, err := task.NewStore(cfg.TaskStore)
	if err != nil {
		return err
	}
	defer store.Close()

	taskID, err := store.Create(ctx, query)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "task %s\n", taskID)

	console := progressSink(os.Stdout, true)
	sink := func(ev research.Event) {
		console(ev)
		if ev.Kind == research.EventProgress {
			p := ev.Progress
			note := p.Step + " " + p.Status
			if p.Name != "" {
				note += ": " + p.Name
			}
			if uerr := store.UpdateProgress(ctx, taskID, note); uerr != nil {
				fmt.Fprintf(os.Stderr, "warning: recording progress: %v\n", uerr)
			}
		}
	}

	engine, err := newEngine(cmd, cfg, sink)
	if err != nil {
		return err
	}

	result, err := engine.Start(ctx, query)
	if err != nil {
		if ferr := store.Fail(ctx, taskID, err); ferr != nil {
			fmt.Fprintf(os.Stderr, "warning: recording failure: %v\n", ferr)
		}
		return err
	}

	if err := store.Complete(ctx, taskID, result); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording result: %v\n", err)
	}

	reportPath := filepath.Join(cfg.Research.OutputDir, "report.md")
	if err := os.WriteFile(reportPath, []byte(result.FinalReport), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\ntitle: %s\nsources: %d, images: %d, learnings: %d\n",
		result.Title, len(result.Sources), len(result.Images), len(result.Learnings))
	if skipped := engine.SkippedCitations(); skipped > 0 {
		fmt.Fprintf(os.Stderr, "citations skipped (no segment match): %d\n", skipped)
	}
	fmt.Fprintf(os.Stderr, "report written to %s\n", reportPath)
	return nil
}

func init() {
	addPipelineFlags(researchCmd)
	rootCmd.AddCommand(researchCmd)
}
