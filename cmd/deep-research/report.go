// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/search"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the final report from saved search results",
	Long: `Report runs the last pipeline stage against a saved results file: sources
and images are deduplicated across tasks, the final report is streamed from
the thinking model, and the result is written to report.md in the output
directory.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	resultPath, _ := cmd.Flags().GetString("results")
	if resultPath == "" {
		resultPath = filepath.Join(cfg.Research.OutputDir, "results.yaml")
	}
	rf, err := search.ReadResultFile(resultPath)
	if err != nil {
		return err
	}
	if len(rf.Results) == 0 {
		return fmt.Errorf("result file %s contains no completed tasks", resultPath)
	}

	engine, err := newEngine(cmd, cfg, progressSink(os.Stdout, true))
	if err != nil {
		return err
	}

	result, err := engine.WriteFinalReport(context.Background(), rf.Plan, rf.Results,
		cfg.Research.EnableCitationImage, cfg.Research.EnableReferences)
	if err != nil {
		return err
	}

	reportPath := filepath.Join(cfg.Research.OutputDir, "report.md")
	if err := os.WriteFile(reportPath, []byte(result.FinalReport), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\ntitle: %s\nsources: %d, images: %d\n", result.Title, len(result.Sources), len(result.Images))
	if skipped := engine.SkippedCitations(); skipped > 0 {
		fmt.Fprintf(os.Stderr, "citations skipped (no segment match): %d\n", skipped)
	}
	fmt.Fprintf(os.Stderr, "report written to %s\n", reportPath)
	return nil
}

func init() {
	addPipelineFlags(reportCmd)
	reportCmd.Flags().String("results", "", "results file (default: <output-dir>/results.yaml)")
	rootCmd.AddCommand(reportCmd)
}
