// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [query]",
	Short: "Generate a report plan for a query",
	Long: `Plan runs only the first pipeline stage: it streams a section-by-section
report plan for the query and saves it to the output directory. Feed the
saved plan to "queries" to continue the pipeline manually.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	cfg := pipelineConfig(cmd)

	if err := ensureOutputDir(cfg.Research.OutputDir); err != nil {
		return err
	}

	engine, err := newEngine(cmd, cfg, progressSink(os.Stdout, true))
	if err != nil {
		return err
	}

	plan, err := engine.WriteReportPlan(context.Background(), query)
	if err != nil {
		return err
	}

	planPath := filepath.Join(cfg.Research.OutputDir, "plan.md")
	if err := os.WriteFile(planPath, []byte(plan), 0o644); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	fmt.Fprintf(os.Stderr, "\nplan written to %s\n", planPath)
	return nil
}

func init() {
	addPipelineFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}
