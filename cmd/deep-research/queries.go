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

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Generate search queries from a saved report plan",
	Long: `Queries runs the query-generation stage against a saved plan file and
writes the validated task list to tasks.yaml in the output directory. Feed
the task file to "tasks" to run the searches.`,
	RunE: runQueries,
}

func runQueries(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	planPath, _ := cmd.Flags().GetString("plan")
	if planPath == "" {
		planPath = filepath.Join(cfg.Research.OutputDir, "plan.md")
	}
	data, err := os.ReadFile(planPath)
	if err != nil {
		return fmt.Errorf("reading plan: %w", err)
	}
	plan := string(data)

	engine, err := newEngine(cmd, cfg, progressSink(os.Stdout, false))
	if err != nil {
		return err
	}

	tasks, err := engine.GenerateSERPQuery(context.Background(), plan)
	if err != nil {
		return err
	}

	taskPath := filepath.Join(cfg.Research.OutputDir, "tasks.yaml")
	if err := search.WriteTaskFile(taskPath, plan, tasks); err != nil {
		return err
	}

	for i, t := range tasks {
		fmt.Printf("%d. %s\n   goal: %s\n", i+1, t.Query, t.ResearchGoal)
	}
	fmt.Fprintf(os.Stderr, "\n%d task(s) written to %s\n", len(tasks), taskPath)
	return nil
}

func init() {
	addPipelineFlags(queriesCmd)
	queriesCmd.Flags().String("plan", "", "plan file (default: <output-dir>/plan.md)")
	rootCmd.AddCommand(queriesCmd)
}
