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

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Run the search-and-synthesize loop for a saved task list",
	Long: `Tasks processes a saved task file sequentially: each task's query is sent
to the search provider, the retrieved sources are synthesized into a
learning, and the completed tasks are written to results.yaml in the output
directory. A failing search aborts the whole batch.`,
	RunE: runTasks,
}

func runTasks(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	taskPath, _ := cmd.Flags().GetString("tasks")
	if taskPath == "" {
		taskPath = filepath.Join(cfg.Research.OutputDir, "tasks.yaml")
	}
	tf, err := search.ReadTaskFile(taskPath)
	if err != nil {
		return err
	}
	if len(tf.Tasks) == 0 {
		return fmt.Errorf("task file %s contains no tasks", taskPath)
	}

	engine, err := newEngine(cmd, cfg, progressSink(os.Stdout, false))
	if err != nil {
		return err
	}

	completed, err := engine.RunSearchTask(context.Background(), tf.Tasks, cfg.Research.EnableReferences)
	if err != nil {
		return err
	}

	resultPath := filepath.Join(cfg.Research.OutputDir, "results.yaml")
	if err := search.WriteResultFile(resultPath, tf.Plan, completed); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%d task(s) completed, results written to %s\n", len(completed), resultPath)
	return nil
}

func init() {
	addPipelineFlags(tasksCmd)
	tasksCmd.Flags().String("tasks", "", "task file (default: <output-dir>/tasks.yaml)")
	rootCmd.AddCommand(tasksCmd)
}
