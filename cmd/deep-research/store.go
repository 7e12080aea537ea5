// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deep-research/internal/task"
	"github.com/pdiddy/deep-research/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect recorded research runs",
	Long: `Store queries the task record database that the "research" command writes
to. Use subcommands to list runs or show one run's status and report.`,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded research runs, newest first",
	RunE:  runStoreList,
}

func runStoreList(cmd *cobra.Command, args []string) error {
	store, err := openTaskStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %-9s  %s  %s\n",
			rec.ID, rec.Status, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Query)
	}
	return nil
}

var storeShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show one run's status, progress, and report",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreShow,
}

func runStoreShow(cmd *cobra.Command, args []string) error {
	store, err := openTaskStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	fmt.Printf("id:       %s\nquery:    %s\nstatus:   %s\n", rec.ID, rec.Query, rec.Status)
	if rec.Progress != "" {
		fmt.Printf("progress: %s\n", rec.Progress)
	}
	if rec.Error != "" {
		fmt.Printf("error:    %s\n", rec.Error)
	}
	if rec.Result != nil {
		fmt.Printf("title:    %s\nsources:  %d\n\n%s\n", rec.Result.Title, len(rec.Result.Sources), rec.Result.FinalReport)
	}
	return nil
}

func openTaskStore(cmd *cobra.Command) (*task.Store, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = viper.GetString("task_store.data_dir")
	}
	if dataDir == "" {
		dataDir = "data"
	}
	return task.NewStore(types.TaskStoreConfig{DataDir: dataDir})
}

func init() {
	storeCmd.PersistentFlags().String("data-dir", "", "task database directory (default: ./data)")
	storeShowCmd.Flags().Bool("json", false, "output the record as JSON")

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeShowCmd)
	rootCmd.AddCommand(storeCmd)
}
