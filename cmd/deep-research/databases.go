// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/search"
)

var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List the searchable databases and their categories",
	Run: func(cmd *cobra.Command, args []string) {
		for _, info := range search.Registry {
			fmt.Printf("%-8s  %-10s  %s\n", info.Name, info.Category, info.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(databasesCmd)
}
