// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package cleanup implements the cleanup command.
package cleanup

import (
	"os"

	"github.com/Azure/seclab/classify"
	"github.com/Azure/seclab/internal/auth"
	"github.com/Azure/seclab/internal/environment"
	"github.com/spf13/cobra"
)

var dryRun bool

// CleanupCmd represents the cleanup command.
var CleanupCmd = cobra.Command{
	Use:   "cleanup [flags] driveId folder",
	Short: "Delete seeded lab files from a SharePoint drive folder.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cred, err := auth.NewToken()
		if err != nil {
			cmd.PrintErrf("%s could not create credential: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		sp := classify.NewSharePointClient(cred, environment.GraphEndpoint())

		items, err := sp.ListFolder(ctx, args[0], args[1])
		if err != nil {
			cmd.PrintErrf("%s could not list folder: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		if dryRun {
			for _, item := range items {
				cmd.Printf("would delete %s\n", item.Name)
			}
			cmd.Printf("%d files\n", len(items))
			return
		}

		deleted, err := sp.DeleteItems(ctx, args[0], items)
		if err != nil {
			cmd.PrintErrf("%s cleanup failed after %d deletions: %v\n", cmd.ErrPrefix(), deleted, err)
			os.Exit(1)
		}
		cmd.Printf("deleted %d files\n", deleted)
	},
}

func init() {
	CleanupCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list files without deleting them")
}
