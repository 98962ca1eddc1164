// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package classify

import (
	"os"
	"time"

	"github.com/Azure/seclab"
	"github.com/Azure/seclab/classify"
	"github.com/Azure/seclab/graph"
	"github.com/Azure/seclab/internal/auth"
	"github.com/spf13/cobra"
)

var (
	maxConcurrent int
	maxRetries    int
	baseDelay     time.Duration
	dryRun        bool
	ledgerPath    string
	driveId       string
	scenario      string
	justification string
	libraryPath   string
)

// runCmd represents the classify run command.
var runCmd = cobra.Command{
	Use:   "run [flags] manifest.csv",
	Short: "Apply sensitivity labels per a CSV manifest.",
	Long: `Read the manifest and apply the named label to every item, with bounded
parallelism and retry on throttling. Every outcome is recorded in the run
ledger; a dry run records items as skipped without touching the tenant.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		f, err := os.Open(args[0])
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		items, err := classify.ReadManifest(f)
		f.Close()
		if err != nil {
			cmd.PrintErrf("%s could not read manifest: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}

		cred, err := auth.NewToken()
		if err != nil {
			cmd.PrintErrf("%s could not create credential: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		graphClient, err := graph.NewClient(cred, nil)
		if err != nil {
			cmd.PrintErrf("%s could not create graph client: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}

		// Labels in the manifest that are not GUIDs need the published label
		// map. With a library the catalog resolves its labels against the
		// tenant and fails on any that are not published; without one every
		// published label is accepted.
		labels := map[string]string{}
		if !dryRun {
			if libraryPath != "" {
				cat := seclab.NewSecLab(nil)
				cat.AddGraphClient(graphClient)
				if err := cat.Init(ctx, os.DirFS(libraryPath)); err != nil {
					cmd.PrintErrf("%s could not process library: %v\n", cmd.ErrPrefix(), err)
					os.Exit(1)
				}
				if err := cat.ResolvePublishedLabels(ctx); err != nil {
					cmd.PrintErrf("%s could not resolve published labels: %v\n", cmd.ErrPrefix(), err)
					os.Exit(1)
				}
				labels = cat.PublishedLabels()
			} else {
				published, err := graphClient.ListSensitivityLabels(ctx)
				if err != nil {
					cmd.PrintErrf("%s could not list published labels: %v\n", cmd.ErrPrefix(), err)
					os.Exit(1)
				}
				for _, l := range published {
					labels[l.Name] = l.Id
				}
			}
		}

		ledger, err := classify.OpenLedger(ledgerPath)
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		defer ledger.Close()

		runId, err := ledger.BeginRun(ctx, scenario, dryRun)
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}

		runner := classify.NewRunner(maxConcurrent, maxRetries, baseDelay, dryRun)
		action := classify.NewLabelAction(graphClient, driveId, labels, justification)
		results, runErr := runner.Run(ctx, items, action)

		if err := ledger.RecordResults(ctx, runId, results); err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		if err := ledger.FinishRun(ctx, runId); err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		if runErr != nil {
			cmd.PrintErrf("%s run %d interrupted: %v\n", cmd.ErrPrefix(), runId, runErr)
			os.Exit(1)
		}

		failed := 0
		for _, r := range results {
			if r.Outcome == classify.OutcomeFailed {
				failed++
			}
		}
		cmd.Printf("run %d: %d items, %d failed\n", runId, len(results), failed)
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 5, "maximum in-flight labeling calls")
	runCmd.Flags().IntVar(&maxRetries, "max-retries", 4, "retries per item after the first attempt")
	runCmd.Flags().DurationVar(&baseDelay, "base-delay", time.Second, "backoff unit for retries")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "record items as skipped without labeling")
	runCmd.Flags().StringVar(&ledgerPath, "ledger", "seclab.db", "path of the run ledger database")
	runCmd.Flags().StringVar(&driveId, "drive", "", "default drive id for path addressed manifest items")
	runCmd.Flags().StringVar(&scenario, "scenario", "", "scenario name recorded with the run")
	runCmd.Flags().StringVar(&justification, "justification", "", "justification text for label downgrades")
	runCmd.Flags().StringVar(&libraryPath, "library", "", "lab library directory whose labels the manifest names")
}
