// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package report implements the report command.
package report

import (
	"os"
	"strconv"

	"github.com/Azure/seclab/classify"
	"github.com/Azure/seclab/report"
	"github.com/spf13/cobra"
)

var (
	format  string
	outFile string
)

// ReportCmd represents the report command.
var ReportCmd = cobra.Command{
	Use:   "report [flags] ledger runID",
	Short: "Export a report for a classification run.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runId, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			cmd.PrintErrf("%s invalid run id %s: %v\n", cmd.ErrPrefix(), args[1], err)
			os.Exit(1)
		}
		fmtParsed, err := report.ParseFormat(format)
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}

		ledger, err := classify.OpenLedger(args[0])
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		defer ledger.Close()

		rep, err := report.Build(cmd.Context(), ledger, runId, nil)
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}

		w := os.Stdout
		if outFile != "" {
			f, err := os.Create(outFile)
			if err != nil {
				cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
				os.Exit(1)
			}
			defer f.Close()
			w = f
		}
		if err := rep.Write(w, fmtParsed); err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
	},
}

func init() {
	ReportCmd.Flags().StringVar(&format, "format", "json", "output format: json, csv or html")
	ReportCmd.Flags().StringVar(&outFile, "out", "", "output file (defaults to stdout)")
}
