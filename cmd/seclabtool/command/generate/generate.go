// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package generate implements the generate command group.
package generate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	count   int
	seed    int64
	outFile string
	domain  string
)

// GenerateBaseCmd represents the generate command group.
var GenerateBaseCmd = cobra.Command{
	Use:   "generate",
	Short: "Generate deterministic lab test data.",
	Long: `Generate deterministic lab test data: employee and customer record files
that trip the built-in classifiers, sample documents matching custom SIT
patterns, and EDM schemas for exact data match uploads.`,
}

// outWriter opens the --out file, or stdout when unset.
func outWriter() (*os.File, func(), error) {
	if outFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", outFile, err)
	}
	return f, func() { f.Close() }, nil
}

func init() {
	GenerateBaseCmd.PersistentFlags().IntVar(&count, "count", 100, "number of records to generate")
	GenerateBaseCmd.PersistentFlags().Int64Var(&seed, "seed", 1, "random seed, output is deterministic per seed")
	GenerateBaseCmd.PersistentFlags().StringVar(&outFile, "out", "", "output file (defaults to stdout)")
	GenerateBaseCmd.AddCommand(&employeesCmd)
	GenerateBaseCmd.AddCommand(&customersCmd)
	GenerateBaseCmd.AddCommand(&documentsCmd)
	GenerateBaseCmd.AddCommand(&edmCmd)
}
