// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package generate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Azure/seclab"
	"github.com/Azure/seclab/testgen"
	"github.com/spf13/cobra"
)

var docOutDir string

// documentsCmd represents the generate documents command.
var documentsCmd = cobra.Command{
	Use:   "documents [flags] librarypath",
	Short: "Generate sample documents matching the library's SIT patterns.",
	Long: `Process the library at librarypath and write one text document per custom
SIT definition that has a test data format, each embedding --count matching
strings plus near-miss negatives.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cat := seclab.NewSecLab(nil)
		// Built-in SITs have no test data format, so generation works offline.
		if err := cat.Init(cmd.Context(), os.DirFS(args[0])); err != nil && !errors.Is(err, seclab.ErrGraphClientNotSet) {
			cmd.PrintErrf("%s could not process library: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		if err := os.MkdirAll(docOutDir, 0o755); err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}

		written := 0
		for _, name := range cat.ListSitDefinitions() {
			sit, err := cat.SitDefinition(name)
			if err != nil {
				cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
				os.Exit(1)
			}
			if sit.TestDataFormat == "" {
				continue
			}
			fn := filepath.Join(docOutDir, fmt.Sprintf("sit_%s.txt", name))
			f, err := os.Create(fn)
			if err != nil {
				cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
				os.Exit(1)
			}
			err = testgen.WriteSitDocument(f, sit, count, seed)
			f.Close()
			if err != nil {
				cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
				os.Exit(1)
			}
			written++
		}
		cmd.Printf("wrote %d documents to %s\n", written, docOutDir)
	},
}

func init() {
	documentsCmd.Flags().StringVar(&docOutDir, "out-dir", "documents", "output directory for generated documents")
}
