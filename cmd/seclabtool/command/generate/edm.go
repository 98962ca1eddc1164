// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package generate

import (
	"os"

	"github.com/Azure/seclab/testgen"
	"github.com/spf13/cobra"
)

var (
	edmDataStore       string
	edmDescription     string
	edmSearchable      []string
	edmCaseInsensitive []string
)

// edmCmd represents the generate edm command.
var edmCmd = cobra.Command{
	Use:   "edm [flags] data.csv",
	Short: "Generate an EDM schema from a CSV header.",
	Long: `Read the header row of the CSV file and write an exact data match schema in
the Purview upload agent format. When no --searchable columns are given the
first column becomes the searchable field.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		defer f.Close()

		schema, err := testgen.NewEdmSchemaFromCSV(f, edmDataStore, edmDescription, &testgen.EdmFieldOptions{
			Searchable:      edmSearchable,
			CaseInsensitive: edmCaseInsensitive,
		})
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}

		w, done, err := outWriter()
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		defer done()
		if err := schema.Write(w); err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
	},
}

func init() {
	edmCmd.Flags().StringVar(&edmDataStore, "datastore", "seclabdata", "EDM data store name")
	edmCmd.Flags().StringVar(&edmDescription, "description", "", "EDM data store description")
	edmCmd.Flags().StringSliceVar(&edmSearchable, "searchable", nil, "columns marked searchable")
	edmCmd.Flags().StringSliceVar(&edmCaseInsensitive, "case-insensitive", nil, "columns matched case insensitively")
}
