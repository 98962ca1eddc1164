// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package generate

import (
	"os"

	"github.com/Azure/seclab/testgen"
	"github.com/spf13/cobra"
)

// employeesCmd represents the generate employees command.
var employeesCmd = cobra.Command{
	Use:   "employees",
	Short: "Generate employee records with SSN formatted identifiers.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, done, err := outWriter()
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		defer done()
		if err := testgen.WriteEmployeeRecords(w, count, seed, domain); err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
	},
}

// customersCmd represents the generate customers command.
var customersCmd = cobra.Command{
	Use:   "customers",
	Short: "Generate customer records with Luhn valid card numbers.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, done, err := outWriter()
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		defer done()
		if err := testgen.WriteCustomerRecords(w, count, seed, domain); err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
	},
}

func init() {
	employeesCmd.Flags().StringVar(&domain, "domain", "", "email domain for generated addresses")
	customersCmd.Flags().StringVar(&domain, "domain", "", "email domain for generated addresses")
}
