// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package library

import (
	"errors"
	"os"
	"sort"

	"github.com/Azure/seclab"
	"github.com/spf13/cobra"
)

// InfoCmd represents the library info command.
var InfoCmd = cobra.Command{
	Use:   "info [flags] dir",
	Short: "Print the metadata and contents of a lab library member.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cat := seclab.NewSecLab(nil)
		// Built-in SIT resolution needs a tenant, everything printed here does not.
		if err := cat.Init(cmd.Context(), os.DirFS(args[0])); err != nil && !errors.Is(err, seclab.ErrGraphClientNotSet) {
			cmd.PrintErrf("%s could not process library: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}

		for _, meta := range cat.Metadata() {
			cmd.Printf("name:         %s\n", meta.Name())
			cmd.Printf("display name: %s\n", meta.DisplayName())
			cmd.Printf("description:  %s\n", meta.Description())
			for _, dep := range meta.Dependencies() {
				cmd.Printf("dependency:   %s\n", dep.String())
			}
		}

		printList(cmd, "sit definitions", cat.ListSitDefinitions())
		printList(cmd, "sensitivity labels", cat.ListSensitivityLabels())
		printList(cmd, "dlp policies", cat.ListDlpPolicies())
		printList(cmd, "administrative units", cat.ListAdministrativeUnits())
		printList(cmd, "app registrations", cat.ListAppRegistrations())
		printList(cmd, "security groups", cat.ListSecurityGroups())
		printList(cmd, "blueprints", cat.ListBlueprints())
	},
}

func printList(cmd *cobra.Command, heading string, names []string) {
	if len(names) == 0 {
		return
	}
	sort.Strings(names)
	cmd.Printf("%s (%d):\n", heading, len(names))
	for _, n := range names {
		cmd.Printf("  %s\n", n)
	}
}
