// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package library implements the library command group.
package library

import (
	"github.com/spf13/cobra"
)

// LibraryCmd represents the library command group.
var LibraryCmd = cobra.Command{
	Use:   "library",
	Short: "Perform operations on a lab library member.",
}

func init() {
	LibraryCmd.AddCommand(&CheckCmd)
	LibraryCmd.AddCommand(&InfoCmd)
}
