// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package classify implements the classify command group.
package classify

import (
	"github.com/spf13/cobra"
)

// ClassifyBaseCmd represents the classify command group.
var ClassifyBaseCmd = cobra.Command{
	Use:   "classify",
	Short: "Bulk sensitivity labeling over SharePoint drive items.",
}

func init() {
	ClassifyBaseCmd.AddCommand(&runCmd)
}
