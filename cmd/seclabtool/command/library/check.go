// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package library

import (
	"errors"
	"fmt"
	"os"

	"github.com/Azure/seclab"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/cobra"
)

// CheckCmd represents the library check command.
var CheckCmd = cobra.Command{
	Use:   "check [flags] dir",
	Short: "Check the validity of a lab library member.",
	Long: `Process the library and verify that it is internally consistent: every
resource validates and every catalog resource is referenced by at least one
blueprint.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cat := seclab.NewSecLab(nil)
		// The check runs offline, so built-in SIT resolution is skipped.
		if err := cat.Init(cmd.Context(), os.DirFS(args[0])); err != nil && !errors.Is(err, seclab.ErrGraphClientNotSet) {
			cmd.PrintErrf("%s library check error: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		if err := checkAllResourcesAreReferenced(cat); err != nil {
			cmd.PrintErrf("%s library check error: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		cmd.Println("library ok")
	},
}

// checkAllResourcesAreReferenced fails when the catalog holds resources that
// no blueprint includes.
func checkAllResourcesAreReferenced(cat *seclab.SecLab) error {
	referencedSits := mapset.NewThreadUnsafeSet[string]()
	referencedLabels := mapset.NewThreadUnsafeSet[string]()
	referencedPolicies := mapset.NewThreadUnsafeSet[string]()
	referencedAus := mapset.NewThreadUnsafeSet[string]()
	referencedApps := mapset.NewThreadUnsafeSet[string]()
	referencedGroups := mapset.NewThreadUnsafeSet[string]()
	for _, name := range cat.ListBlueprints() {
		bp, err := cat.CopyBlueprint(name)
		if err != nil {
			return err //nolint:wrapcheck
		}
		referencedSits = referencedSits.Union(bp.SitDefinitions)
		referencedLabels = referencedLabels.Union(bp.SensitivityLabels)
		referencedPolicies = referencedPolicies.Union(bp.DlpPolicies)
		referencedAus = referencedAus.Union(bp.AdministrativeUnits)
		referencedApps = referencedApps.Union(bp.AppRegistrations)
		referencedGroups = referencedGroups.Union(bp.SecurityGroups)
	}
	unreferencedSits := mapset.NewThreadUnsafeSet(cat.ListSitDefinitions()...).Difference(referencedSits).ToSlice()
	unreferencedLabels := mapset.NewThreadUnsafeSet(cat.ListSensitivityLabels()...).Difference(referencedLabels).ToSlice()
	unreferencedPolicies := mapset.NewThreadUnsafeSet(cat.ListDlpPolicies()...).Difference(referencedPolicies).ToSlice()
	unreferencedAus := mapset.NewThreadUnsafeSet(cat.ListAdministrativeUnits()...).Difference(referencedAus).ToSlice()
	unreferencedApps := mapset.NewThreadUnsafeSet(cat.ListAppRegistrations()...).Difference(referencedApps).ToSlice()
	unreferencedGroups := mapset.NewThreadUnsafeSet(cat.ListSecurityGroups()...).Difference(referencedGroups).ToSlice()
	if len(unreferencedSits) > 0 || len(unreferencedLabels) > 0 || len(unreferencedPolicies) > 0 ||
		len(unreferencedAus) > 0 || len(unreferencedApps) > 0 || len(unreferencedGroups) > 0 {
		return fmt.Errorf(
			"checkAllResourcesAreReferenced: found unreferenced resources [sitDefinitions] [sensitivityLabels] [dlpPolicies] [administrativeUnits] [appRegistrations] [securityGroups]: %v, %v, %v, %v, %v, %v",
			unreferencedSits, unreferencedLabels, unreferencedPolicies, unreferencedAus, unreferencedApps, unreferencedGroups)
	}
	return nil
}
