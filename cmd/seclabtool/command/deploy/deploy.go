// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package deploy implements the deploy command.
package deploy

import (
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armpolicy"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/Azure/seclab"
	"github.com/Azure/seclab/deployment"
	"github.com/Azure/seclab/graph"
	"github.com/Azure/seclab/internal/auth"
	"github.com/spf13/cobra"
)

var (
	prefix             string
	scenarioName       string
	subscriptionId     string
	keyVaultName       string
	defenderInitiative string
	labUserDomain      string
	renderOnly         bool
	outDir             string
)

// DeployCmd represents the deploy command.
var DeployCmd = cobra.Command{
	Use:   "deploy [flags] librarypath blueprint",
	Short: "Deploy a lab library blueprint to the tenant.",
	Long: `Fetch the library at librarypath (and its dependencies), build the named
blueprint into a scenario and reconcile it against the tenant. Purview
payloads (SITs, labels, DLP policies) are rendered to the output directory;
--render-only stops there without touching the tenant.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		ref := seclab.NewCustomLibraryReference(args[0])
		libs, err := ref.FetchWithDependencies(ctx)
		if err != nil {
			cmd.PrintErrf("%s could not fetch library: %v\n", cmd.ErrPrefix(), err)
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

		// Init fetches built-in SITs referenced by DLP rules, so the graph
		// client must be in place first.
		cat := seclab.NewSecLab(nil)
		cat.AddGraphClient(graphClient)
		if err := cat.Init(ctx, libs.FSs()...); err != nil {
			cmd.PrintErrf("%s could not process library: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}

		bp, err := cat.CopyBlueprint(args[1])
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		bp.WithWellKnownValues(wellKnownValues())

		name := scenarioName
		if name == "" {
			name = args[1]
		}
		tenant := deployment.NewTenant(cat)
		if err := tenant.AddScenario(ctx, &deployment.ScenarioAddRequest{
			Name:      name,
			Prefix:    prefix,
			Blueprint: bp,
		}); err != nil {
			cmd.PrintErrf("%s could not build scenario: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}

		rec := deployment.NewReconciler(tenant, graphClient, nil)
		sc := tenant.Scenario(name)
		if _, err := rec.RenderPurviewAssets(sc, outDir); err != nil {
			cmd.PrintErrf("%s could not render compliance payloads: %v\n", cmd.ErrPrefix(), err)
			os.Exit(1)
		}
		if renderOnly {
			cmd.Printf("rendered compliance payloads to %s, skipping tenant reconciliation\n", outDir)
			return
		}

		if subscriptionId != "" {
			raClient, err := armauthorization.NewRoleAssignmentsClient(subscriptionId, cred, nil)
			if err != nil {
				cmd.PrintErrf("%s could not create role assignments client: %v\n", cmd.ErrPrefix(), err)
				os.Exit(1)
			}
			rec.AddRoleAssignmentsClient(raClient)

			policyFactory, err := armpolicy.NewClientFactory(subscriptionId, cred, nil)
			if err != nil {
				cmd.PrintErrf("%s could not create policy client: %v\n", cmd.ErrPrefix(), err)
				os.Exit(1)
			}
			rec.AddPolicyClient(policyFactory)
		}
		if keyVaultName != "" {
			secretsClient, err := azsecrets.NewClient(deployment.VaultURL(keyVaultName), cred, nil)
			if err != nil {
				cmd.PrintErrf("%s could not create key vault client: %v\n", cmd.ErrPrefix(), err)
				os.Exit(1)
			}
			rec.AddSecretsClient(secretsClient)
		}

		result, err := rec.Apply(ctx, name)
		if err != nil {
			cmd.PrintErrf("%s deployment failed: %v\n", cmd.ErrPrefix(), err)
			if result != nil {
				for _, f := range result.Failed() {
					cmd.PrintErrf("  %s %s: %s\n", f.Kind, f.Name, f.Error)
				}
			}
			os.Exit(1)
		}

		for action, count := range result.Counts() {
			cmd.Printf("%s: %d\n", action, count)
		}
	},
}

func wellKnownValues() seclab.WellKnownValues {
	wkv := seclab.WellKnownValues{}
	if subscriptionId != "" {
		wkv[deployment.WellKnownSubscriptionId] = subscriptionId
	}
	if keyVaultName != "" {
		wkv[deployment.WellKnownKeyVaultName] = keyVaultName
	}
	if defenderInitiative != "" {
		wkv[deployment.WellKnownDefenderInitiative] = defenderInitiative
	}
	if labUserDomain != "" {
		wkv[deployment.WellKnownLabUserDomain] = labUserDomain
	}
	return wkv
}

func init() {
	DeployCmd.Flags().StringVar(&prefix, "prefix", "", "prefix applied to display names and mail nicknames")
	DeployCmd.Flags().StringVar(&scenarioName, "scenario", "", "scenario name (defaults to the blueprint name)")
	DeployCmd.Flags().StringVar(&subscriptionId, "subscription", "", "subscription id for RBAC and policy assignments")
	DeployCmd.Flags().StringVar(&keyVaultName, "key-vault", "", "key vault name for generated application secrets")
	DeployCmd.Flags().StringVar(&defenderInitiative, "defender-initiative", "", "policy set definition name to assign at subscription scope")
	DeployCmd.Flags().StringVar(&labUserDomain, "lab-user-domain", "", "verified domain for lab user accounts")
	DeployCmd.Flags().BoolVar(&renderOnly, "render-only", false, "render compliance payloads without reconciling the tenant")
	DeployCmd.Flags().StringVar(&outDir, "out", "rendered", "output directory for rendered compliance payloads")
}
