// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	classifycmd "github.com/Azure/seclab/cmd/seclabtool/command/classify"
	"github.com/Azure/seclab/cmd/seclabtool/command/cleanup"
	"github.com/Azure/seclab/cmd/seclabtool/command/deploy"
	"github.com/Azure/seclab/cmd/seclabtool/command/generate"
	"github.com/Azure/seclab/cmd/seclabtool/command/library"
	reportcmd "github.com/Azure/seclab/cmd/seclabtool/command/report"
	"github.com/Azure/seclab/internal/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var logLevel string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "seclabtool",
	Version: version,
	Short:   "A cli tool for provisioning Microsoft security labs",
	Long: `A cli tool for provisioning Microsoft security labs.

This tool can:

- Deploy a lab library blueprint to a tenant (Entra ID objects, RBAC, Key Vault secrets) and render compliance payloads.
- Generate deterministic test data that trips Purview classifiers.
- Run bulk sensitivity labeling over SharePoint drive items with a persistent run ledger.
- Clean up seeded lab files and export lab reports.
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Configure(log.Config{Level: logLevel})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// A .env file is optional, local overrides only.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(&deploy.DeployCmd)
	rootCmd.AddCommand(&generate.GenerateBaseCmd)
	rootCmd.AddCommand(&classifycmd.ClassifyBaseCmd)
	rootCmd.AddCommand(&cleanup.CleanupCmd)
	rootCmd.AddCommand(&reportcmd.ReportCmd)
	rootCmd.AddCommand(&library.LibraryCmd)
}
