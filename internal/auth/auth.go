// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package auth builds Entra token credentials from the local environment.
package auth

import (
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// environmentToCloud maps environment names to their corresponding cloud configurations.
var environmentToCloud = map[string]cloud.Configuration{
	"public":       cloud.AzurePublic,
	"usgovernment": cloud.AzureGovernment,
	"china":        cloud.AzureChina,
}

// Cloud returns the cloud configuration selected by the AZURE_ENVIRONMENT
// environment variable, defaulting to the public cloud.
func Cloud() cloud.Configuration {
	cld := cloud.AzurePublic
	if env := getFirstSetEnvVar("ARM_ENVIRONMENT", "AZURE_ENVIRONMENT"); env != "" {
		if cfg, ok := environmentToCloud[env]; ok {
			cld = cfg
		}
	}
	return cld
}

// NewToken creates a new Entra token credential using the default chain
// (environment, workload identity, managed identity, Azure CLI), configured
// for the selected cloud.
func NewToken() (azcore.TokenCredential, error) {
	opts := &azidentity.DefaultAzureCredentialOptions{
		ClientOptions: azcore.ClientOptions{
			Cloud: Cloud(),
		},
		TenantID: getFirstSetEnvVar("ARM_TENANT_ID", "AZURE_TENANT_ID"),
	}
	return azidentity.NewDefaultAzureCredential(opts)
}

func getFirstSetEnvVar(vars ...string) string {
	for _, v := range vars {
		if val := os.Getenv(v); val != "" {
			return val
		}
	}
	return ""
}
