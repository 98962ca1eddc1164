// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package assets

// AppRegistrationDefinition is an Entra ID application registration definition,
// together with its service principal and permission grants.
type AppRegistrationDefinition struct {
	Name        string `json:"name"         yaml:"name"         validate:"required"`
	DisplayName string `json:"display_name" yaml:"display_name" validate:"required"`
	// SignInAudience defaults to AzureADMyOrg.
	SignInAudience string `json:"sign_in_audience" yaml:"sign_in_audience" validate:"omitempty,oneof=AzureADMyOrg AzureADMultipleOrgs AzureADandPersonalMicrosoftAccount"`
	// GraphAppRoles are Microsoft Graph application permission values granted
	// to the service principal, e.g. "User.Read.All", "InformationProtectionPolicy.Read.All".
	GraphAppRoles []string `json:"graph_app_roles" yaml:"graph_app_roles"`
	// GenerateSecret requests a client secret on creation. The secret is
	// written to Key Vault under KeyVaultSecretName and never logged.
	GenerateSecret     bool   `json:"generate_secret"       yaml:"generate_secret"`
	KeyVaultSecretName string `json:"key_vault_secret_name" yaml:"key_vault_secret_name" validate:"required_if=GenerateSecret true"`
	// RbacGrants assign Azure RBAC roles to the service principal.
	RbacGrants []RbacGrant `json:"rbac_grants" yaml:"rbac_grants" validate:"dive"`
}

// RbacGrant assigns an Azure RBAC role to the app's service principal at a scope.
type RbacGrant struct {
	// RoleDefinitionId is the GUID of the role definition, e.g.
	// "4633458b-17de-408a-b874-0445c86b69e6" for Key Vault Secrets User.
	RoleDefinitionId string `json:"role_definition_id" yaml:"role_definition_id" validate:"required,uuid"`
	// Scope is the assignment scope and may contain well-known value
	// placeholders, e.g. "/subscriptions/${subscription_id}".
	Scope string `json:"scope" yaml:"scope" validate:"required"`
}
