// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package graph

// Application is an Entra ID application registration.
type Application struct {
	Id             string `json:"id,omitempty"`
	AppId          string `json:"appId,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
	SignInAudience string `json:"signInAudience,omitempty"`
	Description    string `json:"description,omitempty"`
}

// PasswordCredential is an application client secret.
// SecretText is only populated in the addPassword response and cannot be
// retrieved again.
type PasswordCredential struct {
	KeyId       string `json:"keyId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	SecretText  string `json:"secretText,omitempty"`
	EndDateTime string `json:"endDateTime,omitempty"`
}

// ServicePrincipal is an Entra ID service principal.
type ServicePrincipal struct {
	Id          string    `json:"id,omitempty"`
	AppId       string    `json:"appId,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	AppRoles    []AppRole `json:"appRoles,omitempty"`
}

// AppRole is an application permission exposed by a resource service principal.
type AppRole struct {
	Id                 string   `json:"id,omitempty"`
	Value              string   `json:"value,omitempty"`
	DisplayName        string   `json:"displayName,omitempty"`
	AllowedMemberTypes []string `json:"allowedMemberTypes,omitempty"`
}

// AppRoleAssignment grants an app role on a resource to a principal.
type AppRoleAssignment struct {
	Id          string `json:"id,omitempty"`
	AppRoleId   string `json:"appRoleId"`
	PrincipalId string `json:"principalId"`
	ResourceId  string `json:"resourceId"`
}

// AdministrativeUnit is an Entra ID administrative unit.
type AdministrativeUnit struct {
	Id                            string `json:"id,omitempty"`
	DisplayName                   string `json:"displayName,omitempty"`
	Description                   string `json:"description,omitempty"`
	MembershipType                string `json:"membershipType,omitempty"`
	MembershipRule                string `json:"membershipRule,omitempty"`
	MembershipRuleProcessingState string `json:"membershipRuleProcessingState,omitempty"`
}

// ScopedRoleMembership scopes a directory role over an administrative unit.
type ScopedRoleMembership struct {
	Id                   string   `json:"id,omitempty"`
	AdministrativeUnitId string   `json:"administrativeUnitId,omitempty"`
	RoleId               string   `json:"roleId"`
	RoleMemberInfo       Identity `json:"roleMemberInfo"`
}

// Identity is a principal reference used in scoped role memberships.
type Identity struct {
	Id          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
}

// DirectoryRole is an activated directory role.
type DirectoryRole struct {
	Id             string `json:"id,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
	RoleTemplateId string `json:"roleTemplateId,omitempty"`
}

// Group is an Entra ID group.
type Group struct {
	Id              string   `json:"id,omitempty"`
	DisplayName     string   `json:"displayName,omitempty"`
	Description     string   `json:"description,omitempty"`
	MailNickname    string   `json:"mailNickname,omitempty"`
	MailEnabled     *bool    `json:"mailEnabled,omitempty"`
	SecurityEnabled *bool    `json:"securityEnabled,omitempty"`
	GroupTypes      []string `json:"groupTypes,omitempty"`
}

// User is an Entra ID user.
type User struct {
	Id                string `json:"id,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	Mail              string `json:"mail,omitempty"`
}

// DriveItem is a file or folder in a SharePoint or OneDrive drive.
type DriveItem struct {
	Id     string          `json:"id,omitempty"`
	Name   string          `json:"name,omitempty"`
	WebUrl string          `json:"webUrl,omitempty"`
	Size   int64           `json:"size,omitempty"`
	Folder *map[string]any `json:"folder,omitempty"`
}

// directoryObjectRef is the body for $ref member-add operations.
type directoryObjectRef struct {
	ODataId string `json:"@odata.id"`
}
