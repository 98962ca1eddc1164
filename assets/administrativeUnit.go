// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package assets

// AdministrativeUnitDefinition is an Entra ID administrative unit definition.
type AdministrativeUnitDefinition struct {
	Name        string `json:"name"         yaml:"name"         validate:"required"`
	DisplayName string `json:"display_name" yaml:"display_name" validate:"required"`
	Description string `json:"description"  yaml:"description"`
	// MembershipType is "assigned" or "dynamic". Dynamic AUs require a
	// membership rule.
	MembershipType string `json:"membership_type" yaml:"membership_type" validate:"omitempty,oneof=assigned dynamic"`
	MembershipRule string `json:"membership_rule" yaml:"membership_rule" validate:"required_if=MembershipType dynamic"`
	// Members are security group names (from the same library) assigned to the
	// AU. Ignored for dynamic AUs.
	Members []string `json:"members" yaml:"members"`
	// RoleGrants scope directory roles to this AU.
	RoleGrants []ScopedRoleGrant `json:"role_grants" yaml:"role_grants" validate:"dive"`
}

// ScopedRoleGrant grants a directory role over an administrative unit to the
// members of a security group.
type ScopedRoleGrant struct {
	// RoleTemplateId is the well-known directory role template ID, e.g.
	// "fdd7a751-b60b-444a-984c-02652fe8fa1c" for Groups Administrator.
	RoleTemplateId string `json:"role_template_id" yaml:"role_template_id" validate:"required,uuid"`
	// GroupRef is the name of the security group whose members receive the role.
	GroupRef string `json:"group_ref" yaml:"group_ref" validate:"required"`
}
