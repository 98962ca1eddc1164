// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package graph

import (
	"context"
	"fmt"
	"net/url"
)

// FindAdministrativeUnitByDisplayName returns the administrative unit with the
// given display name, or ErrNotFound.
func (c *Client) FindAdministrativeUnitByDisplayName(ctx context.Context, displayName string) (*AdministrativeUnit, error) {
	path := filterPath("directory/administrativeUnits", fmt.Sprintf("displayName eq '%s'", escapeODataLiteral(displayName)))
	aus, err := listAs[AdministrativeUnit](ctx, c, path)
	if err != nil {
		return nil, err
	}
	if len(aus) == 0 {
		return nil, fmt.Errorf("%w: administrativeUnit with displayName %s", ErrNotFound, displayName)
	}
	return &aus[0], nil
}

// CreateAdministrativeUnit creates a new administrative unit.
func (c *Client) CreateAdministrativeUnit(ctx context.Context, au *AdministrativeUnit) (*AdministrativeUnit, error) {
	created := new(AdministrativeUnit)
	if err := c.post(ctx, "directory/administrativeUnits", au, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateAdministrativeUnit patches the administrative unit with the given id.
func (c *Client) UpdateAdministrativeUnit(ctx context.Context, id string, au *AdministrativeUnit) error {
	return c.patch(ctx, "directory/administrativeUnits/"+url.PathEscape(id), au)
}

// AddAdministrativeUnitMember adds a directory object (user or group) to an
// assigned-membership administrative unit.
func (c *Client) AddAdministrativeUnitMember(ctx context.Context, auId, memberId string) error {
	body := &directoryObjectRef{
		ODataId: c.url("directoryObjects/" + url.PathEscape(memberId)),
	}
	return c.post(ctx, "directory/administrativeUnits/"+url.PathEscape(auId)+"/members/$ref", body, nil)
}

// ListAdministrativeUnitMembers lists the ids of the members of an administrative unit.
func (c *Client) ListAdministrativeUnitMembers(ctx context.Context, auId string) ([]Identity, error) {
	return listAs[Identity](ctx, c, "directory/administrativeUnits/"+url.PathEscape(auId)+"/members")
}

// ListScopedRoleMemberships lists the scoped role memberships of an administrative unit.
func (c *Client) ListScopedRoleMemberships(ctx context.Context, auId string) ([]ScopedRoleMembership, error) {
	return listAs[ScopedRoleMembership](ctx, c, "directory/administrativeUnits/"+url.PathEscape(auId)+"/scopedRoleMembers")
}

// AddScopedRoleMembership grants a directory role scoped to the administrative
// unit to the given principal.
func (c *Client) AddScopedRoleMembership(ctx context.Context, auId, roleId, principalId string) (*ScopedRoleMembership, error) {
	body := &ScopedRoleMembership{
		RoleId:         roleId,
		RoleMemberInfo: Identity{Id: principalId},
	}
	created := new(ScopedRoleMembership)
	if err := c.post(ctx, "directory/administrativeUnits/"+url.PathEscape(auId)+"/scopedRoleMembers", body, created); err != nil {
		return nil, err
	}
	return created, nil
}

// GetDirectoryRoleByTemplateId returns the activated directory role for the
// given role template, or ErrNotFound when the role has not been activated in
// the tenant.
func (c *Client) GetDirectoryRoleByTemplateId(ctx context.Context, roleTemplateId string) (*DirectoryRole, error) {
	role := new(DirectoryRole)
	err := c.get(ctx, fmt.Sprintf("directoryRoles(roleTemplateId='%s')", url.PathEscape(roleTemplateId)), role)
	if err != nil {
		return nil, err
	}
	return role, nil
}

// ActivateDirectoryRole activates the directory role with the given template id.
func (c *Client) ActivateDirectoryRole(ctx context.Context, roleTemplateId string) (*DirectoryRole, error) {
	body := map[string]any{"roleTemplateId": roleTemplateId}
	role := new(DirectoryRole)
	if err := c.post(ctx, "directoryRoles", body, role); err != nil {
		return nil, err
	}
	return role, nil
}
