// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package graph

import (
	"context"
	"fmt"
	"net/url"
)

// GraphResourceAppId is the well-known appId of the Microsoft Graph service principal.
const GraphResourceAppId = "00000003-0000-0000-c000-000000000000"

// FindServicePrincipalByAppId returns the service principal for the given
// application (client) id, or ErrNotFound.
func (c *Client) FindServicePrincipalByAppId(ctx context.Context, appId string) (*ServicePrincipal, error) {
	path := filterPath("servicePrincipals", fmt.Sprintf("appId eq '%s'", escapeODataLiteral(appId)))
	sps, err := listAs[ServicePrincipal](ctx, c, path)
	if err != nil {
		return nil, err
	}
	if len(sps) == 0 {
		return nil, fmt.Errorf("%w: servicePrincipal with appId %s", ErrNotFound, appId)
	}
	return &sps[0], nil
}

// CreateServicePrincipal creates a service principal for the given application id.
func (c *Client) CreateServicePrincipal(ctx context.Context, appId string) (*ServicePrincipal, error) {
	body := map[string]any{"appId": appId}
	sp := new(ServicePrincipal)
	if err := c.post(ctx, "servicePrincipals", body, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// ListAppRoleAssignments lists the app roles assigned to the principal.
func (c *Client) ListAppRoleAssignments(ctx context.Context, principalId string) ([]AppRoleAssignment, error) {
	return listAs[AppRoleAssignment](ctx, c, "servicePrincipals/"+url.PathEscape(principalId)+"/appRoleAssignments")
}

// GrantAppRole assigns an app role on the resource service principal to the
// principal. This is the API equivalent of admin-consenting an application
// permission.
func (c *Client) GrantAppRole(ctx context.Context, principalId, resourceId, appRoleId string) (*AppRoleAssignment, error) {
	body := &AppRoleAssignment{
		PrincipalId: principalId,
		ResourceId:  resourceId,
		AppRoleId:   appRoleId,
	}
	created := new(AppRoleAssignment)
	if err := c.post(ctx, "servicePrincipals/"+url.PathEscape(principalId)+"/appRoleAssignments", body, created); err != nil {
		return nil, err
	}
	return created, nil
}

// ResolveAppRoleId resolves an application permission value, e.g.
// "User.Read.All", to its role id on the resource service principal.
func ResolveAppRoleId(resource *ServicePrincipal, roleValue string) (string, error) {
	for _, role := range resource.AppRoles {
		if role.Value == roleValue {
			return role.Id, nil
		}
	}
	return "", fmt.Errorf("%w: app role %s on %s", ErrNotFound, roleValue, resource.DisplayName)
}
