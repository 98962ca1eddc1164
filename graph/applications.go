// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package graph

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// filterPath builds a collection path with an OData $filter query.
func filterPath(collection, filter string) string {
	q := url.Values{}
	q.Set("$filter", filter)
	return collection + "?" + q.Encode()
}

// escapeODataLiteral escapes single quotes in an OData string literal.
func escapeODataLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// GetApplication returns the application with the given object id.
func (c *Client) GetApplication(ctx context.Context, id string) (*Application, error) {
	app := new(Application)
	if err := c.get(ctx, "applications/"+url.PathEscape(id), app); err != nil {
		return nil, err
	}
	return app, nil
}

// FindApplicationByDisplayName returns the application with the given display
// name, or ErrNotFound when none matches. Display names are not unique in
// Entra ID, the first match wins.
func (c *Client) FindApplicationByDisplayName(ctx context.Context, displayName string) (*Application, error) {
	path := filterPath("applications", fmt.Sprintf("displayName eq '%s'", escapeODataLiteral(displayName)))
	apps, err := listAs[Application](ctx, c, path)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, fmt.Errorf("%w: application with displayName %s", ErrNotFound, displayName)
	}
	return &apps[0], nil
}

// CreateApplication creates a new application registration.
func (c *Client) CreateApplication(ctx context.Context, app *Application) (*Application, error) {
	created := new(Application)
	if err := c.post(ctx, "applications", app, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateApplication patches the application with the given object id.
func (c *Client) UpdateApplication(ctx context.Context, id string, app *Application) error {
	return c.patch(ctx, "applications/"+url.PathEscape(id), app)
}

// DeleteApplication deletes the application with the given object id.
func (c *Client) DeleteApplication(ctx context.Context, id string) error {
	return c.delete(ctx, "applications/"+url.PathEscape(id))
}

// AddApplicationPassword adds a client secret to the application and returns
// the credential. The secret text is only available in this response.
func (c *Client) AddApplicationPassword(ctx context.Context, id, displayName string) (*PasswordCredential, error) {
	body := map[string]any{
		"passwordCredential": map[string]any{
			"displayName": displayName,
		},
	}
	cred := new(PasswordCredential)
	if err := c.post(ctx, "applications/"+url.PathEscape(id)+"/addPassword", body, cred); err != nil {
		return nil, err
	}
	return cred, nil
}
