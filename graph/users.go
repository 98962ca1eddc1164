// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package graph

import (
	"context"
	"net/url"
)

// GetUser returns the user with the given id or userPrincipalName.
func (c *Client) GetUser(ctx context.Context, idOrUpn string) (*User, error) {
	user := new(User)
	if err := c.get(ctx, "users/"+url.PathEscape(idOrUpn), user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers lists users matching the supplied OData filter. An empty filter
// lists all users, paged.
func (c *Client) ListUsers(ctx context.Context, filter string) ([]User, error) {
	path := "users"
	if filter != "" {
		path = filterPath("users", filter)
	}
	return listAs[User](ctx, c, path)
}
