// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package graph

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Azure/seclab/to"
)

// FindGroupByMailNickname returns the group with the given mail nickname, or
// ErrNotFound. Mail nicknames are unique per tenant so this is the stable
// lookup key for reconciliation.
func (c *Client) FindGroupByMailNickname(ctx context.Context, mailNickname string) (*Group, error) {
	path := filterPath("groups", fmt.Sprintf("mailNickname eq '%s'", escapeODataLiteral(mailNickname)))
	groups, err := listAs[Group](ctx, c, path)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: group with mailNickname %s", ErrNotFound, mailNickname)
	}
	return &groups[0], nil
}

// CreateSecurityGroup creates a security group with the supplied display name,
// mail nickname and description.
func (c *Client) CreateSecurityGroup(ctx context.Context, displayName, mailNickname, description string) (*Group, error) {
	body := &Group{
		DisplayName:     displayName,
		MailNickname:    mailNickname,
		Description:     description,
		MailEnabled:     to.Ptr(false),
		SecurityEnabled: to.Ptr(true),
	}
	created := new(Group)
	if err := c.post(ctx, "groups", body, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateGroup patches the group with the given id.
func (c *Client) UpdateGroup(ctx context.Context, id string, group *Group) error {
	return c.patch(ctx, "groups/"+url.PathEscape(id), group)
}

// DeleteGroup deletes the group with the given id.
func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	return c.delete(ctx, "groups/"+url.PathEscape(id))
}

// AddGroupMember adds a directory object to the group.
func (c *Client) AddGroupMember(ctx context.Context, groupId, memberId string) error {
	body := &directoryObjectRef{
		ODataId: c.url("directoryObjects/" + url.PathEscape(memberId)),
	}
	return c.post(ctx, "groups/"+url.PathEscape(groupId)+"/members/$ref", body, nil)
}

// ListGroupMembers lists the members of the group.
func (c *Client) ListGroupMembers(ctx context.Context, groupId string) ([]Identity, error) {
	return listAs[Identity](ctx, c, "groups/"+url.PathEscape(groupId)+"/members")
}
