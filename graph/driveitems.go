// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package graph

import (
	"context"
	"net/url"
)

// ListDriveItemChildren lists the children of a drive item. Use "root" as the
// itemId for the drive root.
func (c *Client) ListDriveItemChildren(ctx context.Context, driveId, itemId string) ([]DriveItem, error) {
	return listAs[DriveItem](ctx, c,
		"drives/"+url.PathEscape(driveId)+"/items/"+url.PathEscape(itemId)+"/children")
}

// GetDriveItemByPath returns the drive item at the given path relative to the
// drive root.
func (c *Client) GetDriveItemByPath(ctx context.Context, driveId, path string) (*DriveItem, error) {
	item := new(DriveItem)
	if err := c.get(ctx, "drives/"+url.PathEscape(driveId)+"/root:/"+path, item); err != nil {
		return nil, err
	}
	return item, nil
}

// AssignSensitivityLabel applies a sensitivity label to a drive item. The
// labelling itself is performed asynchronously by the service.
func (c *Client) AssignSensitivityLabel(ctx context.Context, driveId, itemId, labelId, justification string) error {
	body := map[string]any{
		"sensitivityLabelId": labelId,
		"assignmentMethod":   "standard",
	}
	if justification != "" {
		body["justificationText"] = justification
	}
	return c.post(ctx,
		"drives/"+url.PathEscape(driveId)+"/items/"+url.PathEscape(itemId)+"/assignSensitivityLabel",
		body, nil)
}

// DeleteDriveItem deletes a drive item.
func (c *Client) DeleteDriveItem(ctx context.Context, driveId, itemId string) error {
	return c.delete(ctx, "drives/"+url.PathEscape(driveId)+"/items/"+url.PathEscape(itemId))
}
