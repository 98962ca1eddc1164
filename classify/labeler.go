// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package classify

import (
	"context"
	"fmt"

	"github.com/Azure/seclab/graph"
	"github.com/google/uuid"
)

// NewLabelAction returns an Action that applies sensitivity labels via
// Microsoft Graph. labels maps catalog label names to published label GUIDs;
// a manifest label that parses as a GUID is used as-is. defaultDriveId is used
// for path-addressed items; pass empty when every item carries its own
// driveId and itemId.
func NewLabelAction(g *graph.Client, defaultDriveId string, labels map[string]string, justification string) Action {
	return func(ctx context.Context, item Item) error {
		labelId := item.Label
		if _, err := uuid.Parse(labelId); err != nil {
			id, ok := labels[item.Label]
			if !ok {
				return fmt.Errorf("label %s is not a published label", item.Label)
			}
			labelId = id
		}

		driveId, itemId := item.DriveId, item.ItemId
		if itemId == "" {
			if defaultDriveId == "" {
				return fmt.Errorf("item %s has no driveId and no default drive is set", item.Path)
			}
			di, err := g.GetDriveItemByPath(ctx, defaultDriveId, item.Path)
			if err != nil {
				return fmt.Errorf("resolving %s: %w", item.Path, err)
			}
			driveId, itemId = defaultDriveId, di.Id
		}
		return g.AssignSensitivityLabel(ctx, driveId, itemId, labelId, justification) //nolint:wrapcheck
	}
}
