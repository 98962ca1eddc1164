// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package graph

import (
	"context"
	"fmt"
	"net/url"
)

// SensitivityLabelInfo is a published sensitivity label as seen by the
// information protection API.
type SensitivityLabelInfo struct {
	Id          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Tooltip     string `json:"tooltip,omitempty"`
	IsActive    bool   `json:"isActive,omitempty"`
	Sensitivity int    `json:"sensitivity,omitempty"`
}

// SensitiveTypeInfo is a built-in sensitive information type as seen by the
// data classification API.
type SensitiveTypeInfo struct {
	Id            string `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
	Description   string `json:"description,omitempty"`
	PublisherName string `json:"publisherName,omitempty"`
}

// GetSensitiveType returns the built-in sensitive information type with the
// given id.
func (c *Client) GetSensitiveType(ctx context.Context, id string) (*SensitiveTypeInfo, error) {
	info := new(SensitiveTypeInfo)
	if err := c.get(ctx, "dataClassification/sensitiveTypes/"+url.PathEscape(id), info); err != nil {
		return nil, err
	}
	return info, nil
}

// ListSensitivityLabels lists the sensitivity labels published in the tenant.
func (c *Client) ListSensitivityLabels(ctx context.Context) ([]SensitivityLabelInfo, error) {
	return listAs[SensitivityLabelInfo](ctx, c, "security/informationProtection/sensitivityLabels")
}

// FindSensitivityLabelByName returns the published label with the given name,
// or ErrNotFound.
func (c *Client) FindSensitivityLabelByName(ctx context.Context, name string) (*SensitivityLabelInfo, error) {
	labels, err := c.ListSensitivityLabels(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range labels {
		l := l
		if l.Name == name {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("%w: sensitivity label %s", ErrNotFound, name)
}
