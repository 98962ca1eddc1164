// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package assets

// SecurityGroupDefinition is an Entra ID security group definition.
type SecurityGroupDefinition struct {
	Name         string `json:"name"          yaml:"name"          validate:"required"`
	DisplayName  string `json:"display_name"  yaml:"display_name"  validate:"required"`
	MailNickname string `json:"mail_nickname" yaml:"mail_nickname" validate:"required"`
	Description  string `json:"description"   yaml:"description"`
}
