// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package assets

// SensitivityLabel is a Purview sensitivity label definition.
type SensitivityLabel struct {
	Name        string `json:"name"         yaml:"name"         validate:"required"`
	DisplayName string `json:"display_name" yaml:"display_name" validate:"required"`
	Tooltip     string `json:"tooltip"      yaml:"tooltip"`
	// Priority orders labels, lower numbers are less sensitive.
	Priority int `json:"priority" yaml:"priority" validate:"gte=0"`
	// Parent is the name of the parent label for sub-labels, empty for top level.
	Parent     string           `json:"parent"     yaml:"parent"`
	Protection *LabelProtection `json:"protection" yaml:"protection"`
}

// LabelProtection describes the protection actions applied when the label is applied.
type LabelProtection struct {
	Encrypt        bool            `json:"encrypt"         yaml:"encrypt"`
	ContentMarking *ContentMarking `json:"content_marking" yaml:"content_marking"`
}

// ContentMarking describes header/footer/watermark text applied to labelled content.
type ContentMarking struct {
	HeaderText string `json:"header_text" yaml:"header_text"`
	FooterText string `json:"footer_text" yaml:"footer_text"`
	Watermark  string `json:"watermark"   yaml:"watermark"`
}
