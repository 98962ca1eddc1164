// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package assets

import (
	"fmt"
	"regexp"
)

// SitDefinition is a custom Sensitive Information Type definition.
// The pattern and keywords are declarative configuration for the Purview
// classification service, the matching itself runs in the service.
type SitDefinition struct {
	Name        string   `json:"name"         yaml:"name"         validate:"required"`
	DisplayName string   `json:"display_name" yaml:"display_name" validate:"required"`
	Description string   `json:"description"  yaml:"description"`
	Pattern     string   `json:"pattern"      yaml:"pattern"      validate:"required"`
	Keywords    []string `json:"keywords"     yaml:"keywords"`
	// Confidence is the match confidence level reported to Purview, 0-100.
	Confidence int `json:"confidence" yaml:"confidence" validate:"gte=0,lte=100"`
	// TestDataFormat describes how to generate strings that match the pattern,
	// `#` is a digit, `?` is an uppercase letter, all other runes are literal.
	// E.g. `PROJ-2025-####`.
	TestDataFormat string `json:"test_data_format" yaml:"test_data_format"`
	// BuiltIn is set when the definition was fetched from the service rather
	// than read from a library.
	BuiltIn bool `json:"-" yaml:"-"`
}

// CompilePattern compiles the SIT regex pattern.
func (s *SitDefinition) CompilePattern() (*regexp.Regexp, error) {
	re, err := regexp.Compile(s.Pattern)
	if err != nil {
		return nil, fmt.Errorf("SitDefinition.CompilePattern: invalid pattern for SIT %s: %w", s.Name, err)
	}
	return re, nil
}
