// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package processor

// LibDefaultValues represents the optional default values file of a library.
// At most one such file may exist per library.
type LibDefaultValues struct {
	Defaults []LibDefaultValue `json:"defaults" yaml:"defaults"`
}

// LibDefaultValue is a named well-known value that is substituted into
// `${name}` placeholders in deployed resources.
type LibDefaultValue struct {
	Name        string `json:"name"        yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Value       string `json:"value"       yaml:"value"`
}
