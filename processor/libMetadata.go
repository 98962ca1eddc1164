// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package processor

// LibMetadata represents the metadata of a lab library member.
type LibMetadata struct {
	Name        string `json:"name"         yaml:"name"`         // The name of the library member
	DisplayName string `json:"display_name" yaml:"display_name"` // The display name of the library member
	Description string `json:"description"  yaml:"description"`  // The description of the library member
	// The dependencies of the library member
	Dependencies []LibMetadataDependency `json:"dependencies" yaml:"dependencies"`
	// The relative path to the library member, e.g. "labs/purview-dlp"
	Path string `json:"path" yaml:"path"`
}

// LibMetadataDependency represents a dependency of a library member.
// Use either Path + Ref or CustomURL.
type LibMetadataDependency struct {
	// The relative path to the library member within the lab library, e.g. "labs/purview-dlp"
	Path string `json:"path" yaml:"path"`
	Ref  string `json:"ref"  yaml:"ref"` // The calver tag of the library member, e.g. "2025.06.0"
	// The custom URL (go-getter path) of the library member, used when the
	// library member is not in the well-known lab library
	CustomURL string `json:"custom_url" yaml:"custom_url"`
}
