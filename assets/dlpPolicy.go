// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package assets

// DlpPolicy is a Purview Data Loss Prevention policy definition.
type DlpPolicy struct {
	Name        string `json:"name"         yaml:"name"         validate:"required"`
	DisplayName string `json:"display_name" yaml:"display_name" validate:"required"`
	Description string `json:"description"  yaml:"description"`
	// Mode controls enforcement. Audit logs only, AuditWithNotify also shows
	// policy tips, Enforce blocks the action.
	Mode string `json:"mode" yaml:"mode" validate:"required,oneof=Audit AuditWithNotify Enforce"`
	// Locations are the workloads the policy applies to, e.g.
	// "SharePoint", "OneDrive", "Exchange", "Teams".
	Locations []string  `json:"locations" yaml:"locations" validate:"min=1"`
	Rules     []DlpRule `json:"rules"     yaml:"rules"     validate:"min=1,dive"`
}

// DlpRule is a single rule within a DLP policy.
type DlpRule struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	// Sits reference sensitive information types by name, either custom
	// (defined in a library) or built-in (fetched by ID from the service).
	Sits []DlpSitRef `json:"sensitive_info_types" yaml:"sensitive_info_types" validate:"min=1,dive"`
	// Actions are taken when the rule matches, e.g. "BlockAccess", "NotifyUser",
	// "GenerateIncidentReport".
	Actions []string `json:"actions" yaml:"actions"`
}

// DlpSitRef references a sensitive information type with match count bounds.
type DlpSitRef struct {
	Name     string `json:"name"      yaml:"name"      validate:"required"`
	MinCount int    `json:"min_count" yaml:"min_count" validate:"gte=0"`
	// MaxCount of 0 means unbounded.
	MaxCount int `json:"max_count" yaml:"max_count" validate:"gte=0"`
	// BuiltInId is set when the reference is to a service built-in SIT rather
	// than one defined in a library.
	BuiltInId string `json:"built_in_id" yaml:"built_in_id"`
}
