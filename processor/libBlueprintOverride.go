// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package processor

import (
	"encoding/json"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v3"
)

// LibBlueprintOverride represents a blueprint override definition file.
// It derives a new blueprint from a base blueprint by adding and removing members.
type LibBlueprintOverride struct {
	Name                        string
	BaseBlueprint               string
	SitDefinitionsToAdd         mapset.Set[string]
	SitDefinitionsToRemove      mapset.Set[string]
	SensitivityLabelsToAdd      mapset.Set[string]
	SensitivityLabelsToRemove   mapset.Set[string]
	DlpPoliciesToAdd            mapset.Set[string]
	DlpPoliciesToRemove         mapset.Set[string]
	AdministrativeUnitsToAdd    mapset.Set[string]
	AdministrativeUnitsToRemove mapset.Set[string]
	AppRegistrationsToAdd       mapset.Set[string]
	AppRegistrationsToRemove    mapset.Set[string]
	SecurityGroupsToAdd         mapset.Set[string]
	SecurityGroupsToRemove      mapset.Set[string]
}

type libBlueprintOverrideUnmarshaler struct {
	Name                        string   `json:"name"                           yaml:"name"`
	BaseBlueprint               string   `json:"base_blueprint"                 yaml:"base_blueprint"`
	SitDefinitionsToAdd         []string `json:"sit_definitions_to_add"         yaml:"sit_definitions_to_add"`
	SitDefinitionsToRemove      []string `json:"sit_definitions_to_remove"      yaml:"sit_definitions_to_remove"`
	SensitivityLabelsToAdd      []string `json:"sensitivity_labels_to_add"      yaml:"sensitivity_labels_to_add"`
	SensitivityLabelsToRemove   []string `json:"sensitivity_labels_to_remove"   yaml:"sensitivity_labels_to_remove"`
	DlpPoliciesToAdd            []string `json:"dlp_policies_to_add"            yaml:"dlp_policies_to_add"`
	DlpPoliciesToRemove         []string `json:"dlp_policies_to_remove"         yaml:"dlp_policies_to_remove"`
	AdministrativeUnitsToAdd    []string `json:"administrative_units_to_add"    yaml:"administrative_units_to_add"`
	AdministrativeUnitsToRemove []string `json:"administrative_units_to_remove" yaml:"administrative_units_to_remove"`
	AppRegistrationsToAdd       []string `json:"app_registrations_to_add"       yaml:"app_registrations_to_add"`
	AppRegistrationsToRemove    []string `json:"app_registrations_to_remove"    yaml:"app_registrations_to_remove"`
	SecurityGroupsToAdd         []string `json:"security_groups_to_add"         yaml:"security_groups_to_add"`
	SecurityGroupsToRemove      []string `json:"security_groups_to_remove"      yaml:"security_groups_to_remove"`
}

func (lo *LibBlueprintOverride) fromUnmarshaler(tmp libBlueprintOverrideUnmarshaler) {
	lo.Name = tmp.Name
	lo.BaseBlueprint = tmp.BaseBlueprint
	lo.SitDefinitionsToAdd = mapset.NewSet[string](tmp.SitDefinitionsToAdd...)
	lo.SitDefinitionsToRemove = mapset.NewSet[string](tmp.SitDefinitionsToRemove...)
	lo.SensitivityLabelsToAdd = mapset.NewSet[string](tmp.SensitivityLabelsToAdd...)
	lo.SensitivityLabelsToRemove = mapset.NewSet[string](tmp.SensitivityLabelsToRemove...)
	lo.DlpPoliciesToAdd = mapset.NewSet[string](tmp.DlpPoliciesToAdd...)
	lo.DlpPoliciesToRemove = mapset.NewSet[string](tmp.DlpPoliciesToRemove...)
	lo.AdministrativeUnitsToAdd = mapset.NewSet[string](tmp.AdministrativeUnitsToAdd...)
	lo.AdministrativeUnitsToRemove = mapset.NewSet[string](tmp.AdministrativeUnitsToRemove...)
	lo.AppRegistrationsToAdd = mapset.NewSet[string](tmp.AppRegistrationsToAdd...)
	lo.AppRegistrationsToRemove = mapset.NewSet[string](tmp.AppRegistrationsToRemove...)
	lo.SecurityGroupsToAdd = mapset.NewSet[string](tmp.SecurityGroupsToAdd...)
	lo.SecurityGroupsToRemove = mapset.NewSet[string](tmp.SecurityGroupsToRemove...)
}

// UnmarshalJSON creates a LibBlueprintOverride from the supplied JSON bytes.
func (lo *LibBlueprintOverride) UnmarshalJSON(data []byte) error {
	tmp := libBlueprintOverrideUnmarshaler{}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("LibBlueprintOverride.UnmarshalJSON: json.Unmarshal error: %w", err)
	}
	lo.fromUnmarshaler(tmp)
	return nil
}

// UnmarshalYAML creates a LibBlueprintOverride from the supplied YAML node.
func (lo *LibBlueprintOverride) UnmarshalYAML(n *yaml.Node) error {
	tmp := libBlueprintOverrideUnmarshaler{}
	if err := n.Decode(&tmp); err != nil {
		return fmt.Errorf("LibBlueprintOverride.UnmarshalYAML: yaml.Node.Decode error: %w", err)
	}
	lo.fromUnmarshaler(tmp)
	return nil
}
