// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package processor

import (
	"encoding/json"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v3"
)

// LibBlueprint represents a blueprint definition file.
// It is used to construct the Blueprint struct and is then added to the SecLab struct.
type LibBlueprint struct {
	Name                string             `json:"name"                 yaml:"name"`
	SitDefinitions      mapset.Set[string] `json:"sit_definitions"      yaml:"sit_definitions"`
	SensitivityLabels   mapset.Set[string] `json:"sensitivity_labels"   yaml:"sensitivity_labels"`
	DlpPolicies         mapset.Set[string] `json:"dlp_policies"         yaml:"dlp_policies"`
	AdministrativeUnits mapset.Set[string] `json:"administrative_units" yaml:"administrative_units"`
	AppRegistrations    mapset.Set[string] `json:"app_registrations"    yaml:"app_registrations"`
	SecurityGroups      mapset.Set[string] `json:"security_groups"      yaml:"security_groups"`
}

type libBlueprintUnmarshaler struct {
	Name                string   `json:"name"                 yaml:"name"`
	SitDefinitions      []string `json:"sit_definitions"      yaml:"sit_definitions"`
	SensitivityLabels   []string `json:"sensitivity_labels"   yaml:"sensitivity_labels"`
	DlpPolicies         []string `json:"dlp_policies"         yaml:"dlp_policies"`
	AdministrativeUnits []string `json:"administrative_units" yaml:"administrative_units"`
	AppRegistrations    []string `json:"app_registrations"    yaml:"app_registrations"`
	SecurityGroups      []string `json:"security_groups"      yaml:"security_groups"`
}

func (lb *LibBlueprint) fromUnmarshaler(tmp libBlueprintUnmarshaler) {
	lb.Name = tmp.Name
	lb.SitDefinitions = mapset.NewSet[string](tmp.SitDefinitions...)
	lb.SensitivityLabels = mapset.NewSet[string](tmp.SensitivityLabels...)
	lb.DlpPolicies = mapset.NewSet[string](tmp.DlpPolicies...)
	lb.AdministrativeUnits = mapset.NewSet[string](tmp.AdministrativeUnits...)
	lb.AppRegistrations = mapset.NewSet[string](tmp.AppRegistrations...)
	lb.SecurityGroups = mapset.NewSet[string](tmp.SecurityGroups...)
}

// UnmarshalJSON creates a LibBlueprint from the supplied JSON bytes.
func (lb *LibBlueprint) UnmarshalJSON(data []byte) error {
	tmp := libBlueprintUnmarshaler{}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("LibBlueprint.UnmarshalJSON: json.Unmarshal error: %w", err)
	}
	lb.fromUnmarshaler(tmp)
	return nil
}

// UnmarshalYAML creates a LibBlueprint from the supplied YAML node.
func (lb *LibBlueprint) UnmarshalYAML(n *yaml.Node) error {
	tmp := libBlueprintUnmarshaler{}
	if err := n.Decode(&tmp); err != nil {
		return fmt.Errorf("LibBlueprint.UnmarshalYAML: yaml.Node.Decode error: %w", err)
	}
	lb.fromUnmarshaler(tmp)
	return nil
}
