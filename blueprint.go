// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package seclab

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// BlueprintEmpty is the name of the always-present blueprint with no members.
const BlueprintEmpty = "empty"

// Blueprint represents a named set of lab resources that has not yet been
// bound to a tenant. The contents of the sets are the map keys of the
// corresponding SecLab catalog maps.
type Blueprint struct {
	SitDefinitions      mapset.Set[string]
	SensitivityLabels   mapset.Set[string]
	DlpPolicies         mapset.Set[string]
	AdministrativeUnits mapset.Set[string]
	AppRegistrations    mapset.Set[string]
	SecurityGroups      mapset.Set[string]

	name            string
	wellKnownValues WellKnownValues
}

// WellKnownValues are values substituted into `${name}` placeholders in
// deployed resources, e.g. subscription_id, lab_user_domain, key_vault_name.
type WellKnownValues map[string]string

func newEmptyBlueprint() *Blueprint {
	return &Blueprint{
		name:                BlueprintEmpty,
		SitDefinitions:      mapset.NewSet[string](),
		SensitivityLabels:   mapset.NewSet[string](),
		DlpPolicies:         mapset.NewSet[string](),
		AdministrativeUnits: mapset.NewSet[string](),
		AppRegistrations:    mapset.NewSet[string](),
		SecurityGroups:      mapset.NewSet[string](),
	}
}

// Name returns the name of the blueprint.
func (b *Blueprint) Name() string {
	return b.name
}

// WellKnownValues returns the values set by WithWellKnownValues.
func (b *Blueprint) WellKnownValues() WellKnownValues {
	return b.wellKnownValues
}

// WithWellKnownValues sets the well-known values on the blueprint and returns
// it. The deployment package requires these to be set before a blueprint can
// be added to a tenant.
func (b *Blueprint) WithWellKnownValues(wkv WellKnownValues) *Blueprint {
	b.wellKnownValues = wkv
	return b
}

// CopyBlueprint returns a copy of the requested blueprint by name.
// The returned struct can be mutated without affecting the catalog.
func (s *SecLab) CopyBlueprint(name string) (*Blueprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bp, ok := s.blueprints[name]
	if !ok {
		return nil, fmt.Errorf("blueprint %s not found", name)
	}
	return &Blueprint{
		name:                bp.name,
		SitDefinitions:      bp.SitDefinitions.Clone(),
		SensitivityLabels:   bp.SensitivityLabels.Clone(),
		DlpPolicies:         bp.DlpPolicies.Clone(),
		AdministrativeUnits: bp.AdministrativeUnits.Clone(),
		AppRegistrations:    bp.AppRegistrations.Clone(),
		SecurityGroups:      bp.SecurityGroups.Clone(),
	}, nil
}
