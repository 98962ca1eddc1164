// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package processor

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullLibrary processes the full testdata library and checks the counts
// and metadata.
func TestFullLibrary(t *testing.T) {
	t.Parallel()

	fs := os.DirFS("./testdata")
	pc := NewClient(fs)
	res := NewResult()
	require.NoError(t, pc.Process(res))

	assert.Len(t, res.SitDefinitions, 2)
	assert.Len(t, res.SensitivityLabels, 2)
	assert.Len(t, res.DlpPolicies, 1)
	assert.Len(t, res.AdministrativeUnits, 1)
	assert.Len(t, res.AppRegistrations, 1)
	assert.Len(t, res.SecurityGroups, 2)
	assert.Len(t, res.LibDefaultValues, 2)

	assert.Equal(t, 2, res.LibBlueprints["full"].SitDefinitions.Cardinality())
	assert.Equal(t, 2, res.LibBlueprints["full"].SensitivityLabels.Cardinality())
	assert.Equal(t, 1, res.LibBlueprints["full"].DlpPolicies.Cardinality())
	assert.Equal(t, 2, res.LibBlueprints["full"].SecurityGroups.Cardinality())
	assert.Len(t, res.LibBlueprintOverrides, 1)
	assert.Equal(t, "full", res.LibBlueprintOverrides["identity-only"].BaseBlueprint)

	assert.Equal(t, "test", res.Metadata.Name)
	assert.Equal(t, "test display name.", res.Metadata.DisplayName)
	assert.Equal(t, "test description", res.Metadata.Description)
	assert.Equal(t, []LibMetadataDependency{
		{
			Path: "platform/baseline",
			Ref:  "2025.06.0",
		},
		{
			CustomURL: "../testdir",
		},
	}, res.Metadata.Dependencies)
}

// TestYamlDecode checks that YAML library files decode the same as JSON.
func TestYamlDecode(t *testing.T) {
	t.Parallel()

	fs := os.DirFS("./yamllib")
	pc := NewClient(fs)
	res := NewResult()
	require.NoError(t, pc.Process(res))
	assert.Len(t, res.SitDefinitions, 1)
	assert.Len(t, res.LibBlueprints, 1)
	assert.Equal(t, 1, res.LibBlueprints["yaml-only"].SitDefinitions.Cardinality())
}

// TestProcessSitDefinitionValid tests the processing of a valid SIT definition.
func TestProcessSitDefinitionValid(t *testing.T) {
	t.Parallel()

	sampleData := []byte(`{
		"name": "test-sit",
		"display_name": "Test SIT",
		"pattern": "T-[0-9]{3}",
		"confidence": 70,
		"test_data_format": "T-###"
	}`)
	res := NewResult()
	unmar := NewUnmarshaler(sampleData, ".json")
	require.NoError(t, processSitDefinition(res, unmar))
	assert.Len(t, res.SitDefinitions, 1)
	assert.Equal(t, "Test SIT", res.SitDefinitions["test-sit"].DisplayName)
}

// TestProcessSitDefinitionBadPattern tests that an invalid regex pattern is rejected.
func TestProcessSitDefinitionBadPattern(t *testing.T) {
	t.Parallel()

	sampleData := []byte(`{
		"name": "test-sit",
		"display_name": "Test SIT",
		"pattern": "T-[0-9{3}"
	}`)
	res := NewResult()
	unmar := NewUnmarshaler(sampleData, ".json")
	err := processSitDefinition(res, unmar)
	assert.ErrorIs(t, err, ErrValidation)
}

// TestProcessSitDefinitionNoName tests that a missing name is rejected.
func TestProcessSitDefinitionNoName(t *testing.T) {
	t.Parallel()

	sampleData := []byte(`{
		"display_name": "Test SIT",
		"pattern": "T-[0-9]{3}"
	}`)
	res := NewResult()
	unmar := NewUnmarshaler(sampleData, ".json")
	err := processSitDefinition(res, unmar)
	assert.ErrorIs(t, err, ErrNoNameProvided)
}

// TestProcessSitDefinitionDuplicate tests that a duplicate name is rejected.
func TestProcessSitDefinitionDuplicate(t *testing.T) {
	t.Parallel()

	sampleData := []byte(`{
		"name": "test-sit",
		"display_name": "Test SIT",
		"pattern": "T-[0-9]{3}"
	}`)
	res := NewResult()
	unmar := NewUnmarshaler(sampleData, ".json")
	require.NoError(t, processSitDefinition(res, unmar))
	assert.ErrorIs(t, processSitDefinition(res, unmar), ErrResourceAlreadyExists)
}

// TestProcessDlpPolicyInvalidMode tests that an unknown enforcement mode is rejected.
func TestProcessDlpPolicyInvalidMode(t *testing.T) {
	t.Parallel()

	sampleData := []byte(`{
		"name": "test-policy",
		"display_name": "Test policy",
		"mode": "Silent",
		"locations": ["SharePoint"],
		"rules": [
			{"name": "r1", "sensitive_info_types": [{"name": "test-sit", "min_count": 1}]}
		]
	}`)
	res := NewResult()
	unmar := NewUnmarshaler(sampleData, ".json")
	assert.ErrorIs(t, processDlpPolicy(res, unmar), ErrValidation)
}

// TestProcessAdministrativeUnitDynamicNeedsRule tests that a dynamic AU
// without a membership rule is rejected.
func TestProcessAdministrativeUnitDynamicNeedsRule(t *testing.T) {
	t.Parallel()

	sampleData := []byte(`{
		"name": "dyn",
		"display_name": "Dynamic AU",
		"membership_type": "dynamic"
	}`)
	res := NewResult()
	unmar := NewUnmarshaler(sampleData, ".json")
	assert.ErrorIs(t, processAdministrativeUnit(res, unmar), ErrValidation)
}

// TestProcessAppRegistrationSecretNeedsName tests that generate_secret without
// a key vault secret name is rejected.
func TestProcessAppRegistrationSecretNeedsName(t *testing.T) {
	t.Parallel()

	sampleData := []byte(`{
		"name": "app",
		"display_name": "App",
		"generate_secret": true
	}`)
	res := NewResult()
	unmar := NewUnmarshaler(sampleData, ".json")
	assert.ErrorIs(t, processAppRegistration(res, unmar), ErrValidation)
}

// TestProcessBlueprintOverrideValid tests the processing of a valid blueprint override.
func TestProcessBlueprintOverrideValid(t *testing.T) {
	t.Parallel()

	sampleData := []byte(`{
		"name": "test",
		"base_blueprint": "base",
		"sit_definitions_to_add": ["a"],
		"sit_definitions_to_remove": ["b"],
		"security_groups_to_add": ["c"]
	}`)
	res := NewResult()
	unmar := NewUnmarshaler(sampleData, ".json")
	require.NoError(t, processBlueprintOverride(res, unmar))
	assert.Len(t, res.LibBlueprintOverrides, 1)
	assert.Equal(t, 1, res.LibBlueprintOverrides["test"].SitDefinitionsToAdd.Cardinality())
	assert.Equal(t, 1, res.LibBlueprintOverrides["test"].SitDefinitionsToRemove.Cardinality())
	assert.Equal(t, 1, res.LibBlueprintOverrides["test"].SecurityGroupsToAdd.Cardinality())
}

// TestProcessBlueprintInvalidJson tests that malformed JSON surfaces the decode error.
func TestProcessBlueprintInvalidJson(t *testing.T) {
	t.Parallel()

	sampleData := []byte(`{"name": "test", "sit_definitions": [}`)
	res := NewResult()
	unmar := NewUnmarshaler(sampleData, ".json")
	assert.ErrorIs(t, processBlueprint(res, unmar), ErrUnmarshaling)
}

// TestProcessDefaultValuesDuplicateFile tests that a second default values
// file is rejected.
func TestProcessDefaultValuesDuplicateFile(t *testing.T) {
	t.Parallel()

	sampleData := []byte(`{"defaults": [{"name": "a", "value": "1"}]}`)
	res := NewResult()
	unmar := NewUnmarshaler(sampleData, ".json")
	require.NoError(t, processDefaultValues(res, unmar))
	assert.ErrorIs(t, processDefaultValues(res, unmar), ErrMultipleDefaultValuesFileFound)
}
