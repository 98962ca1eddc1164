// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deployment

import (
	"context"
	"os"
	"testing"

	"github.com/Azure/seclab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *seclab.SecLab {
	t.Helper()
	s := seclab.NewSecLab(nil)
	require.NoError(t, s.Init(context.Background(), os.DirFS("../testdata/simple")))
	return s
}

// TestAddScenario tests building a scenario from a blueprint with a prefix.
func TestAddScenario(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog(t)
	bp, err := cat.CopyBlueprint("starter")
	require.NoError(t, err)
	bp.WithWellKnownValues(seclab.WellKnownValues{})

	tenant := NewTenant(cat)
	require.NoError(t, tenant.AddScenario(context.Background(), &ScenarioAddRequest{
		Name:      "lab1",
		Prefix:    "LAB1-",
		Blueprint: bp,
	}))

	sc := tenant.Scenario("lab1")
	require.NotNil(t, sc)
	assert.Equal(t, []string{"lab1"}, tenant.ScenarioNames())

	grp := sc.SecurityGroups()["analysts"]
	require.NotNil(t, grp)
	assert.Equal(t, "LAB1-Security analysts", grp.DisplayName)
	assert.Equal(t, "LAB1-analysts", grp.MailNickname)

	lbl := sc.SensitivityLabels()["internal"]
	require.NotNil(t, lbl)
	assert.Equal(t, "LAB1-Internal", lbl.DisplayName)
}

// TestAddScenarioExpandsPlaceholders tests that `${name}` placeholders are
// substituted from well-known values merged over library defaults.
func TestAddScenarioExpandsPlaceholders(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog(t)
	bp, err := cat.CopyBlueprint("starter")
	require.NoError(t, err)
	bp.WithWellKnownValues(seclab.WellKnownValues{})

	tenant := NewTenant(cat)
	require.NoError(t, tenant.AddScenario(context.Background(), &ScenarioAddRequest{
		Name:      "lab1",
		Blueprint: bp,
	}))

	sc := tenant.Scenario("lab1")
	// org_name comes from the library default values.
	assert.Equal(t, "Lab analysts for Contoso.", sc.SecurityGroups()["analysts"].Description)
	assert.Equal(t, "Internal - Contoso", sc.SensitivityLabels()["internal"].Protection.ContentMarking.FooterText)
}

// TestAddScenarioWellKnownValueOverridesDefault tests that an explicit
// well-known value wins over the library default.
func TestAddScenarioWellKnownValueOverridesDefault(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog(t)
	bp, err := cat.CopyBlueprint("starter")
	require.NoError(t, err)
	bp.WithWellKnownValues(seclab.WellKnownValues{"org_name": "Fabrikam"})

	tenant := NewTenant(cat)
	require.NoError(t, tenant.AddScenario(context.Background(), &ScenarioAddRequest{
		Name:      "lab1",
		Blueprint: bp,
	}))

	sc := tenant.Scenario("lab1")
	assert.Equal(t, "Lab analysts for Fabrikam.", sc.SecurityGroups()["analysts"].Description)
}

// TestAddScenarioCopiesCatalog tests that scenario resources are deep copies,
// not aliases of the catalog resources.
func TestAddScenarioCopiesCatalog(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog(t)
	bp, err := cat.CopyBlueprint("starter")
	require.NoError(t, err)
	bp.WithWellKnownValues(seclab.WellKnownValues{})

	tenant := NewTenant(cat)
	require.NoError(t, tenant.AddScenario(context.Background(), &ScenarioAddRequest{
		Name:      "lab1",
		Prefix:    "LAB1-",
		Blueprint: bp,
	}))

	src, err := cat.SecurityGroup("analysts")
	require.NoError(t, err)
	assert.Equal(t, "Security analysts", src.DisplayName)
}

// TestAddScenarioRequiresWellKnownValues tests that a blueprint without
// well-known values set is rejected.
func TestAddScenarioRequiresWellKnownValues(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog(t)
	bp, err := cat.CopyBlueprint("starter")
	require.NoError(t, err)

	tenant := NewTenant(cat)
	err = tenant.AddScenario(context.Background(), &ScenarioAddRequest{
		Name:      "lab1",
		Blueprint: bp,
	})
	assert.ErrorContains(t, err, "well known values not set")
}

// TestAddScenarioDuplicateName tests that scenario names are unique per tenant.
func TestAddScenarioDuplicateName(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog(t)
	tenant := NewTenant(cat)
	for i := 0; i < 2; i++ {
		bp, err := cat.CopyBlueprint(seclab.BlueprintEmpty)
		require.NoError(t, err)
		bp.WithWellKnownValues(seclab.WellKnownValues{})
		err = tenant.AddScenario(context.Background(), &ScenarioAddRequest{
			Name:      "lab1",
			Blueprint: bp,
		})
		if i == 0 {
			require.NoError(t, err)
			continue
		}
		assert.ErrorContains(t, err, "already exists")
	}
}

// TestRoleAssignmentName tests that role assignment names are deterministic
// and vary with each input.
func TestRoleAssignmentName(t *testing.T) {
	t.Parallel()

	a := RoleAssignmentName("/subscriptions/s1", "role1", "sp1")
	b := RoleAssignmentName("/subscriptions/s1", "role1", "sp1")
	c := RoleAssignmentName("/subscriptions/s1", "role1", "sp2")
	d := RoleAssignmentName("/subscriptions/s2", "role1", "sp1")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Len(t, a, 36)
}
