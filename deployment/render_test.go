// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deployment

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Azure/seclab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderPurviewAssets tests that compliance payloads are rendered for the
// scenario's SITs, labels and DLP policies.
func TestRenderPurviewAssets(t *testing.T) {
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

	rec := NewReconciler(tenant, nil, nil)
	dir := t.TempDir()
	files, err := rec.RenderPurviewAssets(tenant.Scenario("lab1"), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"dlp_policy_badge-audit.json",
		"sensitivity_label_internal.json",
		"sit_definition_badge-number.json",
	}, files)

	data, err := os.ReadFile(filepath.Join(dir, "sensitivity_label_internal.json"))
	require.NoError(t, err)
	var rendered struct {
		Kind     string `json:"kind"`
		Scenario string `json:"scenario"`
		Name     string `json:"name"`
		Payload  struct {
			DisplayName string `json:"display_name"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &rendered))
	assert.Equal(t, "sensitivity_label", rendered.Kind)
	assert.Equal(t, "lab1", rendered.Scenario)
	assert.Equal(t, "internal", rendered.Name)
	assert.Equal(t, "LAB1-Internal", rendered.Payload.DisplayName)
}
