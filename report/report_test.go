// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Azure/seclab/classify"
	"github.com/Azure/seclab/deployment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seededLedger creates a ledger with one finished run of mixed outcomes and
// returns it together with the run id.
func seededLedger(t *testing.T) (*classify.Ledger, int64) {
	t.Helper()
	ctx := context.Background()

	l, err := classify.OpenLedger(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	runId, err := l.BeginRun(ctx, "lab1", false)
	require.NoError(t, err)
	require.NoError(t, l.RecordResults(ctx, runId, []classify.ItemResult{
		{Item: classify.Item{Path: "docs/a.txt", Label: "internal"}, Outcome: classify.OutcomeSucceeded, Attempts: 1},
		{Item: classify.Item{Path: "docs/b.txt", Label: "internal"}, Outcome: classify.OutcomeSucceeded, Attempts: 3},
		{Item: classify.Item{Path: "docs/c.txt", Label: "internal"}, Outcome: classify.OutcomeFailed, Attempts: 5, Error: "throttled"},
		{Item: classify.Item{Path: "docs/d.txt", Label: "internal"}, Outcome: classify.OutcomeSkipped},
	}))
	require.NoError(t, l.FinishRun(ctx, runId))
	return l, runId
}

// TestBuild tests the classification summary over a ledger run.
func TestBuild(t *testing.T) {
	t.Parallel()

	l, runId := seededLedger(t)
	rep, err := Build(context.Background(), l, runId, nil)
	require.NoError(t, err)

	assert.Equal(t, "lab1", rep.Scenario)
	assert.Equal(t, runId, rep.RunId)
	assert.Equal(t, 4, rep.Classification.Total)
	assert.Equal(t, 2, rep.Classification.Succeeded)
	assert.Equal(t, 1, rep.Classification.Failed)
	assert.Equal(t, 1, rep.Classification.Skipped)
	assert.Equal(t, 2, rep.Classification.Retried)
	assert.False(t, rep.Classification.DryRun)
	assert.Nil(t, rep.Deployment)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "docs/c.txt", rep.Failures[0].Item.Path)
	assert.Equal(t, "throttled", rep.Failures[0].Error)
}

// TestBuildWithDeployment tests that an apply result is folded in.
func TestBuildWithDeployment(t *testing.T) {
	t.Parallel()

	l, runId := seededLedger(t)
	apply := &deployment.ApplyResult{
		Scenario: "lab1",
		Duration: 3 * time.Second,
		Results: []deployment.ResourceResult{
			{Kind: "securityGroup", Name: "analysts", Action: deployment.ActionCreated},
			{Kind: "application", Name: "scanner", Action: deployment.ActionUnchanged},
			{Kind: "roleAssignment", Name: "scanner", Action: deployment.ActionFailed, Error: "denied"},
		},
	}
	rep, err := Build(context.Background(), l, runId, apply)
	require.NoError(t, err)

	require.NotNil(t, rep.Deployment)
	assert.Equal(t, 1, rep.Deployment.Counts[deployment.ActionCreated])
	assert.Equal(t, 1, rep.Deployment.Counts[deployment.ActionUnchanged])
	assert.Equal(t, 3*time.Second, rep.Deployment.Duration)
	require.Len(t, rep.Deployment.Failed, 1)
	assert.Equal(t, "roleAssignment", rep.Deployment.Failed[0].Kind)
}

// TestBuildUnknownRun tests that the ledger sentinel is surfaced.
func TestBuildUnknownRun(t *testing.T) {
	t.Parallel()

	l, _ := seededLedger(t)
	_, err := Build(context.Background(), l, 99, nil)
	assert.ErrorIs(t, err, classify.ErrRunNotFound)
}
