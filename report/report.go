// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package report aggregates classification ledger runs and deployment results
// into exportable lab reports.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/seclab/classify"
	"github.com/Azure/seclab/deployment"
)

// Report is an aggregated view over one classification run, optionally
// combined with the deployment outcome of the same scenario.
type Report struct {
	Scenario    string    `json:"scenario"`
	RunId       int64     `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Classification ClassificationSummary `json:"classification"`
	Deployment     *DeploymentSummary    `json:"deployment,omitempty"`

	Failures []classify.ItemResult `json:"failures,omitempty"`
}

// ClassificationSummary are the headline numbers of a run.
type ClassificationSummary struct {
	Total          int           `json:"total"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	Skipped        int           `json:"skipped"`
	Retried        int           `json:"retried"`
	Duration       time.Duration `json:"duration"`
	ItemsPerSecond float64       `json:"items_per_second"`
	DryRun         bool          `json:"dry_run"`
}

// DeploymentSummary are the per-action counts of an apply run.
type DeploymentSummary struct {
	Counts   map[deployment.Action]int   `json:"counts"`
	Duration time.Duration               `json:"duration"`
	Failed   []deployment.ResourceResult `json:"failed,omitempty"`
}

// Build assembles a Report for the given ledger run. apply may be nil when no
// deployment result is available.
func Build(ctx context.Context, ledger *classify.Ledger, runId int64, apply *deployment.ApplyResult) (*Report, error) {
	run, err := ledger.GetRun(ctx, runId)
	if err != nil {
		return nil, fmt.Errorf("report.Build: %w", err)
	}
	items, err := ledger.GetRunItems(ctx, runId)
	if err != nil {
		return nil, fmt.Errorf("report.Build: %w", err)
	}

	rep := &Report{
		Scenario:    run.Scenario,
		RunId:       run.Id,
		GeneratedAt: time.Now().UTC(),
	}
	sum := ClassificationSummary{
		Total:  len(items),
		DryRun: run.DryRun,
	}
	for _, item := range items {
		switch item.Outcome {
		case classify.OutcomeSucceeded:
			sum.Succeeded++
		case classify.OutcomeFailed:
			sum.Failed++
			rep.Failures = append(rep.Failures, item)
		case classify.OutcomeSkipped:
			sum.Skipped++
		}
		if item.Attempts > 1 {
			sum.Retried++
		}
	}
	if !run.EndedAt.IsZero() {
		sum.Duration = run.EndedAt.Sub(run.StartedAt)
		if secs := sum.Duration.Seconds(); secs > 0 {
			sum.ItemsPerSecond = float64(sum.Total) / secs
		}
	}
	rep.Classification = sum

	if apply != nil {
		rep.Deployment = &DeploymentSummary{
			Counts:   apply.Counts(),
			Duration: apply.Duration,
			Failed:   apply.Failed(),
		}
	}
	return rep, nil
}
