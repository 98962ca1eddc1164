// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deployment

import (
	"sync"
	"time"
)

// Action is the outcome of reconciling a single resource.
type Action string

const (
	ActionCreated   Action = "Created"
	ActionUpdated   Action = "Updated"
	ActionUnchanged Action = "Unchanged"
	ActionSkipped   Action = "Skipped"
	ActionFailed    Action = "Failed"
)

// ResourceResult records the outcome of reconciling one resource.
type ResourceResult struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Id     string `json:"id,omitempty"`
	Action Action `json:"action"`
	Error  string `json:"error,omitempty"`
}

// ApplyResult collects the per-resource outcomes of an Apply run.
type ApplyResult struct {
	Scenario  string           `json:"scenario"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Results   []ResourceResult `json:"results"`

	mu sync.Mutex
}

func newApplyResult(scenario string) *ApplyResult {
	return &ApplyResult{
		Scenario:  scenario,
		StartedAt: time.Now().UTC(),
		Results:   make([]ResourceResult, 0),
	}
}

func (ar *ApplyResult) record(rr ResourceResult) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	ar.Results = append(ar.Results, rr)
}

// Counts returns the number of results per action.
func (ar *ApplyResult) Counts() map[Action]int {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	counts := make(map[Action]int)
	for _, r := range ar.Results {
		counts[r.Action]++
	}
	return counts
}

// Failed returns the results whose action is ActionFailed.
func (ar *ApplyResult) Failed() []ResourceResult {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	failed := make([]ResourceResult, 0)
	for _, r := range ar.Results {
		if r.Action == ActionFailed {
			failed = append(failed, r)
		}
	}
	return failed
}
