// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/Azure/seclab/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	return &Report{
		Scenario:    "lab1",
		RunId:       7,
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Classification: ClassificationSummary{
			Total:          4,
			Succeeded:      2,
			Failed:         1,
			Skipped:        1,
			Retried:        2,
			Duration:       10 * time.Second,
			ItemsPerSecond: 0.4,
		},
		Failures: []classify.ItemResult{
			{Item: classify.Item{Path: "docs/c.txt", Label: "internal"}, Outcome: classify.OutcomeFailed, Attempts: 5, Error: "throttled"},
		},
	}
}

// TestParseFormat tests format name parsing.
func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"json", "csv", "html"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), f)
	}
	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, "unknown report format")
}

// TestWriteJSON tests that the JSON output round trips.
func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf, FormatJSON))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "lab1", decoded.Scenario)
	assert.Equal(t, 4, decoded.Classification.Total)
	require.Len(t, decoded.Failures, 1)
}

// TestWriteCSV tests the metric,value layout.
func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf, FormatCSV))
	out := buf.String()
	assert.Contains(t, out, "metric,value")
	assert.Contains(t, out, "scenario,lab1")
	assert.Contains(t, out, "run_id,7")
	assert.Contains(t, out, "succeeded,2")
	assert.Contains(t, out, "items_per_second,0.40")
}

// TestWriteHTML tests the rendered page content.
func TestWriteHTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf, FormatHTML))
	out := buf.String()
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "Lab report: lab1 (run 7)")
	assert.Contains(t, out, "docs/c.txt")
	assert.Contains(t, out, "throttled")
}

// TestWriteUnknownFormat tests the error on an unparsed format value.
func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	err := sampleReport().Write(&bytes.Buffer{}, Format("xml"))
	assert.ErrorContains(t, err, "unknown report format")
}
