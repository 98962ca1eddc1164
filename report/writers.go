// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
)

// Format selects a report output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatHTML:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown report format %q, want json, csv or html", s)
}

// Write renders the report in the given format.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatCSV:
		return r.WriteCSV(w)
	case FormatHTML:
		return r.WriteHTML(w)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("writing json report: %w", err)
	}
	return nil
}

// WriteCSV renders the headline numbers as a two column metric,value CSV.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"metric", "value"},
		{"scenario", r.Scenario},
		{"run_id", strconv.FormatInt(r.RunId, 10)},
		{"total", strconv.Itoa(r.Classification.Total)},
		{"succeeded", strconv.Itoa(r.Classification.Succeeded)},
		{"failed", strconv.Itoa(r.Classification.Failed)},
		{"skipped", strconv.Itoa(r.Classification.Skipped)},
		{"retried", strconv.Itoa(r.Classification.Retried)},
		{"duration", r.Classification.Duration.String()},
		{"items_per_second", strconv.FormatFloat(r.Classification.ItemsPerSecond, 'f', 2, 64)},
		{"dry_run", strconv.FormatBool(r.Classification.DryRun)},
	}
	if r.Deployment != nil {
		for action, count := range r.Deployment.Counts {
			rows = append(rows, []string{"deploy_" + string(action), strconv.Itoa(count)})
		}
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv report: %w", err)
		}
	}
	cw.Flush()
	return cw.Error() //nolint:wrapcheck
}

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Lab report: {{.Scenario}} run {{.RunId}}</title>
<style>
body { font-family: "Segoe UI", sans-serif; margin: 2rem; color: #1b1b1b; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #c8c8c8; padding: 0.3rem 0.8rem; text-align: left; }
th { background: #f0f0f0; }
.failed { color: #a4262c; }
</style>
</head>
<body>
<h1>Lab report: {{.Scenario}} (run {{.RunId}})</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05 UTC"}}{{if .Classification.DryRun}}, dry run{{end}}.</p>

<h2>Classification</h2>
<table>
<tr><th>Total</th><th>Succeeded</th><th>Failed</th><th>Skipped</th><th>Retried</th><th>Duration</th><th>Items/s</th></tr>
<tr>
<td>{{.Classification.Total}}</td>
<td>{{.Classification.Succeeded}}</td>
<td{{if .Classification.Failed}} class="failed"{{end}}>{{.Classification.Failed}}</td>
<td>{{.Classification.Skipped}}</td>
<td>{{.Classification.Retried}}</td>
<td>{{.Classification.Duration}}</td>
<td>{{printf "%.2f" .Classification.ItemsPerSecond}}</td>
</tr>
</table>

{{if .Failures}}
<h2>Failures</h2>
<table>
<tr><th>Path</th><th>Label</th><th>Attempts</th><th>Error</th></tr>
{{range .Failures}}
<tr class="failed"><td>{{.Item.Path}}</td><td>{{.Item.Label}}</td><td>{{.Attempts}}</td><td>{{.Error}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Deployment}}
<h2>Deployment</h2>
<table>
<tr><th>Action</th><th>Count</th></tr>
{{range $action, $count := .Deployment.Counts}}
<tr><td>{{$action}}</td><td>{{$count}}</td></tr>
{{end}}
</table>
{{if .Deployment.Failed}}
<table>
<tr><th>Kind</th><th>Name</th><th>Error</th></tr>
{{range .Deployment.Failed}}
<tr class="failed"><td>{{.Kind}}</td><td>{{.Name}}</td><td>{{.Error}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}
</body>
</html>
`))

// WriteHTML renders the report as a self contained HTML page.
func (r *Report) WriteHTML(w io.Writer) error {
	if err := htmlReport.Execute(w, r); err != nil {
		return fmt.Errorf("writing html report: %w", err)
	}
	return nil
}
