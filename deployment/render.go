// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deployment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Purview sensitive information types, sensitivity labels and DLP policies
// have no generally available write API. They are rendered to payload files
// that the compliance portal import (or Security & Compliance PowerShell)
// consumes. Rendering is part of Apply's contract: the reconciler converges
// what it can call and renders the rest.

const renderDirPerm = 0o755

// renderedAsset is the envelope for a rendered Purview payload.
type renderedAsset struct {
	Kind     string `json:"kind"`
	Scenario string `json:"scenario"`
	Name     string `json:"name"`
	Payload  any    `json:"payload"`
}

// RenderPurviewAssets writes the scenario's SIT definitions, sensitivity
// labels and DLP policies as JSON payload files under dir. Files are named
// <kind>_<name>.json and existing files are overwritten so a re-render always
// reflects the catalog. The rendered file names are returned sorted.
func (r *Reconciler) RenderPurviewAssets(sc *Scenario, dir string) ([]string, error) {
	if sc == nil {
		return nil, fmt.Errorf("RenderPurviewAssets: scenario is nil")
	}
	if err := os.MkdirAll(dir, renderDirPerm); err != nil {
		return nil, fmt.Errorf("RenderPurviewAssets: creating %s: %w", dir, err)
	}

	written := make([]string, 0,
		len(sc.SitDefinitions())+len(sc.SensitivityLabels())+len(sc.DlpPolicies()))

	for name, sit := range sc.SitDefinitions() {
		fn, err := r.renderAsset(sc, dir, "sit_definition", name, sit)
		if err != nil {
			return nil, err
		}
		written = append(written, fn)
	}
	for name, lbl := range sc.SensitivityLabels() {
		fn, err := r.renderAsset(sc, dir, "sensitivity_label", name, lbl)
		if err != nil {
			return nil, err
		}
		written = append(written, fn)
	}
	for name, pol := range sc.DlpPolicies() {
		fn, err := r.renderAsset(sc, dir, "dlp_policy", name, pol)
		if err != nil {
			return nil, err
		}
		written = append(written, fn)
	}

	sort.Strings(written)
	r.logger.Info().Str("scenario", sc.Name()).Int("files", len(written)).Str("dir", dir).Msg("rendered compliance payloads")
	return written, nil
}

func (r *Reconciler) renderAsset(sc *Scenario, dir, kind, name string, payload any) (string, error) {
	out := renderedAsset{
		Kind:     kind,
		Scenario: sc.Name(),
		Name:     name,
		Payload:  payload,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("rendering %s %s: %w", kind, name, err)
	}
	data = append(data, '\n')
	fn := fmt.Sprintf("%s_%s.json", kind, name)
	if err := os.WriteFile(filepath.Join(dir, fn), data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", fn, err)
	}
	return fn, nil
}
