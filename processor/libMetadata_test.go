// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package processor

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetadataMissingFile tests that a missing metadata file yields an empty
// metadata rather than an error.
func TestMetadataMissingFile(t *testing.T) {
	t.Parallel()

	pc := NewClient(fstest.MapFS{})
	meta, err := pc.Metadata()
	require.NoError(t, err)
	assert.Empty(t, meta.Name)
	assert.Empty(t, meta.Dependencies)
}

// TestMetadataInvalidDependency tests that a dependency mixing path/ref with a
// custom URL is rejected.
func TestMetadataInvalidDependency(t *testing.T) {
	t.Parallel()

	fs := fstest.MapFS{
		"seclab_library_metadata.json": &fstest.MapFile{
			Data: []byte(`{
				"name": "bad",
				"dependencies": [
					{"path": "labs/x", "ref": "1.0.0", "custom_url": "../other"}
				]
			}`),
		},
	}
	pc := NewClient(fs)
	_, err := pc.Metadata()
	assert.ErrorContains(t, err, "either path & ref should be set, or custom_url")
}

// TestMetadataDependencyForms tests both valid dependency forms.
func TestMetadataDependencyForms(t *testing.T) {
	t.Parallel()

	fs := fstest.MapFS{
		"seclab_library_metadata.json": &fstest.MapFile{
			Data: []byte(`{
				"name": "ok",
				"dependencies": [
					{"path": "labs/x", "ref": "1.0.0"},
					{"custom_url": "git::https://example.com/labs.git//x"}
				]
			}`),
		},
	}
	pc := NewClient(fs)
	meta, err := pc.Metadata()
	require.NoError(t, err)
	assert.Len(t, meta.Dependencies, 2)
}
