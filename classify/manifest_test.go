// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReadManifestPathLayout tests the path,label manifest layout.
func TestReadManifestPathLayout(t *testing.T) {
	t.Parallel()

	manifest := strings.NewReader("path,label\ndocs/a.txt,internal\ndocs/b.txt,confidential\n")
	items, err := ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, Item{Path: "docs/a.txt", Label: "internal"}, items[0])
	assert.Equal(t, Item{Path: "docs/b.txt", Label: "confidential"}, items[1])
}

// TestReadManifestDriveItemLayout tests the driveId,itemId,label layout with
// mixed header casing.
func TestReadManifestDriveItemLayout(t *testing.T) {
	t.Parallel()

	manifest := strings.NewReader("DriveId,ItemId,Label\nd1,i1,internal\nd1,i2,internal\n")
	items, err := ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, Item{DriveId: "d1", ItemId: "i1", Label: "internal"}, items[0])
}

// TestReadManifestMissingLabelColumn tests that a manifest without a label
// column is rejected.
func TestReadManifestMissingLabelColumn(t *testing.T) {
	t.Parallel()

	manifest := strings.NewReader("path\ndocs/a.txt\n")
	_, err := ReadManifest(manifest)
	assert.ErrorContains(t, err, "no label column")
}

// TestReadManifestMissingAddress tests that a manifest needs either path or
// driveId/itemId columns.
func TestReadManifestMissingAddress(t *testing.T) {
	t.Parallel()

	manifest := strings.NewReader("label\ninternal\n")
	_, err := ReadManifest(manifest)
	assert.ErrorContains(t, err, "needs either a path column")
}

// TestReadManifestEmptyLabel tests that a row with an empty label is rejected
// with its line number.
func TestReadManifestEmptyLabel(t *testing.T) {
	t.Parallel()

	manifest := strings.NewReader("path,label\ndocs/a.txt,internal\ndocs/b.txt,\n")
	_, err := ReadManifest(manifest)
	assert.ErrorContains(t, err, "line 3")
}
