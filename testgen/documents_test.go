// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package testgen

import (
	"bytes"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/Azure/seclab/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderFormat tests digit and letter expansion.
func TestRenderFormat(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1)) //nolint:gosec
	for i := 0; i < 10; i++ {
		out := RenderFormat(rng, "EMP-###-??")
		assert.Regexp(t, `^EMP-\d{3}-[A-Z]{2}$`, out)
	}
	assert.Equal(t, "literal", RenderFormat(rng, "literal"))
}

// TestWriteSitDocument tests that the document contains the requested number
// of matching values with keywords alongside, plus non-matching negatives.
func TestWriteSitDocument(t *testing.T) {
	t.Parallel()

	sit := &assets.SitDefinition{
		Name:           "badge-number",
		DisplayName:    "Badge Number",
		Pattern:        `BDG-[0-9]{5}`,
		Keywords:       []string{"badge"},
		TestDataFormat: "BDG-#####",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSitDocument(&buf, sit, 5, 1))
	doc := buf.String()

	re := regexp.MustCompile(`BDG-[0-9]{5}`)
	assert.Len(t, re.FindAllString(doc, -1), 5)
	assert.Contains(t, doc, "badge")
	assert.Contains(t, doc, "not sensitive")
}

// TestWriteSitDocumentDeterministic tests seed determinism.
func TestWriteSitDocumentDeterministic(t *testing.T) {
	t.Parallel()

	sit := &assets.SitDefinition{
		Name:           "badge-number",
		DisplayName:    "Badge Number",
		Pattern:        `BDG-[0-9]{5}`,
		TestDataFormat: "BDG-#####",
	}

	var a, b bytes.Buffer
	require.NoError(t, WriteSitDocument(&a, sit, 3, 9))
	require.NoError(t, WriteSitDocument(&b, sit, 3, 9))
	assert.Equal(t, a.String(), b.String())
}

// TestWriteSitDocumentNoFormat tests that a SIT without a test data format is
// rejected.
func TestWriteSitDocumentNoFormat(t *testing.T) {
	t.Parallel()

	sit := &assets.SitDefinition{
		Name:        "badge-number",
		DisplayName: "Badge Number",
		Pattern:     `BDG-[0-9]{5}`,
	}
	err := WriteSitDocument(&bytes.Buffer{}, sit, 3, 1)
	assert.ErrorContains(t, err, "no test data format")
}

// TestWriteSitDocumentFormatPatternMismatch tests that a format which cannot
// produce pattern matches is reported.
func TestWriteSitDocumentFormatPatternMismatch(t *testing.T) {
	t.Parallel()

	sit := &assets.SitDefinition{
		Name:           "badge-number",
		DisplayName:    "Badge Number",
		Pattern:        `^BDG-[0-9]{5}$`,
		TestDataFormat: "XYZ-#####",
	}
	err := WriteSitDocument(&bytes.Buffer{}, sit, 1, 1)
	assert.ErrorContains(t, err, "does not match pattern")
}

// TestRenderNearMissDoesNotMatch tests that near misses fail the pattern.
func TestRenderNearMissDoesNotMatch(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3)) //nolint:gosec
	re := regexp.MustCompile(`^BDG-[0-9]{5}$`)
	for i := 0; i < 10; i++ {
		miss := renderNearMiss(rng, "BDG-#####")
		assert.False(t, re.MatchString(miss), "near miss %q should not match", miss)
		assert.True(t, strings.HasPrefix(miss, "BDG-"))
	}
}
