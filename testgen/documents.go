// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package testgen

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/Azure/seclab/assets"
)

// RenderFormat expands a SIT test data format string: `#` becomes a random
// digit, `?` a random uppercase letter, every other rune is copied literally.
func RenderFormat(rng *rand.Rand, format string) string {
	var b strings.Builder
	b.Grow(len(format))
	for _, r := range format {
		switch r {
		case '#':
			b.WriteByte(byte('0' + rng.Intn(10)))
		case '?':
			b.WriteByte(byte('A' + rng.Intn(26)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// renderNearMiss expands the format with one digit position corrupted into a
// letter, producing a string that should not match the SIT pattern.
func renderNearMiss(rng *rand.Rand, format string) string {
	s := RenderFormat(rng, format)
	idx := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s + "X"
	}
	out := []byte(s)
	out[idx] = byte('A' + rng.Intn(26))
	return string(out)
}

// WriteSitDocument writes a sample text document embedding matches matching
// strings for the SIT, each surrounded by the SIT's keywords so proximity
// based detection fires, plus near-miss negatives that must not match.
// Output is deterministic for a given seed.
func WriteSitDocument(w io.Writer, sit *assets.SitDefinition, matches int, seed int64) error {
	if sit.TestDataFormat == "" {
		return fmt.Errorf("sit %s has no test data format", sit.Name)
	}
	re, err := sit.CompilePattern()
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec
	keyword := sit.DisplayName
	if len(sit.Keywords) > 0 {
		keyword = sit.Keywords[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s sample data\n\n", sit.DisplayName)
	for i := 0; i < matches; i++ {
		value := RenderFormat(rng, sit.TestDataFormat)
		if !re.MatchString(value) {
			return fmt.Errorf("sit %s: generated value %q does not match pattern %s, check the test data format",
				sit.Name, value, sit.Pattern)
		}
		kw := keyword
		if len(sit.Keywords) > 0 {
			kw = sit.Keywords[rng.Intn(len(sit.Keywords))]
		}
		fmt.Fprintf(&b, "Record %d: %s %s\n", i+1, kw, value)
	}
	b.WriteString("\nReference values, not sensitive:\n")
	for i := 0; i < matches/2+1; i++ {
		fmt.Fprintf(&b, "Sample %d: %s\n", i+1, renderNearMiss(rng, sit.TestDataFormat))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing sit document: %w", err)
	}
	return nil
}
