// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package testgen

import (
	"bytes"
	"encoding/csv"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ssnRegex = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)

// TestWriteEmployeeRecords tests the employee CSV shape and SSN validity.
func TestWriteEmployeeRecords(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteEmployeeRecords(&buf, 10, 1, ""))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 11)
	assert.Equal(t, []string{"employee_id", "name", "email", "ssn", "salary", "department"}, records[0])
	for _, rec := range records[1:] {
		assert.Regexp(t, ssnRegex, rec[3])
		assert.NotEqual(t, "000", rec[3][:3])
		assert.NotEqual(t, "666", rec[3][:3])
		assert.True(t, strings.HasSuffix(rec[2], "@contoso.com"))
	}
	assert.Equal(t, "E00001", records[1][0])
}

// TestWriteCustomerRecords tests that generated card numbers pass the Luhn
// check.
func TestWriteCustomerRecords(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCustomerRecords(&buf, 10, 1, "fabrikam.com"))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 11)
	assert.Equal(t, []string{"customer_id", "name", "email", "credit_card", "phone"}, records[0])
	for _, rec := range records[1:] {
		assert.True(t, LuhnValid(rec[3]), "card %s should be Luhn valid", rec[3])
		assert.True(t, strings.HasPrefix(rec[3], "4"))
		assert.True(t, strings.HasSuffix(rec[2], "@fabrikam.com"))
	}
}

// TestRecordsDeterministic tests that the same seed yields the same output.
func TestRecordsDeterministic(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	require.NoError(t, WriteEmployeeRecords(&a, 25, 42, ""))
	require.NoError(t, WriteEmployeeRecords(&b, 25, 42, ""))
	assert.Equal(t, a.String(), b.String())

	var c bytes.Buffer
	require.NoError(t, WriteEmployeeRecords(&c, 25, 43, ""))
	assert.NotEqual(t, a.String(), c.String())
}

// TestRandomPANFormat tests the grouping of generated card numbers.
func TestRandomPANFormat(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7)) //nolint:gosec
	for i := 0; i < 20; i++ {
		pan := RandomPAN(rng)
		assert.Regexp(t, `^4\d{3}-\d{4}-\d{4}-\d{4}$`, pan)
		assert.True(t, LuhnValid(pan))
	}
}

// TestLuhnValid tests the checker against known card numbers.
func TestLuhnValid(t *testing.T) {
	t.Parallel()

	assert.True(t, LuhnValid("4111111111111111"))
	assert.True(t, LuhnValid("4111-1111-1111-1111"))
	assert.False(t, LuhnValid("4111111111111112"))
	assert.False(t, LuhnValid("4"))
}
