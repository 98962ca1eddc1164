// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package testgen

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

var firstNames = []string{
	"Ana", "Ben", "Carla", "Derek", "Elena", "Farid", "Grace", "Hugo",
	"Ines", "Jamal", "Kaisa", "Liam", "Mei", "Noor", "Oskar", "Priya",
	"Quinn", "Rosa", "Sven", "Tomas", "Uma", "Viktor", "Wanda", "Yusuf",
}

var lastNames = []string{
	"Almeida", "Bauer", "Chen", "Dubois", "Eriksen", "Ferrari", "Garcia",
	"Hansen", "Ivanov", "Jansen", "Kowalski", "Larsen", "Moreau", "Nguyen",
	"Okafor", "Petrov", "Quintero", "Rossi", "Schmidt", "Tanaka",
}

var departments = []string{
	"Finance", "Engineering", "Legal", "Human Resources", "Sales",
	"Marketing", "Operations", "Research",
}

// WriteEmployeeRecords writes count employee records as CSV. The records carry
// US SSN formatted identifiers so the built-in SSN classifier fires on them.
// Output is deterministic for a given seed and count.
func WriteEmployeeRecords(w io.Writer, count int, seed int64, domain string) error {
	if domain == "" {
		domain = "contoso.com"
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"employee_id", "name", "email", "ssn", "salary", "department"}); err != nil {
		return fmt.Errorf("writing employee records: %w", err)
	}
	for i := 0; i < count; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		record := []string{
			fmt.Sprintf("E%05d", i+1),
			first + " " + last,
			fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), i+1, domain),
			randomSSN(rng),
			strconv.Itoa(45000 + rng.Intn(120000)),
			departments[rng.Intn(len(departments))],
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing employee records: %w", err)
		}
	}
	cw.Flush()
	return cw.Error() //nolint:wrapcheck
}

// WriteCustomerRecords writes count customer records as CSV with Luhn-valid
// credit card numbers, so the built-in credit card classifier fires on them.
// Output is deterministic for a given seed and count.
func WriteCustomerRecords(w io.Writer, count int, seed int64, domain string) error {
	if domain == "" {
		domain = "example.com"
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"customer_id", "name", "email", "credit_card", "phone"}); err != nil {
		return fmt.Errorf("writing customer records: %w", err)
	}
	for i := 0; i < count; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		record := []string{
			fmt.Sprintf("C%06d", i+1),
			first + " " + last,
			fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), i+1, domain),
			RandomPAN(rng),
			fmt.Sprintf("+1-%03d-%03d-%04d", 200+rng.Intn(700), rng.Intn(1000), rng.Intn(10000)),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing customer records: %w", err)
		}
	}
	cw.Flush()
	return cw.Error() //nolint:wrapcheck
}

// randomSSN generates an SSN-formatted string avoiding the invalid area
// numbers 000, 666 and 900+.
func randomSSN(rng *rand.Rand) string {
	area := 1 + rng.Intn(898)
	if area == 666 {
		area = 667
	}
	return fmt.Sprintf("%03d-%02d-%04d", area, 1+rng.Intn(99), 1+rng.Intn(9999))
}

// RandomPAN generates a Luhn-valid 16 digit card number with a Visa prefix.
func RandomPAN(rng *rand.Rand) string {
	digits := make([]int, 16)
	digits[0] = 4
	for i := 1; i < 15; i++ {
		digits[i] = rng.Intn(10)
	}
	digits[15] = luhnCheckDigit(digits[:15])
	out := make([]byte, 0, 19)
	for i, d := range digits {
		if i > 0 && i%4 == 0 {
			out = append(out, '-')
		}
		out = append(out, byte('0'+d))
	}
	return string(out)
}

// luhnCheckDigit computes the Luhn check digit for the given payload digits.
func luhnCheckDigit(payload []int) int {
	sum := 0
	double := true
	for i := len(payload) - 1; i >= 0; i-- {
		d := payload[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

// LuhnValid reports whether the digits of s (ignoring separators) pass the
// Luhn check.
func LuhnValid(s string) bool {
	var digits []int
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 2 {
		return false
	}
	payload, check := digits[:len(digits)-1], digits[len(digits)-1]
	return luhnCheckDigit(payload) == check
}
