// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package testgen

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const edmNamespace = "http://schemas.microsoft.com/office/2018/edm"

// EdmSchema is the exact data match schema in the Purview upload agent format.
type EdmSchema struct {
	XMLName   xml.Name     `xml:"EdmSchema"`
	Xmlns     string       `xml:"xmlns,attr"`
	DataStore EdmDataStore `xml:"DataStore"`
}

// EdmDataStore names the sensitive data table and its fields.
type EdmDataStore struct {
	Name        string     `xml:"name,attr"`
	Description string     `xml:"description,attr,omitempty"`
	Version     int        `xml:"version,attr"`
	Fields      []EdmField `xml:"Field"`
}

// EdmField is one schema column.
type EdmField struct {
	Name            string `xml:"name,attr"`
	Searchable      bool   `xml:"searchable,attr"`
	CaseInsensitive bool   `xml:"caseInsensitive,attr"`
}

// EdmFieldOptions selects per-column flags when building a schema from a CSV
// header. Column names are matched case insensitively.
type EdmFieldOptions struct {
	// Searchable columns become EDM primary evidence. When empty, the first
	// column is searchable.
	Searchable []string
	// CaseInsensitive columns match regardless of casing.
	CaseInsensitive []string
}

// NewEdmSchemaFromCSV builds an EDM schema from the header row of the CSV
// data r. dataStore names the resulting EDM data store.
func NewEdmSchemaFromCSV(r io.Reader, dataStore, description string, opts *EdmFieldOptions) (*EdmSchema, error) {
	header, err := csv.NewReader(r).Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	if opts == nil {
		opts = &EdmFieldOptions{}
	}

	searchable := toSet(opts.Searchable)
	caseInsensitive := toSet(opts.CaseInsensitive)

	fields := make([]EdmField, 0, len(header))
	for i, col := range header {
		name := strings.TrimSpace(col)
		if name == "" {
			return nil, fmt.Errorf("csv header column %d is empty", i+1)
		}
		key := strings.ToLower(name)
		fields = append(fields, EdmField{
			Name:            name,
			Searchable:      searchable[key] || (len(searchable) == 0 && i == 0),
			CaseInsensitive: caseInsensitive[key],
		})
	}

	return &EdmSchema{
		Xmlns: edmNamespace,
		DataStore: EdmDataStore{
			Name:        dataStore,
			Description: description,
			Version:     1,
			Fields:      fields,
		},
	}, nil
}

// Write renders the schema as indented XML with the standard header.
func (s *EdmSchema) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing edm schema: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("writing edm schema: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("writing edm schema: %w", err)
	}
	return nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(strings.TrimSpace(n))] = true
	}
	return set
}
