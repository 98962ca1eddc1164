// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package classify

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadManifest parses a classification manifest. Two header layouts are
// accepted:
//
//	path,label                  items resolved by path at run time
//	driveId,itemId,label        items addressed directly
//
// Header matching is case insensitive. Blank lines are skipped and every row
// must bind a non-empty label.
func ReadManifest(r io.Reader) ([]Item, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading manifest header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	labelIdx, ok := cols["label"]
	if !ok {
		return nil, fmt.Errorf("manifest has no label column, got %v", header)
	}
	pathIdx, hasPath := cols["path"]
	driveIdx, hasDrive := cols["driveid"]
	itemIdx, hasItem := cols["itemid"]
	if !hasPath && !(hasDrive && hasItem) {
		return nil, fmt.Errorf("manifest needs either a path column or driveId and itemId columns, got %v", header)
	}

	var items []Item
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading manifest line %d: %w", line, err)
		}
		item := Item{Label: strings.TrimSpace(record[labelIdx])}
		if item.Label == "" {
			return nil, fmt.Errorf("manifest line %d: empty label", line)
		}
		if hasPath {
			item.Path = strings.TrimSpace(record[pathIdx])
		}
		if hasDrive && hasItem {
			item.DriveId = strings.TrimSpace(record[driveIdx])
			item.ItemId = strings.TrimSpace(record[itemIdx])
		}
		if item.Path == "" && (item.DriveId == "" || item.ItemId == "") {
			return nil, fmt.Errorf("manifest line %d: item has neither path nor driveId/itemId", line)
		}
		items = append(items, item)
	}
	return items, nil
}
