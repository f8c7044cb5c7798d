package directory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseGTFSStops builds a directory from a GTFS stops.txt file.
// Only stop_name, stop_id and parent_station are used. Platforms with a
// parent station are skipped so names map to station ids; otherwise the
// first id seen for a name wins.
func ParseGTFSStops(r io.Reader) (*Directory, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// Strip BOM from first field if present
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\xef\xbb\xbf")
	}

	nameCol, idCol, parentCol := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "stop_name":
			nameCol = i
		case "stop_id":
			idCol = i
		case "parent_station":
			parentCol = i
		}
	}
	if nameCol < 0 || idCol < 0 {
		return nil, fmt.Errorf("stops.txt: missing stop_name or stop_id column")
	}

	seen := make(map[string]bool)
	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if nameCol >= len(record) || idCol >= len(record) {
			continue
		}
		if parentCol >= 0 && parentCol < len(record) && strings.TrimSpace(record[parentCol]) != "" {
			continue
		}
		name := strings.TrimSpace(record[nameCol])
		id := strings.TrimSpace(record[idCol])
		if name == "" || id == "" || seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, Entry{Name: name, ID: id})
	}
	return New(entries)
}
