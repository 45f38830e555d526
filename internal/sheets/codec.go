package sheets

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Format selects how range data is encoded and decoded for task input
// and output.
type Format string

const (
	// FormatValues passes rows through as a two dimensional string array.
	FormatValues Format = "values"

	// FormatCSV encodes rows as RFC 4180 CSV text.
	FormatCSV Format = "csv"

	// FormatJSON encodes rows as an array of objects, with the first row
	// of the range acting as the header.
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. An empty name defaults to values.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatValues:
		return FormatValues, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q, expected one of values, csv, json", name)
	}
}

// EncodeRows encodes rows in the given format. FormatValues returns the rows
// unchanged, FormatCSV returns a CSV string, FormatJSON returns a slice of
// row maps keyed by the header row.
func EncodeRows(format Format, rows [][]string) (any, error) {
	switch format {
	case FormatValues:
		return rows, nil
	case FormatCSV:
		var buf strings.Builder
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(rows); err != nil {
			return nil, fmt.Errorf("failed to encode CSV: %w", err)
		}
		return buf.String(), nil
	case FormatJSON:
		return rowsToMaps(rows), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// DecodeRows decodes task input into rows for writing. FormatValues accepts
// a two dimensional array, FormatCSV a CSV string, FormatJSON either a JSON
// array string or a decoded slice of row maps.
func DecodeRows(format Format, input any) ([][]string, error) {
	switch format {
	case FormatValues:
		return asStringRows(input)
	case FormatCSV:
		text, ok := input.(string)
		if !ok {
			return nil, fmt.Errorf("csv input must be a string, got %T", input)
		}
		r := csv.NewReader(strings.NewReader(text))
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		return rows, nil
	case FormatJSON:
		return decodeJSONRows(input)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// rowsToMaps turns rows into maps keyed by the header row. Short rows leave
// trailing columns out, extra cells beyond the header are dropped.
func rowsToMaps(rows [][]string) []map[string]string {
	if len(rows) == 0 {
		return []map[string]string{}
	}
	header := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(row) {
				m[key] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

func decodeJSONRows(input any) ([][]string, error) {
	var records []map[string]any
	switch v := input.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &records); err != nil {
			return nil, fmt.Errorf("failed to parse JSON rows: %w", err)
		}
	case []any:
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("json rows must be objects, got %T", item)
			}
			records = append(records, m)
		}
	case []map[string]any:
		records = v
	default:
		return nil, fmt.Errorf("json input must be a string or array of objects, got %T", input)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// The header is the union of keys across all records, sorted so the
	// output columns are deterministic.
	seen := map[string]bool{}
	for _, rec := range records {
		for key := range rec {
			seen[key] = true
		}
	}
	header := make([]string, 0, len(seen))
	for key := range seen {
		header = append(header, key)
	}
	sort.Strings(header)

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for _, rec := range records {
		row := make([]string, len(header))
		for i, key := range header {
			if val, ok := rec[key]; ok && val != nil {
				row[i] = fmt.Sprintf("%v", val)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func asStringRows(input any) ([][]string, error) {
	switch v := input.(type) {
	case [][]string:
		return v, nil
	case []any:
		rows := make([][]string, len(v))
		for i, rowVal := range v {
			switch row := rowVal.(type) {
			case []any:
				cells := make([]string, len(row))
				for j, cell := range row {
					if cell != nil {
						cells[j] = fmt.Sprintf("%v", cell)
					}
				}
				rows[i] = cells
			case []string:
				rows[i] = row
			default:
				return nil, fmt.Errorf("row %d must be an array, got %T", i, rowVal)
			}
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("values input must be a two dimensional array, got %T", input)
	}
}
