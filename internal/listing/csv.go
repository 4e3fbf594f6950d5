package listing

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// WriteCSV streams a header row followed by the data rows
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CollectJSONKeys returns the sorted union of top-level object keys across
// a set of JSON blobs. Blobs that are not objects contribute no keys.
func CollectJSONKeys(raws ...[]byte) []string {
	seen := map[string]bool{}
	for _, raw := range raws {
		if len(raw) == 0 {
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}
		for k := range obj {
			seen[k] = true
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// JSONField extracts one top-level key from a JSON object as cell text.
// String values come back unquoted; anything else keeps its JSON form.
// Missing keys and non-object blobs yield an empty cell.
func JSONField(raw []byte, key string) string {
	if len(raw) == 0 {
		return ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}

	value, ok := obj[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	return string(value)
}
