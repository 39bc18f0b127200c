package transform

import (
	"fmt"
	"strings"
)

// DeduplicateRecords keeps the first record for each distinct tuple of keys.
// Records missing a key dedupe on the missing value like any other.
func DeduplicateRecords(records []Record, keys []string) []Record {
	if len(keys) == 0 {
		return records
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		parts := make([]string, len(keys))
		for i, k := range keys {
			v, ok := r[k]
			if !ok {
				parts[i] = "\x00"
				continue
			}
			parts[i] = fmt.Sprintf("%T:%v", v, v)
		}
		id := strings.Join(parts, "\x1f")
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, r)
	}
	return out
}
