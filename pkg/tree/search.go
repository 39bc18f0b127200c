// Package tree searches arbitrarily nested nodes without a schema.
package tree

import (
	"maps"
	"slices"

	"github.com/saturnines/ledger-core/pkg/node"
)

// FindNodesWithKey returns every mapping in root that directly owns key,
// depth-first. Sequence order is preserved; sibling keys of a mapping are
// visited in sorted order since decoded mappings carry no order of their
// own. When value is non-nil the stored value must also equal it. A matching
// mapping is terminal: its children are not searched for further matches.
func FindNodesWithKey(root interface{}, key string, value interface{}) []map[string]interface{} {
	var result []map[string]interface{}
	walk(root, key, value, &result)
	return result
}

func walk(current interface{}, key string, value interface{}, result *[]map[string]interface{}) {
	switch v := current.(type) {
	case []interface{}:
		for _, child := range v {
			walk(child, key, value, result)
		}

	case map[string]interface{}:
		if stored, ok := v[key]; ok && (value == nil || node.Equal(stored, value)) {
			*result = append(*result, v)
			return
		}
		for _, k := range slices.Sorted(maps.Keys(v)) {
			if node.KindOf(v[k]) != node.Scalar {
				walk(v[k], key, value, result)
			}
		}
	}
}
