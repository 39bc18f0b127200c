package node

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"
)

// CloneMapping deep-copies a mapping so callers can write to the copy
// without touching the original. A nil mapping clones to an empty one.
func CloneMapping(m map[string]interface{}) (map[string]interface{}, error) {
	if m == nil {
		return map[string]interface{}{}, nil
	}
	var out map[string]interface{}
	if err := deepcopy.Copy(&out, m); err != nil {
		return nil, fmt.Errorf("clone mapping: %w", err)
	}
	return out, nil
}
