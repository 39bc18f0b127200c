package node

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is a parsed location inside a node. Segments address mapping keys, or
// sequence positions when the segment is an integer and the container at that
// level is a sequence. Negative positions count from the end.
type Path []string

// Parse converts a string path into segments.
// Supports:
// - Nested fields: "Line.Amount"
// - Dotted positions: "Line.0.Amount"
// - Bracket positions: "Line[0].Amount", "Rows[1][0]"
func Parse(path string) (Path, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}

	var segments Path
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("empty segment in path: %s", path)
		}

		idx := strings.Index(part, "[")
		if idx == -1 {
			segments = append(segments, part)
			continue
		}
		if idx > 0 {
			segments = append(segments, part[:idx])
		}

		remaining := part[idx:]
		for len(remaining) > 0 {
			if !strings.HasPrefix(remaining, "[") {
				return nil, fmt.Errorf("invalid syntax after bracket: %s", remaining)
			}
			endIdx := strings.Index(remaining, "]")
			if endIdx == -1 {
				return nil, fmt.Errorf("unclosed bracket in path: %s", part)
			}
			indexStr := remaining[1:endIdx]
			if _, err := strconv.Atoi(indexStr); err != nil {
				return nil, fmt.Errorf("invalid array index: %s", indexStr)
			}
			segments = append(segments, indexStr)
			remaining = remaining[endIdx+1:]
		}
	}

	return segments, nil
}

// String renders the path in dotted form
func (p Path) String() string {
	return strings.Join(p, ".")
}

// index resolves a segment against a sequence of length n
func index(segment string, n int) (int, bool) {
	i, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	if i < 0 {
		i = n + i
	}
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// step descends one level
func step(current interface{}, segment string) (interface{}, bool) {
	switch v := current.(type) {
	case map[string]interface{}:
		val, ok := v[segment]
		return val, ok
	case []interface{}:
		i, ok := index(segment, len(v))
		if !ok {
			return nil, false
		}
		return v[i], true
	default:
		return nil, false
	}
}

// Lookup walks parsed segments
func Lookup(data interface{}, path Path) (interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}
	current := data
	for _, segment := range path {
		next, ok := step(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Get returns the value at path. The boolean is false when any segment is
// missing; a stored nil is returned as (nil, true).
func Get(data interface{}, path string) (interface{}, bool) {
	segments, err := Parse(path)
	if err != nil {
		return nil, false
	}
	return Lookup(data, segments)
}

// Has reports whether path resolves, including to an explicit nil
func Has(data interface{}, path string) bool {
	_, ok := Get(data, path)
	return ok
}

// Set writes value at path in place. Missing intermediate levels are created
// as mappings. Sequence positions must already exist; Set reports false
// rather than growing a sequence or writing through a scalar.
func Set(data interface{}, path string, value interface{}) bool {
	segments, err := Parse(path)
	if err != nil {
		return false
	}
	return Assign(data, segments, value)
}

// Assign is Set over parsed segments
func Assign(data interface{}, segments Path, value interface{}) bool {
	current := data
	for i, segment := range segments {
		last := i == len(segments)-1

		switch v := current.(type) {
		case map[string]interface{}:
			if last {
				v[segment] = value
				return true
			}
			next, ok := v[segment]
			if !ok || (KindOf(next) == Scalar) {
				if ok && next != nil {
					return false
				}
				next = make(map[string]interface{})
				v[segment] = next
			}
			current = next

		case []interface{}:
			idx, ok := index(segment, len(v))
			if !ok {
				return false
			}
			if last {
				v[idx] = value
				return true
			}
			next := v[idx]
			if next == nil {
				next = make(map[string]interface{})
				v[idx] = next
			} else if KindOf(next) == Scalar {
				return false
			}
			current = next

		default:
			return false
		}
	}

	return false
}

// Unset removes the value at path. Removing a sequence element shifts the
// following elements down; this needs the sequence's parent, so the last
// segment of a one-segment path over a root sequence is not removable.
// Absent paths are a no-op. Reports whether something was removed.
func Unset(data interface{}, path string) bool {
	segments, err := Parse(path)
	if err != nil {
		return false
	}

	parentPath := segments[:len(segments)-1]
	leaf := segments[len(segments)-1]

	parent := data
	if len(parentPath) > 0 {
		var ok bool
		if parent, ok = Lookup(data, parentPath); !ok {
			return false
		}
	}

	switch v := parent.(type) {
	case map[string]interface{}:
		if _, ok := v[leaf]; !ok {
			return false
		}
		delete(v, leaf)
		return true

	case []interface{}:
		idx, ok := index(leaf, len(v))
		if !ok || len(parentPath) == 0 {
			return false
		}
		shrunk := make([]interface{}, 0, len(v)-1)
		shrunk = append(shrunk, v[:idx]...)
		shrunk = append(shrunk, v[idx+1:]...)
		return Assign(data, parentPath, shrunk)
	}

	return false
}
