// Package node holds the generic document model the engines operate on and
// the path locator used to read and write inside it.
//
// A Node is whatever encoding/json produces when decoding into an interface{}:
// a map[string]interface{} (mapping), a []interface{} (sequence) or anything
// else (scalar, including nil).
package node

// Kind classifies a node
type Kind int

const (
	Scalar   Kind = iota // strings, numbers, bools, nil
	Sequence             // []interface{}
	Mapping              // map[string]interface{}
)

func (k Kind) String() string {
	switch k {
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return "scalar"
	}
}

// KindOf reports the kind of v
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case map[string]interface{}:
		return Mapping
	case []interface{}:
		return Sequence
	default:
		return Scalar
	}
}

// IsEmpty reports whether v counts as "no value" for write gating:
// nil, false, zero numbers and the empty string.
func IsEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	case float32:
		return t == 0
	}
	return false
}

// Equal compares two scalar values the way the engines match keys: numbers
// compare by value regardless of their Go type, everything else with ==.
// Non-comparable values (maps, slices) are never equal.
func Equal(a, b interface{}) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	if KindOf(a) != Scalar || KindOf(b) != Scalar {
		return false
	}
	return a == b
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
