package merge

import (
	"github.com/saturnines/ledger-core/pkg/node"
)

func (mg *merger) reconcile(sourceKey string, a Array) bool {
	if a.Accessor == "" {
		return false
	}
	subObjects, ok := records(mg.source[sourceKey])
	if !ok {
		return false
	}

	existing, ok := node.Get(mg.result, a.Accessor)
	destArray, isSeq := existing.([]interface{})
	if !ok || !isSeq {
		if !mg.opts.ShouldSet {
			return false
		}
		destArray = []interface{}{}
	}

	for _, sub := range subObjects {
		switch {
		case a.ShouldDelete:
			destArray = removeMatching(destArray, sub, a.Matcher)

		case a.Map == nil:
			continue

		case a.ShouldSet:
			built, err := MergeInto(sub, nil, a.Map, mg.source, &Options{ShouldSet: true})
			if err != nil {
				continue
			}
			destArray = append(destArray, built)

		default:
			idx := findMatch(destArray, sub, a.Matcher)
			if idx < 0 {
				continue
			}
			matched, _ := destArray[idx].(map[string]interface{})
			merged, err := MergeInto(sub, matched, a.Map, mg.source, nil)
			if err != nil {
				continue
			}
			destArray[idx] = merged
		}
	}

	return node.Set(mg.result, a.Accessor, destArray)
}

// records returns the mapping elements of a source sequence. The boolean
// is false when v is absent or not a sequence; an empty sequence is valid.
func records(v interface{}) ([]Record, bool) {
	switch s := v.(type) {
	case []map[string]interface{}:
		return s, true
	case []interface{}:
		out := make([]Record, 0, len(s))
		for _, item := range s {
			if r, ok := item.(map[string]interface{}); ok {
				out = append(out, r)
			}
		}
		return out, true
	}
	return nil, false
}

// matches compares sub[matcher[0]] with elem[matcher[1]]. A sub-object
// without a value for its key matches nothing.
func matches(elem interface{}, sub Record, matcher []string) bool {
	if len(matcher) != 2 {
		return false
	}
	want, ok := sub[matcher[0]]
	if !ok || want == nil {
		return false
	}
	m, ok := elem.(map[string]interface{})
	if !ok {
		return false
	}
	got, ok := m[matcher[1]]
	return ok && node.Equal(want, got)
}

func findMatch(arr []interface{}, sub Record, matcher []string) int {
	for i, elem := range arr {
		if matches(elem, sub, matcher) {
			return i
		}
	}
	return -1
}

func removeMatching(arr []interface{}, sub Record, matcher []string) []interface{} {
	kept := arr[:0:0]
	for _, elem := range arr {
		if !matches(elem, sub, matcher) {
			kept = append(kept, elem)
		}
	}
	return kept
}
