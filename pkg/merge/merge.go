// Package merge writes edited flat records back into the nested shape an
// upstream API expects.
package merge

import (
	"github.com/saturnines/ledger-core/pkg/node"
)

// MergeInto returns a copy of destination with every mapped source value
// written into it. destination itself is never modified. With a nil
// destination a new object is built, which only makes sense with
// Options.ShouldSet. The only error is a destination that cannot be cloned.
func MergeInto(source, destination Record, m Map, parent Record, opts *Options) (Record, error) {
	if opts == nil {
		opts = &Options{}
	}

	result, err := node.CloneMapping(destination)
	if err != nil {
		return nil, err
	}

	mg := &merger{
		source:         source,
		result:         result,
		parent:         parent,
		opts:           opts,
		hasDestination: destination != nil,
	}
	for _, e := range m {
		mg.apply(e.Key, e.Accessor, true)
	}

	return result, nil
}

// DeepUpdateValue writes value at path when the path exists or shouldSet is
// given. Reports whether obj was updated.
func DeepUpdateValue(obj Record, path string, value interface{}, shouldSet bool) bool {
	if node.Has(obj, path) || shouldSet {
		return node.Set(obj, path, value)
	}
	return false
}

type merger struct {
	source         Record
	result         Record
	parent         Record
	opts           *Options
	hasDestination bool
}

// apply dispatches one key. resolveFuncs is false for accessors returned
// by a Func, which are applied once and not resolved again.
func (mg *merger) apply(sourceKey string, accessor Accessor, resolveFuncs bool) bool {
	switch a := accessor.(type) {
	case Path:
		return mg.write(sourceKey, Field{Path: string(a)}, mg.opts.ShouldSet)

	case Field:
		return mg.write(sourceKey, a, mg.opts.ShouldSet || a.ShouldSet)

	case FirstOf:
		if !mg.hasDestination {
			return false
		}
		for _, t := range a {
			var ok bool
			switch f := t.(type) {
			case Path:
				ok = mg.write(sourceKey, Field{Path: string(f)}, false)
			case Field:
				ok = mg.write(sourceKey, f, f.ShouldSet)
			}
			if ok {
				return true
			}
		}
		return false

	case Array:
		return mg.reconcile(sourceKey, a)

	case Func:
		if !resolveFuncs {
			return false
		}
		resolved := resolve(a, mg.source, mg.parent)
		if resolved == nil {
			return false
		}
		return mg.apply(sourceKey, resolved, false)
	}

	return false
}

// resolve runs an accessor function, absorbing errors and panics
func resolve(fn Func, source, parent Record) (accessor Accessor) {
	defer func() {
		if recover() != nil {
			accessor = nil
		}
	}()

	a, err := fn(source, parent)
	if err != nil {
		return nil
	}
	return a
}

// write applies the presence and nullability gate, then the field's
// deletions, then the write itself.
func (mg *merger) write(sourceKey string, f Field, shouldSet bool) bool {
	value, present := mg.source[sourceKey]
	if !present {
		return false
	}
	if node.IsEmpty(value) && !f.Nullable {
		return false
	}
	if f.Path == "" {
		return false
	}

	for _, p := range f.DeleteDestinationPaths {
		node.Unset(mg.result, p)
	}

	return DeepUpdateValue(mg.result, f.Path, value, shouldSet)
}
