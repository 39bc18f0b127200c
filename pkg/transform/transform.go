// Package transform flattens loosely typed source objects into records using
// a declarative accessor map.
package transform

import (
	"fmt"

	"github.com/saturnines/ledger-core/pkg/errors"
	"github.com/saturnines/ledger-core/pkg/node"
)

// Transform builds a record from source. Every key of m resolves
// independently; a failing accessor degrades to the key's default. Only the
// schema or parse hook can fail the call, with an ErrValidation error.
func Transform(source Record, m Map, opts *Options) (Record, error) {
	if opts == nil {
		opts = &Options{}
	}

	e := &extraction{source: source, m: m, opts: opts, done: make(Record, len(m))}
	for key := range m {
		e.resolve(key)
	}

	result := e.done
	if opts.IncludeUnmapped {
		result = make(Record, len(source)+len(e.done))
		for k, v := range source {
			result[k] = v
		}
		for k, v := range e.done {
			result[k] = v
		}
	}

	if opts.Schema != nil {
		validated, err := opts.Schema.Validate(result)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrValidation, "schema")
		}
		return validated, nil
	}

	if opts.Parse != nil {
		parsed, err := opts.Parse(result)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrValidation, "parse")
		}
		return parsed, nil
	}

	return result, nil
}

// TransformMany applies Transform to each source independently
func TransformMany(data []Record, m Map, opts *Options) ([]Record, error) {
	results := make([]Record, 0, len(data))
	for i, source := range data {
		result, err := Transform(source, m, opts)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		results = append(results, result)
	}
	return results, nil
}

type extraction struct {
	source Record
	m      Map
	opts   *Options
	done   Record
}

func (e *extraction) defaultFor(key string) interface{} {
	if ko, ok := e.opts.Keys[key]; ok && ko.DefaultValue != nil {
		return ko.DefaultValue
	}
	return e.opts.DefaultValue
}

// resolve computes key once
func (e *extraction) resolve(key string) {
	if _, ok := e.done[key]; ok {
		return
	}
	accessor, ok := e.m[key]
	if !ok {
		return
	}

	def := e.defaultFor(key)
	value := def

	switch a := accessor.(type) {
	case nil, Null:
		value = nil

	case Path:
		if v, ok := node.Get(e.source, string(a)); ok && v != nil {
			value = v
		}

	case Paths:
		for _, p := range a {
			if v, ok := node.Get(e.source, p); ok && v != nil {
				value = v
				break
			}
		}

	case Func:
		if v := call(a, e.source, e.siblings(key), e.opts.Props); v != nil {
			value = v
		}
	}

	e.done[key] = value
}

// siblings runs the keys named in IncludeValues as a plain extraction of
// the same source: no defaults, no props and no nested IncludeValues.
func (e *extraction) siblings(key string) Record {
	include := e.opts.Keys[key].IncludeValues
	if len(include) == 0 {
		return Record{}
	}

	plain := &extraction{source: e.source, m: e.m, opts: &Options{}, done: make(Record, len(include))}
	siblings := make(Record, len(include))
	for _, name := range include {
		plain.resolve(name)
		if v, ok := plain.done[name]; ok {
			siblings[name] = v
		}
	}
	return siblings
}

// call runs an accessor function, absorbing errors and panics
func call(fn Func, source, siblings, props Record) (value interface{}) {
	defer func() {
		if recover() != nil {
			value = nil
		}
	}()

	v, err := fn(source, siblings, props)
	if err != nil {
		return nil
	}
	return v
}
