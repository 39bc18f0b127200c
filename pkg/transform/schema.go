package transform

import (
	"fmt"
	"sort"
	"strings"
)

// Field describes how one result key is checked and coerced
type Field struct {
	Type     string                 `yaml:"type"`
	Required bool                   `yaml:"required,omitempty"`
	Config   map[string]interface{} `yaml:"config,omitempty"`
}

// Schema validates and coerces an assembled record. Keys without a Field
// pass through untouched unless Strict is set, in which case they fail.
type Schema struct {
	Fields   map[string]Field
	Strict   bool
	Registry *Registry
}

// FieldError reports one rejected key
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors collects every rejected key of a record
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate returns a coerced copy of record or the collected field errors
func (s *Schema) Validate(record Record) (Record, error) {
	registry := s.Registry
	if registry == nil {
		registry = DefaultRegistry
	}

	out := make(Record, len(record))
	for k, v := range record {
		out[k] = v
	}

	var errs FieldErrors

	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := s.Fields[name]
		value, present := record[name]
		if !present || value == nil {
			if field.Required {
				errs = append(errs, FieldError{Field: name, Message: "is required"})
			}
			continue
		}
		if field.Type == "" {
			continue
		}

		coercer, err := registry.Create(field.Type, field.Config)
		if err != nil {
			errs = append(errs, FieldError{Field: name, Message: err.Error()})
			continue
		}
		coerced, err := coercer.Coerce(value)
		if err != nil {
			errs = append(errs, FieldError{Field: name, Message: err.Error()})
			continue
		}
		out[name] = coerced
	}

	if s.Strict {
		for k := range record {
			if _, ok := s.Fields[k]; !ok {
				errs = append(errs, FieldError{Field: k, Message: "is not allowed"})
			}
		}
	}

	if len(errs) > 0 {
		sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
		return nil, errs
	}
	return out, nil
}
