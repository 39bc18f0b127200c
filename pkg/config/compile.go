package config

import (
	"fmt"

	"github.com/saturnines/ledger-core/pkg/errors"
	"github.com/saturnines/ledger-core/pkg/merge"
	"github.com/saturnines/ledger-core/pkg/report"
	"github.com/saturnines/ledger-core/pkg/transform"
)

// Transform compiles the named extraction map
func (f *MapFile) Transform(name string) (transform.Map, *transform.Options, error) {
	spec, ok := f.Transforms[name]
	if !ok {
		return nil, nil, errors.WrapError(fmt.Errorf("no transform named %q", name), errors.ErrConfiguration, "lookup map")
	}
	m, opts := spec.Compile()
	return m, opts, nil
}

// Merge compiles the named merge map
func (f *MapFile) Merge(name string) (merge.Map, *merge.Options, error) {
	spec, ok := f.Merges[name]
	if !ok {
		return nil, nil, errors.WrapError(fmt.Errorf("no merge named %q", name), errors.ErrConfiguration, "lookup map")
	}
	m, opts := spec.Compile()
	return m, opts, nil
}

// Compile builds the extraction map and options
func (s TransformSpec) Compile() (transform.Map, *transform.Options) {
	m := make(transform.Map, len(s.Keys))
	opts := &transform.Options{
		Keys:            make(map[string]transform.KeyOptions),
		IncludeUnmapped: s.IncludeUnmapped,
		DefaultValue:    s.Default,
	}

	for key, k := range s.Keys {
		switch {
		case k.Null:
			m[key] = transform.Null{}
		case len(k.Paths) > 0:
			m[key] = transform.Paths(k.Paths)
		default:
			m[key] = transform.Path(k.Path)
		}
		if k.Default != nil || len(k.IncludeValues) > 0 {
			opts.Keys[key] = transform.KeyOptions{DefaultValue: k.Default, IncludeValues: k.IncludeValues}
		}
	}

	if len(s.Schema) > 0 {
		opts.Schema = &transform.Schema{Fields: s.Schema, Strict: s.StrictSchema}
	}
	return m, opts
}

// Compile builds the merge map and options
func (s MergeSpec) Compile() (merge.Map, *merge.Options) {
	return compileDestinations(s.Keys), &merge.Options{ShouldSet: s.ShouldSet}
}

func compileDestinations(keys Destinations) merge.Map {
	if keys == nil {
		return nil
	}
	m := make(merge.Map, 0, len(keys))
	for _, nd := range keys {
		m = append(m, merge.Entry{Key: nd.Key, Accessor: nd.Spec.accessor()})
	}
	return m
}

func (d DestinationSpec) accessor() merge.Accessor {
	switch {
	case d.Array != nil:
		return merge.Array{
			Accessor:     d.Array.Accessor,
			Matcher:      d.Array.Matcher,
			Map:          compileDestinations(d.Array.Map),
			ShouldSet:    d.Array.ShouldSet,
			ShouldDelete: d.Array.ShouldDelete,
		}
	case len(d.Paths) > 0:
		targets := make(merge.FirstOf, len(d.Paths))
		for i, t := range d.Paths {
			targets[i] = target(t.Path, t.ShouldSet, t.Nullable, t.DeleteDestinationPaths)
		}
		return targets
	default:
		return target(d.Path, d.ShouldSet, d.Nullable, d.DeleteDestinationPaths)
	}
}

func target(path string, shouldSet, nullable bool, deletes []string) merge.Target {
	if !shouldSet && !nullable && len(deletes) == 0 {
		return merge.Path(path)
	}
	return merge.Field{
		Path:                   path,
		ShouldSet:              shouldSet,
		Nullable:               nullable,
		DeleteDestinationPaths: deletes,
	}
}

// ReportPeriod parses the job's period
func (j *ReportJob) ReportPeriod() (report.Period, error) {
	return report.ParsePeriod(j.Period.StartDate, j.Period.EndDate)
}
