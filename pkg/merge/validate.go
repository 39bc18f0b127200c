package merge

import (
	"fmt"
	"sort"

	"github.com/saturnines/ledger-core/pkg/errors"
)

// Validate checks a map before it is used. It rejects FirstOf accessors in
// maps that will run with ShouldSet (directly, or as the Map of an appending
// Array), since FirstOf cannot create structure and would silently do
// nothing. MergeInto itself does not call Validate.
func Validate(m Map, opts *Options) error {
	shouldSet := opts != nil && opts.ShouldSet
	var problems []string
	validate(m, shouldSet, "", &problems)
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return errors.WrapError(fmt.Errorf("%v", problems), errors.ErrConfiguration, "invalid merge map")
}

func validate(m Map, shouldSet bool, prefix string, problems *[]string) {
	seen := make(map[string]bool, len(m))
	for _, e := range m {
		name := prefix + e.Key
		if seen[e.Key] {
			*problems = append(*problems, name+": duplicate key")
		}
		seen[e.Key] = true

		switch a := e.Accessor.(type) {
		case nil:
			*problems = append(*problems, name+": nil accessor")
		case Path:
			if a == "" {
				*problems = append(*problems, name+": empty path")
			}
		case Field:
			if a.Path == "" {
				*problems = append(*problems, name+": empty path")
			}
		case FirstOf:
			if shouldSet {
				*problems = append(*problems, name+": path list cannot be used when creating objects")
			}
			if len(a) == 0 {
				*problems = append(*problems, name+": empty path list")
			}
		case Array:
			if a.Accessor == "" {
				*problems = append(*problems, name+": array accessor is required")
			}
			if a.Matcher != nil && len(a.Matcher) != 2 {
				*problems = append(*problems, name+": array matcher needs a source and a destination key")
			}
			if (a.ShouldDelete || !a.ShouldSet) && len(a.Matcher) != 2 {
				*problems = append(*problems, name+": array matcher is required to update or delete")
			}
			if !a.ShouldDelete && a.Map == nil {
				*problems = append(*problems, name+": array map is required unless deleting")
			}
			if a.Map != nil {
				validate(a.Map, a.ShouldSet && !a.ShouldDelete, name+".", problems)
			}
		}
	}
}
