package transform

// Record is a flat keyed result, or the source an extraction reads from
type Record = map[string]interface{}

// Accessor tells Transform where an output key's value comes from. It is a
// closed set: Path, Paths, Func and Null.
type Accessor interface {
	accessor()
}

// Path reads a single dotted path from the source
type Path string

// Paths tries each path in order; the first non-nil value wins
type Paths []string

// Func computes a value from the source. siblings holds the keys named in
// KeyOptions.IncludeValues, extracted from the same source without defaults
// or props; props is the caller's Options.Props. A nil result or an error
// falls back to the key's default.
type Func func(source, siblings, props Record) (interface{}, error)

// Null always yields nil; defaults are not applied
type Null struct{}

func (Path) accessor()  {}
func (Paths) accessor() {}
func (Func) accessor()  {}
func (Null) accessor()  {}

// Map is the declarative extraction program: output key -> accessor
type Map map[string]Accessor

// KeyOptions tunes a single output key
type KeyOptions struct {
	DefaultValue  interface{}
	IncludeValues []string
}

// ParseFunc validates or reshapes an assembled result
type ParseFunc func(Record) (Record, error)

// Options tunes a Transform call
type Options struct {
	Keys            map[string]KeyOptions
	IncludeUnmapped bool
	DefaultValue    interface{}
	Schema          *Schema
	Parse           ParseFunc
	Props           Record
}
