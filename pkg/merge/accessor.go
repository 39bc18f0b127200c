package merge

// Record is a decoded object
type Record = map[string]interface{}

// Accessor says where, and under which policy, a source key is written into
// the destination. It is a closed set: Path, Options, FirstOf, Array, Func.
type Accessor interface {
	destination()
}

// Target is an accessor allowed inside FirstOf
type Target interface {
	Accessor
	target()
}

// Path writes at a dotted destination path that must already exist, unless
// the merge runs with Options.ShouldSet.
type Path string

// Field is the option form of Path
type Field struct {
	Path      string
	ShouldSet bool
	// Nullable lets empty source values (nil, "", 0, false) be written
	Nullable bool
	// DeleteDestinationPaths are removed before the write is attempted
	DeleteDestinationPaths []string
}

// FirstOf writes at the first target whose path already exists in the
// destination. It never creates structure through a bare Path, and is a
// no-op when there is no destination at all.
type FirstOf []Target

// Array reconciles a source sequence of sub-objects with the destination
// sequence at Accessor.
//   - ShouldDelete removes every element matching a source sub-object.
//   - ShouldSet appends a new element built from Map.
//   - otherwise the first matching element is merged with Map.
//
// Matcher is {source key, destination key}.
type Array struct {
	Accessor     string
	Matcher      []string
	Map          Map
	ShouldSet    bool
	ShouldDelete bool
}

// Func picks an accessor from the source and its owning record. Returning
// nil or an error, or panicking, makes the key a no-op.
type Func func(source, parent Record) (Accessor, error)

func (Path) destination()    {}
func (Field) destination()   {}
func (FirstOf) destination() {}
func (Array) destination()   {}
func (Func) destination()    {}

func (Path) target()  {}
func (Field) target() {}

// Entry binds a source key to its accessor
type Entry struct {
	Key      string
	Accessor Accessor
}

// Map is the declarative merge program. Entries apply in order, so keys
// writing to the same destination (update, then append, then delete lines)
// behave the same on every run.
type Map []Entry

// Get returns the accessor of the first entry for key
func (m Map) Get(key string) (Accessor, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Accessor, true
		}
	}
	return nil, false
}

// Keys lists the source keys in application order
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// Options are global to one MergeInto call
type Options struct {
	// ShouldSet creates missing destination paths; used to build objects
	// from scratch.
	ShouldSet bool
}
