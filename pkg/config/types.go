package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/saturnines/ledger-core/pkg/transform"
)

// MapFile holds named extraction and merge maps
type MapFile struct {
	Version    string                   `yaml:"version,omitempty"`
	Transforms map[string]TransformSpec `yaml:"transforms,omitempty"` // extraction maps by name
	Merges     map[string]MergeSpec     `yaml:"merges,omitempty"`     // merge maps by name
}

// TransformSpec is one declarative extraction map
type TransformSpec struct {
	Description     string                     `yaml:"description,omitempty"`
	Keys            map[string]KeySpec         `yaml:"keys"`
	IncludeUnmapped bool                       `yaml:"include_unmapped,omitempty"`
	Default         interface{}                `yaml:"default,omitempty"` // fallback for every key
	Schema          map[string]transform.Field `yaml:"schema,omitempty"`
	StrictSchema    bool                       `yaml:"strict_schema,omitempty"`
}

// KeySpec is the source of one output key. A plain string is shorthand for
// path, a list for paths.
type KeySpec struct {
	Path          string      `yaml:"path,omitempty"`
	Paths         []string    `yaml:"paths,omitempty"`
	Null          bool        `yaml:"always_null,omitempty"`
	Default       interface{} `yaml:"default,omitempty"`
	IncludeValues []string    `yaml:"include_values,omitempty"`
}

// MergeSpec is one declarative merge map
type MergeSpec struct {
	Description string       `yaml:"description,omitempty"`
	ShouldSet   bool         `yaml:"should_set,omitempty"` // create missing paths
	Keys        Destinations `yaml:"keys"`                 // applied in file order
}

// Destinations keeps merge keys in the order they appear in the file
type Destinations []NamedDestination

// NamedDestination is one source key of a merge map
type NamedDestination struct {
	Key  string
	Spec DestinationSpec
}

// Get returns the first destination declared for key
func (d Destinations) Get(key string) (DestinationSpec, bool) {
	for _, nd := range d {
		if nd.Key == key {
			return nd.Spec, true
		}
	}
	return DestinationSpec{}, false
}

// DestinationSpec says where a source key goes. A plain string is shorthand
// for path, a list for paths.
type DestinationSpec struct {
	Path                   string       `yaml:"path,omitempty"`
	Paths                  []TargetSpec `yaml:"paths,omitempty"`
	ShouldSet              bool         `yaml:"should_set,omitempty"`
	Nullable               bool         `yaml:"nullable,omitempty"`
	DeleteDestinationPaths []string     `yaml:"delete_destination_paths,omitempty"`
	Array                  *ArraySpec   `yaml:"array,omitempty"`
}

// TargetSpec is one candidate of a paths list
type TargetSpec struct {
	Path                   string   `yaml:"path"`
	ShouldSet              bool     `yaml:"should_set,omitempty"`
	Nullable               bool     `yaml:"nullable,omitempty"`
	DeleteDestinationPaths []string `yaml:"delete_destination_paths,omitempty"`
}

// ArraySpec reconciles a source list of sub-objects with a destination list
type ArraySpec struct {
	Accessor     string       `yaml:"array_accessor"`
	Matcher      []string     `yaml:"array_matcher,omitempty"`
	Map          Destinations `yaml:"array_map,omitempty"`
	ShouldSet    bool         `yaml:"should_set,omitempty"`
	ShouldDelete bool         `yaml:"should_delete,omitempty"`
}

// ReportJob describes one bisected report query against an HTTP endpoint
type ReportJob struct {
	Name       string            `yaml:"name"`
	Endpoint   string            `yaml:"endpoint"`    // base URL, reports live under /reports/{type}
	ReportType string            `yaml:"report_type"` // e.g. GeneralLedger
	Period     PeriodSpec        `yaml:"period"`
	MaxDepth   int               `yaml:"max_depth,omitempty"`
	Parallel   bool              `yaml:"parallel,omitempty"` // query both halves of a split at once
	Params     map[string]string `yaml:"params,omitempty"`
	Headers    map[string]string `yaml:"headers,omitempty"`
	Auth       *Auth             `yaml:"auth,omitempty"`
	Retry      *RetryConfig      `yaml:"retry,omitempty"`
	CacheSize  int               `yaml:"cache_size,omitempty"` // 0 disables the response cache
	Timeout    float64           `yaml:"timeout,omitempty"`    // seconds
}

// PeriodSpec is an inclusive YYYY-MM-DD range
type PeriodSpec struct {
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

// Auth defines auth methods
type Auth struct {
	Type   AuthType    `yaml:"type"`
	Basic  *BasicAuth  `yaml:"basic,omitempty"`
	Bearer *BearerAuth `yaml:"bearer,omitempty"`
	APIKey *APIKeyAuth `yaml:"api_key,omitempty"`
}

// AuthType defines supported authentication types
type AuthType string

const (
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
	AuthTypeAPIKey AuthType = "api_key"
)

// BasicAuth contains basic credentials
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// BearerAuth contains a bearer token
type BearerAuth struct {
	Token string `yaml:"token"`
}

// APIKeyAuth contains API key details
type APIKeyAuth struct {
	Header     string `yaml:"header,omitempty"`      // Header name
	QueryParam string `yaml:"query_param,omitempty"` // Query parameter name
	Value      string `yaml:"value"`
}

// RetryConfig tunes retries of report requests
type RetryConfig struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialBackoff    float64 `yaml:"initial_backoff"` // seconds
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	RetryableStatuses []int   `yaml:"retryable_statuses"`
}

// UnmarshalYAML accepts a path string, a list of paths, or the full form
func (k *KeySpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&k.Path)
	case yaml.SequenceNode:
		return value.Decode(&k.Paths)
	case yaml.MappingNode:
		type plain KeySpec
		return value.Decode((*plain)(k))
	}
	return fmt.Errorf("line %d: key must be a path, a list of paths or a mapping", value.Line)
}

// UnmarshalYAML accepts a path string, a list of targets, or the full form
func (d *DestinationSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&d.Path)
	case yaml.SequenceNode:
		return value.Decode(&d.Paths)
	case yaml.MappingNode:
		type plain DestinationSpec
		return value.Decode((*plain)(d))
	}
	return fmt.Errorf("line %d: destination must be a path, a list of paths or a mapping", value.Line)
}

// UnmarshalYAML reads a mapping of source key to destination, keeping order
func (d *Destinations) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: keys must be a mapping", value.Line)
	}
	out := make(Destinations, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var nd NamedDestination
		if err := value.Content[i].Decode(&nd.Key); err != nil {
			return err
		}
		if err := value.Content[i+1].Decode(&nd.Spec); err != nil {
			return err
		}
		out = append(out, nd)
	}
	*d = out
	return nil
}

// UnmarshalYAML accepts a bare path or the full form
func (t *TargetSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&t.Path)
	}
	type plain TargetSpec
	return value.Decode((*plain)(t))
}
