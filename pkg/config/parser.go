package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saturnines/ledger-core/pkg/errors"
	"github.com/saturnines/ledger-core/pkg/merge"
	"github.com/saturnines/ledger-core/pkg/report"
)

// ConfigLoader defines the interface for loading configs
type ConfigLoader interface {
	Load(path string) (interface{}, error)
	Parse(data []byte) (interface{}, error)
}

type ValidationError struct {
	Field   string
	Message string
}

// Returns the string representation of validation error
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is every problem found in one document
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

type Validator interface {
	Validate(config interface{}) []ValidationError
}

// DefaultValueSetter Handles the interface for setting default values
type DefaultValueSetter interface {
	SetDefaults(config interface{})
}

// VariableExpander defines the interface for expanding variables
type VariableExpander interface {
	Expand(data []byte) []byte
}

// EnvExpander expands $VAR and ${VAR} from the environment
type EnvExpander struct{}

// Expand expands environment variables with the given data
func (e *EnvExpander) Expand(data []byte) []byte {
	return []byte(os.Expand(string(data), os.Getenv))
}

// Loader runs expand, decode, defaults and validation for one document type
type Loader struct {
	newTarget     func() interface{}
	expander      VariableExpander
	defaultSetter DefaultValueSetter
	validators    []Validator
}

// NewMapFileLoader creates a Loader producing *MapFile
func NewMapFileLoader(expander VariableExpander, validators ...Validator) *Loader {
	return &Loader{
		newTarget:  func() interface{} { return &MapFile{} },
		expander:   expander,
		validators: validators,
	}
}

// NewReportJobLoader creates a Loader producing *ReportJob
func NewReportJobLoader(expander VariableExpander, defaultSetter DefaultValueSetter, validators ...Validator) *Loader {
	return &Loader{
		newTarget:     func() interface{} { return &ReportJob{} },
		expander:      expander,
		defaultSetter: defaultSetter,
		validators:    validators,
	}
}

// Load a config from a YAML file
func (l *Loader) Load(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrConfiguration, "failed to read file")
	}

	return l.Parse(data)
}

// Parse parses a yaml config
func (l *Loader) Parse(data []byte) (interface{}, error) {
	if l.expander != nil {
		data = l.expander.Expand(data)
	}

	target := l.newTarget()
	if err := yaml.Unmarshal(data, target); err != nil {
		return nil, errors.WrapError(err, errors.ErrConfiguration, "failed to parse YAML")
	}

	if l.defaultSetter != nil {
		l.defaultSetter.SetDefaults(target)
	}

	var allErrors ValidationErrors
	for _, validator := range l.validators {
		allErrors = append(allErrors, validator.Validate(target)...)
	}
	if len(allErrors) > 0 {
		return nil, errors.WrapError(allErrors, errors.ErrValidation, "validation errors")
	}

	return target, nil
}

// LoadMapFile reads a map file with the standard validators
func LoadMapFile(path string) (*MapFile, error) {
	result, err := NewMapFileLoader(&EnvExpander{}, &MapValidator{}).Load(path)
	if err != nil {
		return nil, err
	}
	return result.(*MapFile), nil
}

// LoadReportJob reads a report job with the standard defaults and validators
func LoadReportJob(path string) (*ReportJob, error) {
	result, err := NewReportJobLoader(
		&EnvExpander{},
		&ReportJobDefaults{},
		&RequiredFieldValidator{},
		&AuthValidator{},
	).Load(path)
	if err != nil {
		return nil, err
	}
	return result.(*ReportJob), nil
}

// ReportJobDefaults implements DefaultValueSetter for ReportJob
type ReportJobDefaults struct{}

// SetDefaults sets default values for ReportJob
func (d *ReportJobDefaults) SetDefaults(config interface{}) {
	job, ok := config.(*ReportJob)
	if !ok {
		return
	}

	if job.MaxDepth == 0 {
		job.MaxDepth = report.DefaultMaxDepth
	}
	if job.Timeout == 0 {
		job.Timeout = 30
	}
	if job.Retry != nil {
		if job.Retry.InitialBackoff == 0 {
			job.Retry.InitialBackoff = 1
		}
		if job.Retry.BackoffMultiplier == 0 {
			job.Retry.BackoffMultiplier = 2
		}
		if len(job.Retry.RetryableStatuses) == 0 {
			job.Retry.RetryableStatuses = []int{429, 502, 503, 504}
		}
	}
}

// RequiredFieldValidator validates the fields a report job cannot run without
type RequiredFieldValidator struct{}

// Validate checks that all required fields are present
func (v *RequiredFieldValidator) Validate(config interface{}) []ValidationError {
	job, ok := config.(*ReportJob)
	if !ok {
		return []ValidationError{{Field: "config", Message: "not a ReportJob"}}
	}

	var errs []ValidationError

	if job.Endpoint == "" {
		errs = append(errs, ValidationError{Field: "endpoint", Message: "is required"})
	}
	if job.ReportType == "" {
		errs = append(errs, ValidationError{Field: "report_type", Message: "is required"})
	}
	if job.Period.StartDate == "" || job.Period.EndDate == "" {
		errs = append(errs, ValidationError{Field: "period", Message: "start_date and end_date are required"})
	} else if _, err := job.ReportPeriod(); err != nil {
		errs = append(errs, ValidationError{Field: "period", Message: err.Error()})
	}
	if job.MaxDepth < 0 {
		errs = append(errs, ValidationError{Field: "max_depth", Message: "must not be negative"})
	}
	if job.CacheSize < 0 {
		errs = append(errs, ValidationError{Field: "cache_size", Message: "must not be negative"})
	}
	if job.Retry != nil && job.Retry.MaxAttempts < 1 {
		errs = append(errs, ValidationError{Field: "retry.max_attempts", Message: "must be positive"})
	}

	return errs
}

// AuthValidator handles authentication validation
type AuthValidator struct{}

// Validate checks that authentication configuration is valid
func (v *AuthValidator) Validate(config interface{}) []ValidationError {
	job, ok := config.(*ReportJob)
	if !ok {
		return []ValidationError{{Field: "config", Message: "not a ReportJob"}}
	}

	var errs []ValidationError

	if job.Auth == nil {
		return errs
	}

	switch job.Auth.Type {
	case AuthTypeBasic:
		if job.Auth.Basic == nil {
			errs = append(errs, ValidationError{Field: "auth.basic", Message: "is required for basic auth"})
		} else if job.Auth.Basic.Username == "" {
			errs = append(errs, ValidationError{Field: "auth.basic.username", Message: "is required for basic auth"})
		}
	case AuthTypeBearer:
		if job.Auth.Bearer == nil || job.Auth.Bearer.Token == "" {
			errs = append(errs, ValidationError{Field: "auth.bearer.token", Message: "is required for bearer auth"})
		}
	case AuthTypeAPIKey:
		if job.Auth.APIKey == nil {
			errs = append(errs, ValidationError{Field: "auth.api_key", Message: "is required for api_key auth"})
		} else if job.Auth.APIKey.Value == "" {
			// header and query_param may both be empty: the key goes in X-API-Key
			errs = append(errs, ValidationError{Field: "auth.api_key.value", Message: "is required for api_key auth"})
		}
	default:
		errs = append(errs, ValidationError{Field: "auth.type", Message: fmt.Sprintf("unknown auth type: %s", job.Auth.Type)})
	}

	return errs
}

// MapValidator checks every map in a MapFile is well formed
type MapValidator struct{}

// Validate checks key shapes and runs the merge map checks
func (v *MapValidator) Validate(config interface{}) []ValidationError {
	file, ok := config.(*MapFile)
	if !ok {
		return []ValidationError{{Field: "config", Message: "not a MapFile"}}
	}

	var errs []ValidationError

	if len(file.Transforms) == 0 && len(file.Merges) == 0 {
		errs = append(errs, ValidationError{Field: "maps", Message: "at least one transform or merge is required"})
	}

	for _, name := range sortedKeys(file.Transforms) {
		spec := file.Transforms[name]
		for _, key := range sortedKeys(spec.Keys) {
			k := spec.Keys[key]
			sources := 0
			if k.Path != "" {
				sources++
			}
			if len(k.Paths) > 0 {
				sources++
			}
			if k.Null {
				sources++
			}
			if sources != 1 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("transforms.%s.keys.%s", name, key),
					Message: "exactly one of path, paths or always_null is required",
				})
			}
		}
	}

	for _, name := range sortedKeys(file.Merges) {
		spec := file.Merges[name]
		field := fmt.Sprintf("merges.%s", name)
		errs = append(errs, validateDestinations(field+".keys", spec.Keys)...)

		m, opts := spec.Compile()
		if err := merge.Validate(m, opts); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: err.Error()})
		}
	}

	return errs
}

func validateDestinations(prefix string, keys Destinations) []ValidationError {
	var errs []ValidationError
	for _, nd := range keys {
		key, d := nd.Key, nd.Spec
		sources := 0
		if d.Path != "" {
			sources++
		}
		if len(d.Paths) > 0 {
			sources++
		}
		if d.Array != nil {
			sources++
			errs = append(errs, validateDestinations(prefix+"."+key+".array_map", d.Array.Map)...)
		}
		if sources != 1 {
			errs = append(errs, ValidationError{
				Field:   prefix + "." + key,
				Message: "exactly one of path, paths or array is required",
			})
		}
	}
	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
