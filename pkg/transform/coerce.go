package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Coercer converts a single extracted value into its schema type
type Coercer interface {
	Coerce(value interface{}) (interface{}, error)
}

// CoercerCreator creates a coercer from its field config
type CoercerCreator func(config map[string]interface{}) (Coercer, error)

// Registry holds the named coercers a Schema can refer to
type Registry struct {
	creators map[string]CoercerCreator
}

// NewRegistry creates a registry with the default coercers
func NewRegistry() *Registry {
	r := &Registry{
		creators: make(map[string]CoercerCreator),
	}

	r.Register("string", stringCoercerCreator)
	r.Register("int", intCoercerCreator)
	r.Register("float", floatCoercerCreator)
	r.Register("amount", amountCoercerCreator)
	r.Register("bool", boolCoercerCreator)
	r.Register("date", dateCoercerCreator)
	r.Register("upper", upperCoercerCreator)
	r.Register("lower", lowerCoercerCreator)
	r.Register("trim", trimCoercerCreator)

	return r
}

// Register adds a coercer type
func (r *Registry) Register(name string, creator CoercerCreator) {
	r.creators[name] = creator
}

// Create builds a coercer from config
func (r *Registry) Create(coercerType string, config map[string]interface{}) (Coercer, error) {
	creator, ok := r.creators[coercerType]
	if !ok {
		return nil, fmt.Errorf("unknown coercer type: %s", coercerType)
	}
	return creator(config)
}

// CoercerFunc adapts a plain function
type CoercerFunc func(value interface{}) (interface{}, error)

func (f CoercerFunc) Coerce(value interface{}) (interface{}, error) {
	return f(value)
}

func stringCoercerCreator(config map[string]interface{}) (Coercer, error) {
	return CoercerFunc(func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case nil:
			return "", nil
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		default:
			return fmt.Sprintf("%v", v), nil
		}
	}), nil
}

func intCoercerCreator(config map[string]interface{}) (Coercer, error) {
	return CoercerFunc(func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case nil:
			return 0, nil
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		case string:
			return strconv.Atoi(strings.TrimSpace(v))
		default:
			return 0, fmt.Errorf("cannot convert %T to int", value)
		}
	}), nil
}

func floatCoercerCreator(config map[string]interface{}) (Coercer, error) {
	return CoercerFunc(toFloat), nil
}

func toFloat(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil:
		return 0.0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0.0, fmt.Errorf("cannot convert %T to float", value)
	}
}

// amount accepts report-style money strings: "1,234.50", "(12.00)", ""
func amountCoercerCreator(config map[string]interface{}) (Coercer, error) {
	return CoercerFunc(func(value interface{}) (interface{}, error) {
		s, ok := value.(string)
		if !ok {
			return toFloat(value)
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if s == "" {
			return 0.0, nil
		}
		negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
		if negative {
			s = s[1 : len(s)-1]
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q", value)
		}
		if negative {
			f = -f
		}
		return f, nil
	}), nil
}

func boolCoercerCreator(config map[string]interface{}) (Coercer, error) {
	return CoercerFunc(func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case nil:
			return false, nil
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(v)
		case int:
			return v != 0, nil
		case float64:
			return v != 0, nil
		default:
			return false, fmt.Errorf("cannot convert %T to bool", value)
		}
	}), nil
}

// DateCoercer normalizes dates. Report cells and entity payloads carry ISO
// dates, so both formats default to "Date".
type DateCoercer struct {
	InputFormat  string
	OutputFormat string
}

func dateCoercerCreator(config map[string]interface{}) (Coercer, error) {
	c := &DateCoercer{
		InputFormat:  "Date",
		OutputFormat: "Date",
	}

	if inputFmt, ok := config["input_format"].(string); ok {
		c.InputFormat = inputFmt
	}
	if outputFmt, ok := config["output_format"].(string); ok {
		c.OutputFormat = outputFmt
	}

	return c, nil
}

func (c *DateCoercer) Coerce(value interface{}) (interface{}, error) {
	var t time.Time
	var err error

	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		t, err = parseTime(v, c.InputFormat)
		if err != nil {
			return nil, err
		}
	case float64:
		t = time.Unix(int64(v), 0).UTC()
	case int64:
		t = time.Unix(v, 0).UTC()
	case time.Time:
		t = v
	default:
		return nil, fmt.Errorf("cannot parse date from %T", value)
	}

	return formatTime(t, c.OutputFormat), nil
}

var layouts = map[string]string{
	"RFC3339":     time.RFC3339,
	"RFC3339Nano": time.RFC3339Nano,
	"DateTime":    "2006-01-02 15:04:05",
	"Date":        "2006-01-02",
}

func parseTime(value, format string) (time.Time, error) {
	if layout, ok := layouts[format]; ok {
		format = layout
	}
	return time.ParseInLocation(format, value, time.UTC)
}

func formatTime(t time.Time, format string) string {
	switch format {
	case "Unix":
		return strconv.FormatInt(t.Unix(), 10)
	case "UnixMilli":
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	if layout, ok := layouts[format]; ok {
		format = layout
	}
	return t.Format(format)
}

func stringOnly(name string, fn func(string) string) CoercerCreator {
	return func(config map[string]interface{}) (Coercer, error) {
		return CoercerFunc(func(value interface{}) (interface{}, error) {
			str, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%s requires string input, got %T", name, value)
			}
			return fn(str), nil
		}), nil
	}
}

var (
	upperCoercerCreator = stringOnly("upper", strings.ToUpper)
	lowerCoercerCreator = stringOnly("lower", strings.ToLower)
	trimCoercerCreator  = stringOnly("trim", strings.TrimSpace)
)

// Chain applies coercers in order
type Chain []Coercer

func (c Chain) Coerce(value interface{}) (interface{}, error) {
	result := value
	for _, coercer := range c {
		var err error
		result, err = coercer.Coerce(result)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// DefaultRegistry is the registry schemas use unless told otherwise
var DefaultRegistry = NewRegistry()
