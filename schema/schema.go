// Package schema validates dynamic component documents against runtime
// declared shapes: required fields, value kinds, numeric ranges, and enums.
package schema

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

type Kind string

const (
	String  Kind = "string"
	Number  Kind = "number"
	Integer Kind = "integer"
	Boolean Kind = "boolean"
	Array   Kind = "array"
	Object  Kind = "object"
	Any     Kind = "any"
)

type Field struct {
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Enum     []any    `json:"enum,omitempty"`
	// Fields describes nested object fields when Kind is Object.
	Fields map[string]Field `json:"fields,omitempty"`
}

// Doc describes the shape of one component document. Unknown fields are
// allowed; component documents stay open for forward compatibility.
type Doc struct {
	Fields map[string]Field `json:"fields"`
}

// Bound is a convenience for declaring Min/Max limits inline.
func Bound(v float64) *float64 {
	return &v
}

// Validate returns one message per violation. An empty result means the
// document is valid against the schema.
func (d Doc) Validate(data map[string]any) []string {
	return validateFields("", d.Fields, data)
}

func validateFields(prefix string, fields map[string]Field, data map[string]any) []string {
	var errs []string
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		field := fields[name]
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		value, ok := data[name]
		if !ok {
			if field.Required {
				errs = append(errs, fmt.Sprintf("%s: required field is missing", path))
			}
			continue
		}
		errs = append(errs, validateValue(path, field, value)...)
	}
	return errs
}

//nolint:gocognit // one branch per kind
func validateValue(path string, field Field, value any) []string {
	var errs []string
	switch field.Kind {
	case Any, "":
		// no shape constraint
	case String:
		if _, ok := value.(string); !ok {
			return []string{fmt.Sprintf("%s: expected string, got %T", path, value)}
		}
	case Boolean:
		if _, ok := value.(bool); !ok {
			return []string{fmt.Sprintf("%s: expected boolean, got %T", path, value)}
		}
	case Number, Integer:
		num, ok := toFloat(value)
		if !ok {
			return []string{fmt.Sprintf("%s: expected %s, got %T", path, field.Kind, value)}
		}
		if field.Kind == Integer && num != math.Trunc(num) {
			errs = append(errs, fmt.Sprintf("%s: expected integer, got %v", path, num))
		}
		if field.Min != nil && num < *field.Min {
			errs = append(errs, fmt.Sprintf("%s: value %v is below minimum %v", path, num, *field.Min))
		}
		if field.Max != nil && num > *field.Max {
			errs = append(errs, fmt.Sprintf("%s: value %v is above maximum %v", path, num, *field.Max))
		}
	case Array:
		if !isArray(value) {
			return []string{fmt.Sprintf("%s: expected array, got %T", path, value)}
		}
	case Object:
		obj, ok := value.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("%s: expected object, got %T", path, value)}
		}
		errs = append(errs, validateFields(path, field.Fields, obj)...)
	default:
		errs = append(errs, fmt.Sprintf("%s: unknown schema kind %q", path, field.Kind))
	}
	if len(field.Enum) > 0 && !enumAllows(field.Enum, value) {
		errs = append(errs, fmt.Sprintf("%s: value %v is not one of the allowed values", path, value))
	}
	return errs
}

func enumAllows(allowed []any, value any) bool {
	for _, candidate := range allowed {
		if reflect.DeepEqual(candidate, value) {
			return true
		}
		// numeric enums: 1 and 1.0 are the same value on the wire
		cf, cok := toFloat(candidate)
		vf, vok := toFloat(value)
		if cok && vok && cf == vf {
			return true
		}
	}
	return false
}

func isArray(value any) bool {
	if value == nil {
		return false
	}
	kind := reflect.TypeOf(value).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
