// Package tools holds declarative tool descriptors and the executors that
// consume them.
package tools

import (
	"fmt"
	"strings"
)

// FieldType is the value type of a descriptor field.
type FieldType string

const (
	FieldString FieldType = "string"
)

// Widget hints how a form renderer should display a field.
type Widget string

const (
	WidgetLongInput  Widget = "long-input"
	WidgetShortInput Widget = "short-input"
	WidgetDropdown   Widget = "dropdown"
)

// Field is one configurable input of a tool.
type Field struct {
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Type        FieldType `json:"type"`
	Widget      Widget    `json:"widget"`
	Placeholder string    `json:"placeholder,omitempty"`
	Default     string    `json:"default,omitempty"`
	Required    bool      `json:"required"`
	Secret      bool      `json:"secret,omitempty"`
	// Options, when set, is the closed set of accepted values.
	Options []string `json:"options,omitempty"`
}

// Descriptor declares a tool's inputs and outputs. It carries no behaviour;
// executors and form renderers consume it.
type Descriptor struct {
	Type            string            `json:"type"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	LongDescription string            `json:"longDescription,omitempty"`
	Category        string            `json:"category"`
	Fields          []Field           `json:"fields"`
	Outputs         map[string]string `json:"outputs"`
	Access          []string          `json:"access,omitempty"`
}

// Field returns the field with the given key.
func (d Descriptor) Field(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// ParamError reports an input that failed the descriptor's constraints.
type ParamError struct {
	Key    string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Key, e.Reason)
}

// Resolve applies defaults and checks required and option constraints.
// Unknown keys are rejected. Secret values are never echoed in errors.
func (d Descriptor) Resolve(params map[string]string) (map[string]string, error) {
	for key := range params {
		if _, ok := d.Field(key); !ok {
			return nil, &ParamError{Key: key, Reason: "unknown parameter"}
		}
	}

	out := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		v := params[f.Key]
		if strings.TrimSpace(v) == "" {
			v = f.Default
		}
		if v == "" {
			if f.Required {
				return nil, &ParamError{Key: f.Key, Reason: "is required"}
			}
			continue
		}
		if len(f.Options) > 0 && !contains(f.Options, v) {
			reason := fmt.Sprintf("must be one of %s", strings.Join(f.Options, ", "))
			if !f.Secret {
				reason = fmt.Sprintf("%q %s", v, reason)
			}
			return nil, &ParamError{Key: f.Key, Reason: reason}
		}
		out[f.Key] = v
	}
	return out, nil
}

// Redacted returns a copy of params with secret fields masked, for logging.
func (d Descriptor) Redacted(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if f, ok := d.Field(k); ok && f.Secret && v != "" {
			v = "********"
		}
		out[k] = v
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
