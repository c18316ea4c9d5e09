package attributes

import (
	"fmt"
	"strings"
)

// Kind identifies the input control an attribute field renders as. The set is
// closed; dispatching on Kind is how consumers handle new field types.
type Kind string

const (
	KindText     Kind = "text"
	KindTextArea Kind = "textarea"
	KindSelect   Kind = "select"
	KindRadio    Kind = "radio"
	KindCheckbox Kind = "checkbox"
)

// Valid reports whether the kind is one of the supported input kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindTextArea, KindSelect, KindRadio, KindCheckbox:
		return true
	default:
		return false
	}
}

// HasOptions reports whether fields of this kind carry an option list.
func (k Kind) HasOptions() bool {
	switch k {
	case KindSelect, KindRadio, KindCheckbox:
		return true
	default:
		return false
	}
}

// ParseKind normalizes a backend-declared kind string.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown attribute kind %q", value)
	}
	return kind, nil
}

// Option is a selectable value for select, radio, and checkbox fields.
// Option values must not contain commas; checkbox values are stored as a
// comma-joined list with no escaping.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FieldDef describes one attribute input in a resolved schema. Name is the
// unique key within a schema; Label is what the form displays.
type FieldDef struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Kind        Kind     `json:"kind"`
	Required    bool     `json:"required"`
	Options     []Option `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// ValidateSchema checks the invariants a resolved schema must satisfy: unique
// field names, known kinds, and a non-empty option list for option kinds.
func ValidateSchema(fields []FieldDef) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("attribute field with empty name (label %q)", field.Label)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate attribute field name %q", name)
		}
		seen[name] = struct{}{}
		if !field.Kind.Valid() {
			return fmt.Errorf("attribute field %q has unknown kind %q", name, field.Kind)
		}
		if field.Kind.HasOptions() {
			if len(field.Options) == 0 {
				return fmt.Errorf("attribute field %q of kind %s has no options", name, field.Kind)
			}
			for _, option := range field.Options {
				if strings.Contains(option.Value, ",") {
					return fmt.Errorf("attribute field %q option value %q contains a comma", name, option.Value)
				}
			}
		}
	}
	return nil
}

// FieldByName returns the field definition with the given name, if present.
func FieldByName(fields []FieldDef, name string) (FieldDef, bool) {
	for _, field := range fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldDef{}, false
}
