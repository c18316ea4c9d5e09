package attributes

import (
	"sort"
	"strings"
)

// Store maps attribute field names to their current string values. Values for
// fields absent from the currently resolved schema stay in the store but are
// filtered out by Serialize, so a category switch never corrupts or loses
// in-progress input and never submits stale keys.
type Store struct {
	values map[string]string
}

// NewStore returns an empty value store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Restore builds a store from previously saved values.
func Restore(values map[string]string) *Store {
	store := NewStore()
	for name, value := range values {
		if strings.TrimSpace(name) == "" {
			continue
		}
		store.values[name] = value
	}
	return store
}

// Set overwrites the value for a field name. Text, textarea, select, and
// radio inputs all use plain overwrite semantics.
func (s *Store) Set(name, value string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s.values[name] = value
}

// Get returns the stored value for a field name.
func (s *Store) Get(name string) (string, bool) {
	value, ok := s.values[name]
	return value, ok
}

// Delete removes a field value outright.
func (s *Store) Delete(name string) {
	delete(s.values, name)
}

// Len returns the number of stored values, including inert ones.
func (s *Store) Len() int {
	return len(s.values)
}

// ToggleCheckboxOption adds or removes one option value inside a checkbox
// field's comma-joined set and returns the new joined value. Unrelated
// selections in the same field are preserved.
func (s *Store) ToggleCheckboxOption(name, option string, checked bool) string {
	name = strings.TrimSpace(name)
	option = strings.TrimSpace(option)
	if name == "" || option == "" {
		value := s.values[name]
		return value
	}

	selected := SplitCheckboxValue(s.values[name])
	next := make([]string, 0, len(selected)+1)
	present := false
	for _, value := range selected {
		if value == option {
			present = true
			if !checked {
				continue
			}
		}
		next = append(next, value)
	}
	if checked && !present {
		next = append(next, option)
	}

	joined := strings.Join(next, ",")
	if joined == "" {
		delete(s.values, name)
	} else {
		s.values[name] = joined
	}
	return joined
}

// SplitCheckboxValue decodes a comma-joined checkbox value into its selected
// option values. Empty segments are dropped.
func SplitCheckboxValue(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Serialize returns the submission payload for the given resolved schema.
// Only values whose field name appears in the schema are included; everything
// is passed through as an opaque string.
func (s *Store) Serialize(schema []FieldDef) map[string]string {
	out := make(map[string]string, len(schema))
	for _, field := range schema {
		if value, ok := s.values[field.Name]; ok && value != "" {
			out[field.Name] = value
		}
	}
	return out
}

// Values returns a copy of every stored value, inert keys included. Used for
// persistence so a category round-trip does not lose input.
func (s *Store) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for name, value := range s.values {
		out[name] = value
	}
	return out
}

// MissingRequired lists required schema fields that have no stored value,
// in schema order.
func (s *Store) MissingRequired(schema []FieldDef) []string {
	var missing []string
	for _, field := range schema {
		if !field.Required {
			continue
		}
		if value, ok := s.values[field.Name]; !ok || strings.TrimSpace(value) == "" {
			missing = append(missing, field.Name)
		}
	}
	return missing
}

// Names returns the stored field names sorted for deterministic display.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
