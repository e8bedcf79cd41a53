// Package registry holds the fixed catalog of canonical flight-log columns.
//
// Every ingested value is ultimately stored under one of these keys. The
// registry is built once at process start and is read-only afterwards, so it
// is safe for concurrent use without locking.
package registry

import (
	"fmt"
	"strings"
)

// DataType is the storage type of a canonical column.
type DataType string

const (
	Number    DataType = "number"
	Timestamp DataType = "timestamp"
	String    DataType = "string"
)

// Unit qualifies numeric columns. The empty unit means none.
type Unit string

const (
	UnitNone          Unit = ""
	UnitHours         Unit = "hours"
	UnitCount         Unit = "count"
	UnitNauticalMiles Unit = "nautical_miles"
)

// ColumnDefinition describes one canonical column.
type ColumnDefinition struct {
	Key         string   `json:"key"`
	DataType    DataType `json:"dataType"`
	Unit        Unit     `json:"unit,omitempty"`
	Description string   `json:"description"`
	Generated   bool     `json:"generated"`
	Required    bool     `json:"required"`
}

// DBColumn returns the physical column name backing the key.
func (c ColumnDefinition) DBColumn() string {
	return strings.ToLower(c.Key)
}

// IsDuration reports whether the column holds a length of time.
func (c ColumnDefinition) IsDuration() bool {
	return c.DataType == Number && c.Unit == UnitHours
}

// Registry is an ordered, immutable set of column definitions.
type Registry struct {
	defs  []ColumnDefinition
	byKey map[string]int
}

// New validates defs and builds a registry. Keys must be non-empty and unique.
func New(defs []ColumnDefinition) (*Registry, error) {
	r := &Registry{
		defs:  make([]ColumnDefinition, len(defs)),
		byKey: make(map[string]int, len(defs)),
	}
	copy(r.defs, defs)

	for i, def := range r.defs {
		if def.Key == "" {
			return nil, fmt.Errorf("column %d has an empty key", i)
		}
		if _, exists := r.byKey[def.Key]; exists {
			return nil, fmt.Errorf("column already registered: %s", def.Key)
		}
		if def.Generated && def.Required {
			return nil, fmt.Errorf("column %s cannot be both generated and required", def.Key)
		}
		r.byKey[def.Key] = i
	}

	return r, nil
}

// MustNew is New that panics on an invalid definition list.
func MustNew(defs []ColumnDefinition) *Registry {
	r, err := New(defs)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the definition for key.
func (r *Registry) Lookup(key string) (ColumnDefinition, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return ColumnDefinition{}, false
	}
	return r.defs[i], true
}

// All returns every definition in registry order.
func (r *Registry) All() []ColumnDefinition {
	out := make([]ColumnDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// IsRequired reports whether key names a required column.
func (r *Registry) IsRequired(key string) bool {
	def, ok := r.Lookup(key)
	return ok && def.Required
}

// Keys returns all keys in registry order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.defs))
	for i, def := range r.defs {
		keys[i] = def.Key
	}
	return keys
}

// RequiredKeys returns the keys of required columns in registry order.
func (r *Registry) RequiredKeys() []string {
	var keys []string
	for _, def := range r.defs {
		if def.Required {
			keys = append(keys, def.Key)
		}
	}
	return keys
}

// Inputs returns the definitions that raw input may populate.
func (r *Registry) Inputs() []ColumnDefinition {
	var out []ColumnDefinition
	for _, def := range r.defs {
		if !def.Generated {
			out = append(out, def)
		}
	}
	return out
}

// MatchHeader finds the input column whose key equals header, ignoring case
// and surrounding whitespace. Generated columns never match.
func (r *Registry) MatchHeader(header string) (ColumnDefinition, bool) {
	def, ok := r.Lookup(strings.ToUpper(strings.TrimSpace(header)))
	if !ok || def.Generated {
		return ColumnDefinition{}, false
	}
	return def, true
}

// Describe renders the input columns one per line for the suggestion service.
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, def := range r.Inputs() {
		b.WriteString(def.Key)
		b.WriteString(" (")
		b.WriteString(string(def.DataType))
		if def.Unit != UnitNone {
			b.WriteString(", ")
			b.WriteString(string(def.Unit))
		}
		if def.Required {
			b.WriteString(", required")
		}
		b.WriteString("): ")
		b.WriteString(def.Description)
		b.WriteString("\n")
	}
	return b.String()
}
