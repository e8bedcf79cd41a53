// Package mapping decides, once per batch, which registry key each source
// header feeds.
package mapping

import (
	"infinite-experiment/logbook/internal/models/dtos"
)

// Disposition is what happens to a source column
type Disposition int

const (
	// Dropped columns are discarded
	Dropped Disposition = iota
	// Mapped columns feed a registry key
	Mapped
	// Retained columns carry duration data with no acceptable key and are
	// stored as informational extras
	Retained
)

func (d Disposition) String() string {
	switch d {
	case Mapped:
		return "mapped"
	case Retained:
		return "retained"
	default:
		return "dropped"
	}
}

// How a mapped column was matched
const (
	SourceExact     = "exact"
	SourceDetected  = "detected"
	SourceSuggested = "suggested"
)

// Assignment is the decision for the source column at Index
type Assignment struct {
	Index       int
	Header      string
	Disposition Disposition
	Key         string // set only when Mapped
	Source      string
}

// ColumnMapping is the per-batch result, one assignment per header in
// header order
type ColumnMapping struct {
	Assignments []Assignment
	Warnings    []string
}

// KeyFor returns the registry key fed by column i
func (m *ColumnMapping) KeyFor(i int) (string, bool) {
	if i < 0 || i >= len(m.Assignments) || m.Assignments[i].Disposition != Mapped {
		return "", false
	}
	return m.Assignments[i].Key, true
}

// IndexOf returns the column that feeds key
func (m *ColumnMapping) IndexOf(key string) (int, bool) {
	for _, a := range m.Assignments {
		if a.Disposition == Mapped && a.Key == key {
			return a.Index, true
		}
	}
	return -1, false
}

// Keys returns the mapped keys in header order
func (m *ColumnMapping) Keys() []string {
	var keys []string
	for _, a := range m.Assignments {
		if a.Disposition == Mapped {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

func (m *ColumnMapping) headers(d Disposition) []string {
	out := []string{}
	for _, a := range m.Assignments {
		if a.Disposition == d {
			out = append(out, a.Header)
		}
	}
	return out
}

// Retained returns the headers kept as informational extras
func (m *ColumnMapping) Retained() []string {
	return m.headers(Retained)
}

// Dropped returns the headers that are neither mapped nor retained
func (m *ColumnMapping) Dropped() []string {
	return m.headers(Dropped)
}

// Summary renders the mapping for an import report
func (m *ColumnMapping) Summary() dtos.MappingSummary {
	mapped := make(map[string]string)
	for _, a := range m.Assignments {
		if a.Disposition == Mapped {
			mapped[a.Header] = a.Key
		}
	}
	return dtos.MappingSummary{
		Mapped:   mapped,
		Retained: m.Retained(),
		Dropped:  m.Dropped(),
	}
}
