package models

import "time"

// FlightLogRecord is one persisted flight. Values is keyed by registry column
// key; Extras keeps retained source columns that have no registry key.
type FlightLogRecord struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
	Values    map[string]interface{} `json:"values"`
	Extras    map[string]string      `json:"extras,omitempty"`
}

// CanonicalRow is a coerced row ready for insertion.
type CanonicalRow struct {
	Values map[string]interface{}
	Extras map[string]string
}

// RawIngestRow is one source row as ordered header/value pairs.
type RawIngestRow []RawCell

type RawCell struct {
	Header string `json:"header"`
	Value  string `json:"value"`
}

// Get returns the value for header and whether it was present.
func (r RawIngestRow) Get(header string) (string, bool) {
	for _, c := range r {
		if c.Header == header {
			return c.Value, true
		}
	}
	return "", false
}

// Headers returns the header of each cell in order.
func (r RawIngestRow) Headers() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Header
	}
	return out
}

// Values returns the raw values in header order.
func (r RawIngestRow) Values() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Value
	}
	return out
}
