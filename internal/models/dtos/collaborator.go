package dtos

// ---- COLUMN SUGGESTIONS ----
type SuggestColumnsRequest struct {
	Headers    []string   `json:"headers"`
	SampleRows [][]string `json:"sample_rows"`
	Registry   string     `json:"registry"`
}

type RenameSuggestion struct {
	OriginalHeader string `json:"original_header"`
	ProposedKey    string `json:"proposed_key"`
}

type ColumnSuggestions struct {
	RenameSuggestions []RenameSuggestion `json:"rename_suggestions"`
	RemoveSuggestions []string           `json:"remove_suggestions"`
}

// ---- FORMAT DETECTION ----
type DetectFormatRequest struct {
	Headers    []string   `json:"headers"`
	SampleRows [][]string `json:"sample_rows"`
}

// FormatDetection indexes are nil when the service found no such column.
type FormatDetection struct {
	DateTimeColumnIndex *int   `json:"date_time_column_index"`
	AircraftColumnIndex *int   `json:"aircraft_column_index"`
	TimestampFormat     string `json:"timestamp_format"`
}

// ---- AIRCRAFT INFERENCE ----
type InferAircraftRequest struct {
	RawIdentifier   string `json:"raw_identifier"`
	FromImageSource bool   `json:"from_image_source"`
}

// AircraftAttributes is the inference result. A nil attribute means the
// service did not answer it.
type AircraftAttributes struct {
	CanonicalName  string `json:"canonical_name"`
	IsFixedWing    *bool  `json:"is_fixed_wing"`
	IsHelicopter   *bool  `json:"is_helicopter"`
	IsSingleEngine *bool  `json:"is_single_engine"`
	IsTurbine      *bool  `json:"is_turbine"`
	IsMilitary     *bool  `json:"is_military"`
}

// Complete reports whether every attribute was answered.
func (a *AircraftAttributes) Complete() bool {
	return a != nil &&
		a.CanonicalName != "" &&
		a.IsFixedWing != nil &&
		a.IsHelicopter != nil &&
		a.IsSingleEngine != nil &&
		a.IsTurbine != nil &&
		a.IsMilitary != nil
}
