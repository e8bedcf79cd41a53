package dtos

// ImportRequest is the body of a logbook import. Rows hold values in header order.
type ImportRequest struct {
	Headers         []string   `json:"headers"`
	Rows            [][]string `json:"rows"`
	FromImageSource bool       `json:"fromImageSource"`
	TimestampFormat string     `json:"timestampFormat,omitempty"`
}

// MappingSummary describes how the source headers were mapped.
type MappingSummary struct {
	Mapped   map[string]string `json:"mapped"`
	Retained []string          `json:"retained"`
	Dropped  []string          `json:"dropped"`
}

// ImportReport is returned after a successful import.
type ImportReport struct {
	Inserted        int            `json:"inserted"`
	RecordIDs       []string       `json:"recordIds"`
	Mapping         MappingSummary `json:"mapping"`
	TimestampFormat string         `json:"timestampFormat,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
}

// DeleteAllResponse reports how many records a wipe removed.
type DeleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}

// Scorecard is the per-user totals report.
type Scorecard struct {
	UserID              string  `json:"userId" db:"user_id"`
	Flights             int64   `json:"flights" db:"flights"`
	TotalHours          float64 `json:"totalHours" db:"total_hours"`
	PICHours            float64 `json:"picHours" db:"pic_hours"`
	SICHours            float64 `json:"sicHours" db:"sic_hours"`
	DualReceivedHours   float64 `json:"dualReceivedHours" db:"dual_received_hours"`
	NightHours          float64 `json:"nightHours" db:"night_hours"`
	CrossCountryHours   float64 `json:"crossCountryHours" db:"cross_country_hours"`
	ActualInstrument    float64 `json:"actualInstrumentHours" db:"actual_instrument_hours"`
	SimulatedInstrument float64 `json:"simulatedInstrumentHours" db:"simulated_instrument_hours"`
	TurbineHours        float64 `json:"turbineHours" db:"turbine_hours"`
	MultiEngineHours    float64 `json:"multiEngineHours" db:"multi_engine_hours"`
	HelicopterHours     float64 `json:"helicopterHours" db:"helicopter_hours"`
	MilitaryHours       float64 `json:"militaryHours" db:"military_hours"`
	DayLandings         int64   `json:"dayLandings" db:"day_landings"`
	NightLandings       int64   `json:"nightLandings" db:"night_landings"`
	Approaches          int64   `json:"approaches" db:"approaches"`
	FirstFlight         *string `json:"firstFlight,omitempty" db:"first_flight"`
	LastFlight          *string `json:"lastFlight,omitempty" db:"last_flight"`
}

// AircraftSpec is one entry of an administrative catalog import.
type AircraftSpec struct {
	CanonicalName  string   `json:"canonicalName" yaml:"canonical_name"`
	Aliases        []string `json:"aliases" yaml:"aliases"`
	IsFixedWing    bool     `json:"isFixedWing" yaml:"fixed_wing"`
	IsHelicopter   bool     `json:"isHelicopter" yaml:"helicopter"`
	IsSingleEngine bool     `json:"isSingleEngine" yaml:"single_engine"`
	IsTurbine      bool     `json:"isTurbine" yaml:"turbine"`
	IsMilitary     bool     `json:"isMilitary" yaml:"military"`
}

// CatalogImportResult summarizes an administrative catalog import.
type CatalogImportResult struct {
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	AliasesAdded   int      `json:"aliasesAdded"`
	SkippedAliases []string `json:"skippedAliases,omitempty"`
}
