package registry

// Canonical column keys.
const (
	KeyDateTime            = "DATE_TIME"
	KeyAircraftType        = "AIRCRAFT_TYPE"
	KeyAircraftIdent       = "AIRCRAFT_IDENT"
	KeyDeparture           = "DEPARTURE"
	KeyArrival             = "ARRIVAL"
	KeyRoute               = "ROUTE"
	KeyTotalTime           = "TOTAL_TIME"
	KeyPICTime             = "PIC_TIME"
	KeySICTime             = "SIC_TIME"
	KeyDualReceived        = "DUAL_RECEIVED"
	KeyDualGiven           = "DUAL_GIVEN"
	KeySoloTime            = "SOLO_TIME"
	KeyCrossCountryTime    = "CROSS_COUNTRY_TIME"
	KeyNightTime           = "NIGHT_TIME"
	KeyActualInstrument    = "ACTUAL_INSTRUMENT"
	KeySimulatedInstrument = "SIMULATED_INSTRUMENT"
	KeySimulatorTime       = "SIMULATOR_TIME"
	KeyDayLandings         = "DAY_LANDINGS"
	KeyNightLandings       = "NIGHT_LANDINGS"
	KeyApproaches          = "APPROACHES"
	KeyHolds               = "HOLDS"
	KeyDistance            = "DISTANCE"
	KeyRemarks             = "REMARKS"

	KeyAircraftModelID = "AIRCRAFT_MODEL_ID"
	KeyTurbineTime     = "TURBINE_TIME"
	KeyMultiEngineTime = "MULTI_ENGINE_TIME"
	KeyHelicopterTime  = "HELICOPTER_TIME"
	KeyMilitaryTime    = "MILITARY_TIME"
)

var flightLogColumns = []ColumnDefinition{
	{Key: KeyDateTime, DataType: Timestamp, Description: "Date and time the flight started", Required: true},
	{Key: KeyAircraftType, DataType: String, Description: "Aircraft make and model, e.g. Cessna 172", Required: true},
	{Key: KeyAircraftIdent, DataType: String, Description: "Aircraft registration or tail number"},
	{Key: KeyDeparture, DataType: String, Description: "Departure airport identifier"},
	{Key: KeyArrival, DataType: String, Description: "Arrival airport identifier"},
	{Key: KeyRoute, DataType: String, Description: "Route of flight or intermediate stops"},
	{Key: KeyTotalTime, DataType: Number, Unit: UnitHours, Description: "Total flight duration", Required: true},
	{Key: KeyPICTime, DataType: Number, Unit: UnitHours, Description: "Pilot in command time"},
	{Key: KeySICTime, DataType: Number, Unit: UnitHours, Description: "Second in command time"},
	{Key: KeyDualReceived, DataType: Number, Unit: UnitHours, Description: "Dual instruction received"},
	{Key: KeyDualGiven, DataType: Number, Unit: UnitHours, Description: "Dual instruction given as instructor"},
	{Key: KeySoloTime, DataType: Number, Unit: UnitHours, Description: "Solo flight time"},
	{Key: KeyCrossCountryTime, DataType: Number, Unit: UnitHours, Description: "Cross-country time"},
	{Key: KeyNightTime, DataType: Number, Unit: UnitHours, Description: "Night time"},
	{Key: KeyActualInstrument, DataType: Number, Unit: UnitHours, Description: "Actual instrument conditions"},
	{Key: KeySimulatedInstrument, DataType: Number, Unit: UnitHours, Description: "Simulated instrument (hood) time"},
	{Key: KeySimulatorTime, DataType: Number, Unit: UnitHours, Description: "Flight simulator or training device time"},
	{Key: KeyDayLandings, DataType: Number, Unit: UnitCount, Description: "Number of day landings"},
	{Key: KeyNightLandings, DataType: Number, Unit: UnitCount, Description: "Number of night landings"},
	{Key: KeyApproaches, DataType: Number, Unit: UnitCount, Description: "Number of instrument approaches"},
	{Key: KeyHolds, DataType: Number, Unit: UnitCount, Description: "Number of holding procedures"},
	{Key: KeyDistance, DataType: Number, Unit: UnitNauticalMiles, Description: "Distance flown"},
	{Key: KeyRemarks, DataType: String, Description: "Free-text remarks"},

	{Key: KeyAircraftModelID, DataType: String, Description: "Aircraft catalog record id", Generated: true},
	{Key: KeyTurbineTime, DataType: Number, Unit: UnitHours, Description: "Total time flown in turbine aircraft", Generated: true},
	{Key: KeyMultiEngineTime, DataType: Number, Unit: UnitHours, Description: "Total time flown in multi-engine aircraft", Generated: true},
	{Key: KeyHelicopterTime, DataType: Number, Unit: UnitHours, Description: "Total time flown in helicopters", Generated: true},
	{Key: KeyMilitaryTime, DataType: Number, Unit: UnitHours, Description: "Total time flown in military aircraft", Generated: true},
}

var defaultRegistry = MustNew(flightLogColumns)

// Default returns the flight-log column registry.
func Default() *Registry {
	return defaultRegistry
}
