package constants

// Flight-log error codes
// These constants identify every failure kind surfaced by ingestion and the store

// Coercion errors
const (
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidNumericValue  = "INVALID_NUMERIC_VALUE"
	ErrCodeInvalidTimestamp     = "INVALID_TIMESTAMP"
	ErrCodeUnresolvedAircraft   = "UNRESOLVED_AIRCRAFT"
)

// Store errors
const (
	ErrCodeUnknownColumn  = "UNKNOWN_COLUMN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
)

// Collaborator and catalog errors
const (
	ErrCodeCollaboratorUnavailable = "COLLABORATOR_UNAVAILABLE"
	ErrCodeCatalogConflict         = "CATALOG_CONFLICT"
	ErrCodeRateLimited             = "RATE_LIMITED"
	ErrCodeNetworkError            = "NETWORK_ERROR"
	ErrCodeInvalidAPIKey           = "INVALID_API_KEY"
	ErrCodeMalformedResponse       = "MALFORMED_RESPONSE"
)

// Error Messages
// Human-readable messages corresponding to error codes

var FlightLogErrorMessages = map[string]string{
	ErrCodeMissingRequiredField: "A required column is empty or missing",
	ErrCodeInvalidNumericValue:  "The value is not a valid number for this column",
	ErrCodeInvalidTimestamp:     "The value could not be read as an unambiguous date and time",
	ErrCodeUnresolvedAircraft:   "The aircraft could not be matched to the catalog",

	ErrCodeUnknownColumn:  "The column is not part of the flight log",
	ErrCodeNotFound:       "The flight log record was not found",
	ErrCodeInvalidRequest: "The request is invalid",

	ErrCodeCollaboratorUnavailable: "The suggestion service is unavailable",
	ErrCodeCatalogConflict:         "The aircraft catalog entry was created concurrently",
	ErrCodeRateLimited:             "Rate limit exceeded. Please try again later",
	ErrCodeNetworkError:            "Unable to reach the suggestion service",
	ErrCodeInvalidAPIKey:           "The suggestion service API key is invalid or missing",
	ErrCodeMalformedResponse:       "The suggestion service returned an unexpected response",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := FlightLogErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
