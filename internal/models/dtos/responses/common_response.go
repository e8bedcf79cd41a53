package responses

import "time"

// APIResponse wraps every JSON body served under /api/v1
type APIResponse[T any] struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Data      *T           `json:"data,omitempty"`
}

// ErrorDetail carries a flight-log error code and, when known, the row and
// column it applies to
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Column  string `json:"column,omitempty"`
	Row     *int   `json:"row,omitempty"`
}

// ListResponse wraps collection payloads
type ListResponse[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}
