package models

import (
	"errors"
	"fmt"

	"infinite-experiment/logbook/internal/constants"
)

// FlightLogError is the error type surfaced by ingestion, the catalog and the store.
// Two FlightLogErrors match under errors.Is when their codes are equal, so callers
// compare against the sentinels below.
type FlightLogError struct {
	Code    string
	Message string
	Column  string
	Row     int // zero-based row index within a batch, -1 when not row scoped
	Err     error
}

var (
	ErrMissingRequiredField    = newSentinel(constants.ErrCodeMissingRequiredField)
	ErrInvalidNumericValue     = newSentinel(constants.ErrCodeInvalidNumericValue)
	ErrInvalidTimestamp        = newSentinel(constants.ErrCodeInvalidTimestamp)
	ErrUnresolvedAircraft      = newSentinel(constants.ErrCodeUnresolvedAircraft)
	ErrUnknownColumn           = newSentinel(constants.ErrCodeUnknownColumn)
	ErrNotFound                = newSentinel(constants.ErrCodeNotFound)
	ErrInvalidRequest          = newSentinel(constants.ErrCodeInvalidRequest)
	ErrCollaboratorUnavailable = newSentinel(constants.ErrCodeCollaboratorUnavailable)
	ErrCatalogConflict         = newSentinel(constants.ErrCodeCatalogConflict)
)

func newSentinel(code string) *FlightLogError {
	return &FlightLogError{Code: code, Message: constants.GetErrorMessage(code), Row: -1}
}

// NewError builds a FlightLogError for code, optionally scoped to a column.
func NewError(code, column string, err error) *FlightLogError {
	return &FlightLogError{
		Code:    code,
		Message: constants.GetErrorMessage(code),
		Column:  column,
		Row:     -1,
		Err:     err,
	}
}

func (e *FlightLogError) Error() string {
	msg := e.Message
	if e.Column != "" {
		msg = fmt.Sprintf("%s: %s", e.Column, msg)
	}
	if e.Row >= 0 {
		msg = fmt.Sprintf("row %d: %s", e.Row, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FlightLogError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a FlightLogError with the same code.
func (e *FlightLogError) Is(target error) bool {
	t, ok := target.(*FlightLogError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// AtRow returns a copy of the error scoped to row.
func (e *FlightLogError) AtRow(row int) *FlightLogError {
	cp := *e
	cp.Row = row
	return &cp
}

// ErrorCode extracts the code of the first FlightLogError in err's chain.
func ErrorCode(err error) string {
	var fe *FlightLogError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}
