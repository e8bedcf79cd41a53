package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"infinite-experiment/logbook/internal/constants"
	"infinite-experiment/logbook/internal/logging"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/models/dtos/responses"
)

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := responses.APIResponse[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, detail responses.ErrorDetail) {
	resp := responses.APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     &detail,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusBadRequest, responses.ErrorDetail{
		Code:    constants.ErrCodeInvalidRequest,
		Message: message,
	})
}

// statusFor maps flight-log error codes to HTTP statuses
var statusFor = map[string]int{
	constants.ErrCodeNotFound:                http.StatusNotFound,
	constants.ErrCodeInvalidRequest:          http.StatusBadRequest,
	constants.ErrCodeUnknownColumn:           http.StatusUnprocessableEntity,
	constants.ErrCodeMissingRequiredField:    http.StatusUnprocessableEntity,
	constants.ErrCodeInvalidNumericValue:     http.StatusUnprocessableEntity,
	constants.ErrCodeInvalidTimestamp:        http.StatusUnprocessableEntity,
	constants.ErrCodeUnresolvedAircraft:      http.StatusUnprocessableEntity,
	constants.ErrCodeCatalogConflict:         http.StatusConflict,
	constants.ErrCodeCollaboratorUnavailable: http.StatusServiceUnavailable,
}

// respondWithServiceError writes err as a flight-log error body. Errors that
// carry no code are logged and reported as 500.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fe *models.FlightLogError
	if !errors.As(err, &fe) {
		logging.Error("Request failed", "path", r.URL.Path, "error", err.Error())
		respondWithError(w, http.StatusInternalServerError, responses.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		})
		return
	}

	status, ok := statusFor[fe.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	detail := responses.ErrorDetail{
		Code:    fe.Code,
		Message: fe.Message,
		Column:  fe.Column,
	}
	if fe.Err != nil {
		detail.Message = fe.Message + ": " + fe.Err.Error()
	}
	if fe.Row >= 0 {
		row := fe.Row
		detail.Row = &row
	}
	respondWithError(w, status, detail)
}
