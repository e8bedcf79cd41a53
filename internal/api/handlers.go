package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	reqctx "infinite-experiment/logbook/internal/context"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/models/dtos"
	"infinite-experiment/logbook/internal/models/dtos/responses"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
	"infinite-experiment/logbook/internal/registry"
)

// maxImportBody bounds import uploads
const maxImportBody = 16 << 20

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// ListColumns handles GET /api/v1/columns
func (h *Handlers) ListColumns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cols := h.deps.Services.FlightLogs.Columns()
		respondWithSuccess(w, http.StatusOK, &responses.ListResponse[registry.ColumnDefinition]{
			Count: len(cols),
			Items: cols,
		})
	}
}

// ImportLogbook handles POST /api/v1/logbook/import
func (h *Handlers) ImportLogbook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.ImportRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBody)).Decode(&req); err != nil {
			respondBadRequest(w, "Invalid request body: "+err.Error())
			return
		}

		report, err := h.deps.Services.Ingestion.Import(r.Context(), reqctx.GetUserID(r.Context()), req)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusCreated, report)
	}
}

// ListLogbook handles GET /api/v1/logbook
func (h *Handlers) ListLogbook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.deps.Services.FlightLogs.List(r.Context(), reqctx.GetUserID(r.Context()))
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		if records == nil {
			records = []models.FlightLogRecord{}
		}
		respondWithSuccess(w, http.StatusOK, &responses.ListResponse[models.FlightLogRecord]{
			Count: len(records),
			Items: records,
		})
	}
}

// GetLogbookEntry handles GET /api/v1/logbook/{id}
func (h *Handlers) GetLogbookEntry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := h.deps.Services.FlightLogs.Get(r.Context(), reqctx.GetUserID(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, record)
	}
}

// UpdateLogbookEntry handles PATCH /api/v1/logbook/{id}
func (h *Handlers) UpdateLogbookEntry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var partial map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
			respondBadRequest(w, "Invalid request body: "+err.Error())
			return
		}

		record, err := h.deps.Services.FlightLogs.Update(r.Context(), reqctx.GetUserID(r.Context()), chi.URLParam(r, "id"), partial)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, record)
	}
}

// DeleteLogbookEntry handles DELETE /api/v1/logbook/{id}
func (h *Handlers) DeleteLogbookEntry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.deps.Services.FlightLogs.DeleteOne(r.Context(), reqctx.GetUserID(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteLogbook handles DELETE /api/v1/logbook
func (h *Handlers) DeleteLogbook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.deps.Services.FlightLogs.DeleteAll(r.Context(), reqctx.GetUserID(r.Context()))
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &dtos.DeleteAllResponse{Deleted: n})
	}
}

// GetScorecard handles GET /api/v1/logbook/scorecard
func (h *Handlers) GetScorecard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := h.deps.Services.FlightLogs.Scorecard(r.Context(), reqctx.GetUserID(r.Context()))
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, card)
	}
}

// ListAircraft handles GET /api/v1/aircraft
func (h *Handlers) ListAircraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.deps.Services.FlightLogs.Aircraft(r.Context())
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		if list == nil {
			list = []gormModels.AircraftModel{}
		}
		respondWithSuccess(w, http.StatusOK, &responses.ListResponse[gormModels.AircraftModel]{
			Count: len(list),
			Items: list,
		})
	}
}
