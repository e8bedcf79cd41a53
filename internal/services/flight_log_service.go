package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"infinite-experiment/logbook/internal/coerce"
	"infinite-experiment/logbook/internal/constants"
	"infinite-experiment/logbook/internal/db/repositories"
	"infinite-experiment/logbook/internal/logging"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/models/dtos"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
	"infinite-experiment/logbook/internal/registry"
)

// AircraftCatalog lists the shared aircraft catalog
type AircraftCatalog interface {
	coerce.AircraftResolver
	List(ctx context.Context) ([]gormModels.AircraftModel, error)
}

// FlightLogService serves per-user reads and edits of stored records
type FlightLogService struct {
	reg       *registry.Registry
	store     *repositories.FlightLogRepository
	scorecard *repositories.ScorecardRepository
	aircraft  AircraftCatalog
	location  *time.Location
}

func NewFlightLogService(
	reg *registry.Registry,
	store *repositories.FlightLogRepository,
	scorecard *repositories.ScorecardRepository,
	aircraft AircraftCatalog,
	location *time.Location,
) *FlightLogService {
	return &FlightLogService{
		reg:       reg,
		store:     store,
		scorecard: scorecard,
		aircraft:  aircraft,
		location:  location,
	}
}

// systemFields are accepted in update bodies and ignored
var systemFields = map[string]bool{
	"id":        true,
	"userid":    true,
	"createdat": true,
	"updatedat": true,
}

// fieldKey folds "totalTime", "total_time" and "TOTAL_TIME" to one form
func fieldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}

func (s *FlightLogService) List(ctx context.Context, userID string) ([]models.FlightLogRecord, error) {
	return s.store.ListForUser(ctx, userID)
}

func (s *FlightLogService) Get(ctx context.Context, userID, recordID string) (*models.FlightLogRecord, error) {
	return s.store.GetOne(ctx, userID, recordID)
}

// Update applies a partial edit. System fields are ignored; unknown or
// generated keys are UnknownColumn. Changing AIRCRAFT_TYPE or TOTAL_TIME
// re-derives the generated columns.
func (s *FlightLogService) Update(ctx context.Context, userID, recordID string, partial map[string]interface{}) (*models.FlightLogRecord, error) {
	// Ownership first: resolving a new aircraft may create catalog records.
	current, err := s.store.GetOne(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}

	byField := make(map[string]registry.ColumnDefinition, len(s.reg.All()))
	for _, def := range s.reg.All() {
		byField[fieldKey(def.Key)] = def
	}

	coercer := coerce.New(s.reg, s.aircraft, coerce.Options{Location: s.location})
	changes := make(map[string]interface{}, len(partial))
	var model *gormModels.AircraftModel

	for name, v := range partial {
		field := fieldKey(name)
		if systemFields[field] {
			continue
		}
		def, ok := byField[field]
		if !ok || def.Generated {
			return nil, models.NewError(constants.ErrCodeUnknownColumn, name, nil)
		}

		if def.Key == registry.KeyAircraftType {
			raw, isString := v.(string)
			if v != nil && !isString {
				return nil, models.NewError(constants.ErrCodeInvalidRequest, def.Key, fmt.Errorf("aircraft type must be a string"))
			}
			m, err := coercer.ResolveAircraft(ctx, raw)
			if err != nil {
				return nil, err
			}
			model = m
			changes[def.Key] = m.CanonicalName
			continue
		}

		value, err := coercer.CoerceInput(ctx, def, v)
		if err != nil {
			return nil, err
		}
		changes[def.Key] = value
	}

	_, aircraftChanged := changes[registry.KeyAircraftType]
	_, totalChanged := changes[registry.KeyTotalTime]

	// The current aircraft is resolved before the update transaction opens.
	if totalChanged && !aircraftChanged {
		if name, ok := current.Values[registry.KeyAircraftType].(string); ok && name != "" {
			m, err := coercer.ResolveAircraft(ctx, name)
			if err != nil {
				return nil, err
			}
			model = m
		}
	}

	rederive := aircraftChanged || totalChanged

	updated, err := s.store.Update(ctx, userID, recordID, func(current *models.FlightLogRecord) (map[string]interface{}, error) {
		if !rederive {
			return changes, nil
		}

		merged := make(map[string]interface{}, len(current.Values))
		for k, v := range current.Values {
			merged[k] = v
		}
		for k, v := range changes {
			merged[k] = v
		}
		coerce.DeriveGenerated(merged, model)

		out := make(map[string]interface{}, len(changes)+5)
		for k, v := range changes {
			out[k] = v
		}
		for _, def := range s.reg.All() {
			if def.Generated {
				out[def.Key] = merged[def.Key]
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	logging.Debug("Flight log updated", "user_id", userID, "record_id", recordID, "fields", len(changes))
	return updated, nil
}

func (s *FlightLogService) DeleteOne(ctx context.Context, userID, recordID string) error {
	return s.store.DeleteOne(ctx, userID, recordID)
}

// DeleteAll wipes the user's records; a user without records is not an error
func (s *FlightLogService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.DeleteAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	logging.Info("Flight logs wiped", "user_id", userID, "deleted", n)
	return n, nil
}

func (s *FlightLogService) Scorecard(ctx context.Context, userID string) (*dtos.Scorecard, error) {
	return s.scorecard.GetScorecard(ctx, userID)
}

// Columns returns the registry in order
func (s *FlightLogService) Columns() []registry.ColumnDefinition {
	return s.reg.All()
}

func (s *FlightLogService) Aircraft(ctx context.Context) ([]gormModels.AircraftModel, error) {
	return s.aircraft.List(ctx)
}
