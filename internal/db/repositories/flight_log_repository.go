package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"infinite-experiment/logbook/internal/constants"
	"infinite-experiment/logbook/internal/models"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
	"infinite-experiment/logbook/internal/registry"
)

const insertBatchSize = 200

// FlightLogRepository persists flight-log rows whose columns come from the registry
type FlightLogRepository struct {
	db  *gorm.DB
	reg *registry.Registry
}

// NewFlightLogRepository creates a new GORM-based flight-log repository
func NewFlightLogRepository(db *gorm.DB, reg *registry.Registry) *FlightLogRepository {
	return &FlightLogRepository{db: db, reg: reg}
}

func (r *FlightLogRepository) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(gormModels.FlightLog{}.TableName())
}

// ListForUser returns the user's records, newest DATE_TIME first, ties by id
func (r *FlightLogRepository) ListForUser(ctx context.Context, userID string) ([]models.FlightLogRecord, error) {
	var rows []map[string]interface{}
	err := r.table(ctx).
		Where("user_id = ?", userID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: r.column(registry.KeyDateTime)}, Desc: true},
			{Column: clause.Column{Name: gormModels.FlightLogColumnID}},
		}}).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flight logs: %w", err)
	}

	records := make([]models.FlightLogRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := r.hydrate(row)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

// GetOne returns a record owned by userID, or models.ErrNotFound
func (r *FlightLogRepository) GetOne(ctx context.Context, userID, recordID string) (*models.FlightLogRecord, error) {
	return r.getOne(r.table(ctx), userID, recordID)
}

func (r *FlightLogRepository) getOne(tx *gorm.DB, userID, recordID string) (*models.FlightLogRecord, error) {
	var rows []map[string]interface{}
	err := tx.Table(gormModels.FlightLog{}.TableName()).
		Where("id = ? AND user_id = ?", recordID, userID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flight log: %w", err)
	}
	if len(rows) == 0 {
		return nil, models.ErrNotFound
	}
	return r.hydrate(rows[0])
}

// InsertBatch validates and stores rows in one transaction: either every row
// is persisted or none is. It returns the new record ids in row order.
func (r *FlightLogRepository) InsertBatch(ctx context.Context, userID string, rows []models.CanonicalRow) ([]string, error) {
	if userID == "" {
		return nil, models.NewError(constants.ErrCodeInvalidRequest, "", fmt.Errorf("user id is required"))
	}
	if len(rows) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	ids := make([]string, len(rows))
	values := make([]map[string]interface{}, len(rows))

	for i, row := range rows {
		if err := r.validate(row.Values); err != nil {
			return nil, err.AtRow(i)
		}

		extras, err := encodeExtras(row.Extras)
		if err != nil {
			return nil, err
		}

		ids[i] = uuid.NewString()
		m := map[string]interface{}{
			gormModels.FlightLogColumnID:          ids[i],
			gormModels.FlightLogColumnUserID:      userID,
			gormModels.FlightLogColumnExtraFields: extras,
			gormModels.FlightLogColumnCreatedAt:   now,
			gormModels.FlightLogColumnUpdatedAt:   now,
		}
		for _, def := range r.reg.All() {
			m[def.DBColumn()] = row.Values[def.Key]
		}
		values[i] = m
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(gormModels.FlightLog{}.TableName()).CreateInBatches(values, insertBatchSize).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert flight logs: %w", err)
	}

	return ids, nil
}

// UpdateFunc computes the column changes for current. It runs inside the
// update transaction and must not touch the database.
type UpdateFunc func(current *models.FlightLogRecord) (map[string]interface{}, error)

// Update reads the record, applies the changes from fn and writes them back
// in one transaction. Changes are keyed by registry key.
func (r *FlightLogRepository) Update(ctx context.Context, userID, recordID string, fn UpdateFunc) (*models.FlightLogRecord, error) {
	var updated *models.FlightLogRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := r.getOne(tx, userID, recordID)
		if err != nil {
			return err
		}

		changes, err := fn(current)
		if err != nil {
			return err
		}

		merged := make(map[string]interface{}, len(current.Values))
		for k, v := range current.Values {
			merged[k] = v
		}

		columns := map[string]interface{}{
			gormModels.FlightLogColumnUpdatedAt: time.Now().UTC(),
		}
		for key, v := range changes {
			def, ok := r.reg.Lookup(key)
			if !ok {
				return models.NewError(constants.ErrCodeUnknownColumn, key, nil)
			}
			columns[def.DBColumn()] = v
			merged[key] = v
		}
		if ferr := r.validate(merged); ferr != nil {
			return ferr
		}

		res := tx.Table(gormModels.FlightLog{}.TableName()).
			Where("id = ? AND user_id = ?", recordID, userID).
			Updates(columns)
		if res.Error != nil {
			return fmt.Errorf("failed to update flight log: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.ErrNotFound
		}

		updated, err = r.getOne(tx, userID, recordID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteOne removes a record owned by userID, or returns models.ErrNotFound
func (r *FlightLogRepository) DeleteOne(ctx context.Context, userID, recordID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", recordID, userID).
		Delete(&gormModels.FlightLog{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete flight log: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteAll removes every record of userID and reports how many were removed
func (r *FlightLogRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&gormModels.FlightLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete flight logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *FlightLogRepository) column(key string) string {
	def, _ := r.reg.Lookup(key)
	return def.DBColumn()
}

// validate checks the stored shape of a row: only registry keys, values of
// the column's Go type (time.Time, float64, int64 for counts, string), and
// every required column present.
func (r *FlightLogRepository) validate(values map[string]interface{}) *models.FlightLogError {
	for key := range values {
		if _, ok := r.reg.Lookup(key); !ok {
			return models.NewError(constants.ErrCodeUnknownColumn, key, nil)
		}
	}
	for _, def := range r.reg.All() {
		if err := checkType(def, values[def.Key]); err != nil {
			return err
		}
	}
	for _, key := range r.reg.RequiredKeys() {
		if values[key] == nil {
			return models.NewError(constants.ErrCodeMissingRequiredField, key, nil)
		}
	}
	return nil
}

func checkType(def registry.ColumnDefinition, v interface{}) *models.FlightLogError {
	if v == nil {
		return nil
	}

	switch def.DataType {
	case registry.Timestamp:
		if _, ok := v.(time.Time); !ok {
			return models.NewError(constants.ErrCodeInvalidTimestamp, def.Key, fmt.Errorf("got %T, want time.Time", v))
		}

	case registry.Number:
		if def.Unit == registry.UnitCount {
			if _, ok := v.(int64); !ok {
				return models.NewError(constants.ErrCodeInvalidNumericValue, def.Key, fmt.Errorf("got %T, want int64", v))
			}
			return nil
		}
		f, ok := v.(float64)
		if !ok {
			return models.NewError(constants.ErrCodeInvalidNumericValue, def.Key, fmt.Errorf("got %T, want float64", v))
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return models.NewError(constants.ErrCodeInvalidNumericValue, def.Key, fmt.Errorf("%v is not a number", f))
		}

	case registry.String:
		if _, ok := v.(string); !ok {
			return models.NewError(constants.ErrCodeInvalidRequest, def.Key, fmt.Errorf("got %T, want string", v))
		}
	}
	return nil
}

func encodeExtras(extras map[string]string) (interface{}, error) {
	if len(extras) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(extras)
	if err != nil {
		return nil, fmt.Errorf("failed to encode extra fields: %w", err)
	}
	return string(b), nil
}

// hydrate converts a scanned row into a record. Drivers disagree on the Go
// types they return, so every column is converted from whatever arrived.
func (r *FlightLogRepository) hydrate(row map[string]interface{}) (*models.FlightLogRecord, error) {
	rec := &models.FlightLogRecord{
		ID:     asString(row[gormModels.FlightLogColumnID]),
		UserID: asString(row[gormModels.FlightLogColumnUserID]),
		Values: make(map[string]interface{}, len(r.reg.All())),
	}

	var err error
	if rec.CreatedAt, err = asTime(row[gormModels.FlightLogColumnCreatedAt]); err != nil {
		return nil, fmt.Errorf("record %s: created_at: %w", rec.ID, err)
	}
	if rec.UpdatedAt, err = asTime(row[gormModels.FlightLogColumnUpdatedAt]); err != nil {
		return nil, fmt.Errorf("record %s: updated_at: %w", rec.ID, err)
	}

	if raw := asString(row[gormModels.FlightLogColumnExtraFields]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Extras); err != nil {
			return nil, fmt.Errorf("record %s: extra_fields: %w", rec.ID, err)
		}
	}

	for _, def := range r.reg.All() {
		v, err := hydrateValue(def, row[def.DBColumn()])
		if err != nil {
			return nil, fmt.Errorf("record %s: %s: %w", rec.ID, def.Key, err)
		}
		rec.Values[def.Key] = v
	}

	return rec, nil
}

func hydrateValue(def registry.ColumnDefinition, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	switch def.DataType {
	case registry.Timestamp:
		t, err := asTime(v)
		if err != nil {
			return nil, err
		}
		return t, nil

	case registry.Number:
		f, err := asFloat(v)
		if err != nil {
			return nil, err
		}
		if def.Unit == registry.UnitCount {
			return int64(f), nil
		}
		return f, nil

	default:
		return asString(v), nil
	}
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func asFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case string, []byte:
		return strconv.ParseFloat(asString(t), 64)
	default:
		return 0, fmt.Errorf("unexpected numeric type %T", v)
	}
}

var storedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func asTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string, []byte:
		s := strings.TrimSuffix(asString(t), "Z")
		for _, layout := range storedTimeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), nil
			}
		}
		if parsed, err := time.Parse(time.RFC3339Nano, asString(t)); err == nil {
			return parsed.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}
