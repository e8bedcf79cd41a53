// Package coerce converts raw cell text into registry-typed values and derives
// the generated flight-log columns.
package coerce

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"infinite-experiment/logbook/internal/constants"
	"infinite-experiment/logbook/internal/models"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
	"infinite-experiment/logbook/internal/registry"
)

// AircraftResolver maps a raw aircraft identifier to its catalog record
type AircraftResolver interface {
	Resolve(ctx context.Context, raw string, fromImageSource bool) (*gormModels.AircraftModel, error)
}

// Options configure a Coercer for one batch
type Options struct {
	// TimestampFormat is the batch format hint, empty when unknown
	TimestampFormat string
	// Location applies to timestamps without an offset; nil rejects them
	Location *time.Location
	// FromImageSource marks OCR-derived input for aircraft inference
	FromImageSource bool
}

// Coercer converts values for one batch
type Coercer struct {
	reg        *registry.Registry
	aircraft   AircraftResolver
	timestamps *TimestampParser
	fromImage  bool
}

func New(reg *registry.Registry, aircraft AircraftResolver, opts Options) *Coercer {
	return &Coercer{
		reg:        reg,
		aircraft:   aircraft,
		timestamps: NewTimestampParser(opts.TimestampFormat, opts.Location),
		fromImage:  opts.FromImageSource,
	}
}

// Coerce converts raw for def. Empty input yields nil, or
// MissingRequiredField for required columns. AIRCRAFT_TYPE yields the
// canonical catalog name rather than the raw text.
func (c *Coercer) Coerce(ctx context.Context, def registry.ColumnDefinition, raw string) (interface{}, error) {
	if def.Key == registry.KeyAircraftType {
		model, err := c.ResolveAircraft(ctx, raw)
		if err != nil || model == nil {
			return nil, err
		}
		return model.CanonicalName, nil
	}
	return c.CoerceValue(def, raw)
}

// CoerceValue converts raw for def without consulting the aircraft catalog
func (c *Coercer) CoerceValue(def registry.ColumnDefinition, raw string) (interface{}, error) {
	s := CleanCell(raw)
	if s == "" {
		if def.Required {
			return nil, models.NewError(constants.ErrCodeMissingRequiredField, def.Key, nil)
		}
		return nil, nil
	}

	switch def.DataType {
	case registry.Number:
		return parseNumber(def, s)
	case registry.Timestamp:
		t, err := c.timestamps.Parse(def, s)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return s, nil
	}
}

// CoerceInput converts a decoded JSON value, as sent by update requests
func (c *Coercer) CoerceInput(ctx context.Context, def registry.ColumnDefinition, v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case nil:
		return c.Coerce(ctx, def, "")
	case string:
		return c.Coerce(ctx, def, t)
	case float64:
		if def.DataType != registry.Number {
			return c.Coerce(ctx, def, fmt.Sprint(t))
		}
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, invalidNumber(def, fmt.Errorf("%v is not a number", t))
		}
		return fromFloat(def, t)
	case int:
		return c.CoerceInput(ctx, def, float64(t))
	case int64:
		return c.CoerceInput(ctx, def, float64(t))
	case time.Time:
		if def.DataType != registry.Timestamp {
			return nil, models.NewError(constants.ErrCodeInvalidRequest, def.Key, fmt.Errorf("unexpected timestamp"))
		}
		return t.UTC(), nil
	default:
		return nil, models.NewError(constants.ErrCodeInvalidRequest, def.Key, fmt.Errorf("unsupported value type %T", v))
	}
}

// ResolveAircraft resolves raw through the catalog. Empty input is
// MissingRequiredField; inference failures surface as UnresolvedAircraft.
func (c *Coercer) ResolveAircraft(ctx context.Context, raw string) (*gormModels.AircraftModel, error) {
	s := CleanCell(raw)
	if s == "" {
		return nil, models.NewError(constants.ErrCodeMissingRequiredField, registry.KeyAircraftType, nil)
	}

	model, err := c.aircraft.Resolve(ctx, s, c.fromImage)
	if err != nil {
		var fe *models.FlightLogError
		if errors.As(err, &fe) {
			scoped := *fe
			scoped.Column = registry.KeyAircraftType
			return nil, &scoped
		}
		return nil, err
	}
	return model, nil
}

// CoerceRow converts the raw values of one row, keyed by registry key, and
// fills the generated columns. Keys missing from raw are treated as empty.
func (c *Coercer) CoerceRow(ctx context.Context, raw map[string]string) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(c.reg.All()))
	var model *gormModels.AircraftModel

	for _, def := range c.reg.Inputs() {
		if def.Key == registry.KeyAircraftType {
			m, err := c.ResolveAircraft(ctx, raw[def.Key])
			if err != nil {
				return nil, err
			}
			model = m
			values[def.Key] = m.CanonicalName
			continue
		}

		v, err := c.CoerceValue(def, raw[def.Key])
		if err != nil {
			return nil, err
		}
		values[def.Key] = v
	}

	DeriveGenerated(values, model)
	return values, nil
}

// DeriveGenerated sets AIRCRAFT_MODEL_ID and the attribute-driven time
// columns. Each time column equals TOTAL_TIME when the aircraft has the
// attribute and 0 otherwise; all are nil without an aircraft.
func DeriveGenerated(values map[string]interface{}, model *gormModels.AircraftModel) {
	if model == nil {
		for _, key := range []string{registry.KeyAircraftModelID, registry.KeyTurbineTime, registry.KeyMultiEngineTime, registry.KeyHelicopterTime, registry.KeyMilitaryTime} {
			values[key] = nil
		}
		return
	}

	total, _ := values[registry.KeyTotalTime].(float64)
	share := func(holds bool) float64 {
		if holds {
			return total
		}
		return 0
	}

	values[registry.KeyAircraftModelID] = model.ID
	values[registry.KeyTurbineTime] = share(model.IsTurbine)
	values[registry.KeyMultiEngineTime] = share(!model.IsSingleEngine)
	values[registry.KeyHelicopterTime] = share(model.IsHelicopter)
	values[registry.KeyMilitaryTime] = share(model.IsMilitary)
}

// CleanCell trims whitespace, a leading BOM, Excel formula quoting and
// surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	if len(s) >= 2 && strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"") {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
