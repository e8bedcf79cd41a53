package coerce

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"infinite-experiment/logbook/internal/constants"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/registry"
)

var (
	numericRegex  = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	clockDuration = regexp.MustCompile(`^(\d+):([0-5]\d)$`)
)

// parseNumber converts s for a numeric column: float64 for measures, int64
// for counts. Thousands separators are ignored and hours also accept H:MM.
func parseNumber(def registry.ColumnDefinition, s string) (interface{}, error) {
	if def.Unit == registry.UnitHours {
		if m := clockDuration.FindStringSubmatch(s); m != nil {
			h, _ := strconv.Atoi(m[1])
			mins, _ := strconv.Atoi(m[2])
			return float64(h) + float64(mins)/60, nil
		}
	}

	cleaned := strings.ReplaceAll(s, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "_", "")
	if !numericRegex.MatchString(cleaned) {
		return nil, invalidNumber(def, fmt.Errorf("%q is not a number", s))
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, invalidNumber(def, fmt.Errorf("%q is not a number", s))
	}

	return fromFloat(def, f)
}

// fromFloat applies the unit rules to an already numeric value
func fromFloat(def registry.ColumnDefinition, f float64) (interface{}, error) {
	if f < 0 {
		return nil, invalidNumber(def, fmt.Errorf("%v is negative", f))
	}
	if def.Unit == registry.UnitCount {
		if f != math.Trunc(f) {
			return nil, invalidNumber(def, fmt.Errorf("%v is not a whole number", f))
		}
		if f > math.MaxInt64 {
			return nil, invalidNumber(def, fmt.Errorf("%v is out of range", f))
		}
		return int64(f), nil
	}
	return f, nil
}

func invalidNumber(def registry.ColumnDefinition, err error) error {
	return models.NewError(constants.ErrCodeInvalidNumericValue, def.Key, err)
}
