package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/logbook/internal/coerce"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/models/dtos"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
	"infinite-experiment/logbook/internal/registry"
)

func TestImport_MapsCoercesAndStores(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.detector.format = &dtos.FormatDetection{
		DateTimeColumnIndex: intRef(0),
		AircraftColumnIndex: intRef(1),
		TimestampFormat:     "MM/DD/YYYY",
	}
	env.suggester.resp = &dtos.ColumnSuggestions{
		RenameSuggestions: []dtos.RenameSuggestion{
			{OriginalHeader: "Total", ProposedKey: "TOTAL_TIME"},
			{OriginalHeader: "Ldg", ProposedKey: "DAY_LANDINGS"},
			{OriginalHeader: "Tail", ProposedKey: "AIRCRAFT_REGISTRATION"},
		},
		RemoveSuggestions: []string{"Block Hours", "Page"},
	}

	report, err := env.ingest.Import(ctx, "pilot-1", dtos.ImportRequest{
		Headers: []string{"Flown", "Type", "Total", "Ldg", "Block Hours", "Page", "Tail"},
		Rows: [][]string{
			{"03/04/2024", "C-172", "1.5", "2", "1.7", "3", "N1"},
			{"03/05/2024", "c172", "2.0", "1", "2.1", "3", "N1"},
			{"03/06/2024", "  C172  ", "1.1", "1", "", "4", "N1"},
			{"03/07/2024", "BE20", "3.25", "1", "3.4", "4", "N2"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Inserted)
	assert.Len(t, report.RecordIDs, 4)
	assert.Equal(t, "MM/DD/YYYY", report.TimestampFormat)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, map[string]string{
		"Flown": registry.KeyDateTime,
		"Type":  registry.KeyAircraftType,
		"Total": registry.KeyTotalTime,
		"Ldg":   registry.KeyDayLandings,
	}, report.Mapping.Mapped)
	assert.Equal(t, []string{"Block Hours"}, report.Mapping.Retained)
	assert.Equal(t, []string{"Page", "Tail"}, report.Mapping.Dropped)

	assert.Equal(t, 1, env.inferrer.calls["c172"])
	assert.Equal(t, 1, env.inferrer.calls["be20"])
	assert.Equal(t, 4.0, testutil.ToFloat64(env.metrics.RowsIngestedTotal))

	records, err := env.logs.List(ctx, "pilot-1")
	require.NoError(t, err)
	require.Len(t, records, 4)

	kingAir := records[0]
	assert.Equal(t, "Beechcraft King Air 200", kingAir.Values[registry.KeyAircraftType])
	assert.True(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC).Equal(kingAir.Values[registry.KeyDateTime].(time.Time)))
	assert.InDelta(t, 3.25, kingAir.Values[registry.KeyTurbineTime].(float64), 1e-9)
	assert.InDelta(t, 3.25, kingAir.Values[registry.KeyMultiEngineTime].(float64), 1e-9)
	assert.InDelta(t, 0, kingAir.Values[registry.KeyHelicopterTime].(float64), 1e-9)
	assert.Equal(t, map[string]string{"Block Hours": "3.4"}, kingAir.Extras)

	skyhawk := records[3]
	assert.Equal(t, "Cessna 172", skyhawk.Values[registry.KeyAircraftType])
	assert.Equal(t, int64(2), skyhawk.Values[registry.KeyDayLandings])
	assert.InDelta(t, 0, skyhawk.Values[registry.KeyTurbineTime].(float64), 1e-9)
	assert.NotEqual(t, kingAir.Values[registry.KeyAircraftModelID], skyhawk.Values[registry.KeyAircraftModelID])
	assert.Equal(t, records[1].Values[registry.KeyAircraftModelID], skyhawk.Values[registry.KeyAircraftModelID])

	assert.Nil(t, records[1].Extras)
}

func TestImport_InvalidRowPersistsNothing(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.ingest.Import(ctx, "pilot-1", dtos.ImportRequest{
		Headers: []string{"DATE_TIME", "AIRCRAFT_TYPE", "TOTAL_TIME"},
		Rows: [][]string{
			{"2024-03-04 10:00", "C172", "1.0"},
			{"", "C172", "1.0"},
			{"2024-03-06 10:00", "C172", "1.0"},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMissingRequiredField)

	var fe *models.FlightLogError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 1, fe.Row)
	assert.Equal(t, registry.KeyDateTime, fe.Column)

	records, err := env.logs.List(ctx, "pilot-1")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.BatchesFailedTotal.WithLabelValues("MISSING_REQUIRED_FIELD")))
}

func TestImport_FractionalCountRejected(t *testing.T) {
	env := setupEnv(t)

	_, err := env.ingest.Import(context.Background(), "pilot-1", dtos.ImportRequest{
		Headers: []string{"DATE_TIME", "AIRCRAFT_TYPE", "TOTAL_TIME", "APPROACHES"},
		Rows:    [][]string{{"2024-03-04", "C172", "1.0", "1.5"}},
	})
	assert.ErrorIs(t, err, models.ErrInvalidNumericValue)
}

type countingResolver struct {
	next  coerce.AircraftResolver
	calls atomic.Int32
}

func (c *countingResolver) Resolve(ctx context.Context, raw string, fromImageSource bool) (*gormModels.AircraftModel, error) {
	c.calls.Add(1)
	return c.next.Resolve(ctx, raw, fromImageSource)
}

func TestImport_QuotedAircraftCellsShareOneResolution(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	counter := &countingResolver{next: env.ingest.aircraft}
	env.ingest.aircraft = counter

	report, err := env.ingest.Import(ctx, "pilot-1", dtos.ImportRequest{
		Headers: []string{"DATE_TIME", "AIRCRAFT_TYPE", "TOTAL_TIME"},
		Rows: [][]string{
			{"2024-03-04", "C172", "1.0"},
			{"2024-03-05", `"C172"`, "1.0"},
			{"2024-03-06", `="C172"`, "1.0"},
			{"2024-03-07", "\ufeffC172 ", "1.0"},
		},
	})
	require.NoError(t, err)
	require.Len(t, report.RecordIDs, 4)

	assert.Equal(t, int32(1), counter.calls.Load())
	assert.Equal(t, 1, env.inferrer.total())

	records, err := env.logs.List(ctx, "pilot-1")
	require.NoError(t, err)
	for _, r := range records {
		assert.Equal(t, "Cessna 172", r.Values[registry.KeyAircraftType])
	}
}

func TestImport_UnresolvedAircraftAbortsBatch(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.ingest.Import(ctx, "pilot-1", dtos.ImportRequest{
		Headers: []string{"DATE_TIME", "AIRCRAFT_TYPE", "TOTAL_TIME"},
		Rows: [][]string{
			{"2024-03-04", "C172", "1.0"},
			{"2024-03-05", "Mystery Jet", "1.0"},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnresolvedAircraft)

	var fe *models.FlightLogError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 1, fe.Row)
	assert.Equal(t, registry.KeyAircraftType, fe.Column)

	records, err := env.logs.List(ctx, "pilot-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestImport_CollaboratorsDown(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.detector.err = models.ErrCollaboratorUnavailable
	env.suggester.err = models.ErrCollaboratorUnavailable

	report, err := env.ingest.Import(ctx, "pilot-1", dtos.ImportRequest{
		Headers: []string{"date_time", "Aircraft_Type", "TOTAL_TIME", "Hobbs", "Notes"},
		Rows:    [][]string{{"2024-03-04 10:00", "C172", "1:18", "1.3", "smooth"}},
	})
	require.NoError(t, err)

	assert.Len(t, report.Warnings, 2)
	assert.Empty(t, report.TimestampFormat)
	assert.Equal(t, []string{"Hobbs"}, report.Mapping.Retained)
	assert.Equal(t, []string{"Notes"}, report.Mapping.Dropped)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CollaboratorFallbacksTotal.WithLabelValues("detect_format")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CollaboratorFallbacksTotal.WithLabelValues("suggest_columns")))

	record, err := env.logs.Get(ctx, "pilot-1", report.RecordIDs[0])
	require.NoError(t, err)
	assert.InDelta(t, 1.3, record.Values[registry.KeyTotalTime].(float64), 1e-9)
	assert.Equal(t, map[string]string{"Hobbs": "1.3"}, record.Extras)
}

func TestImport_RequestHintWins(t *testing.T) {
	env := setupEnv(t)

	env.detector.format = &dtos.FormatDetection{TimestampFormat: "MM/DD/YYYY"}

	report, err := env.ingest.Import(context.Background(), "pilot-1", dtos.ImportRequest{
		Headers:         []string{"DATE_TIME", "AIRCRAFT_TYPE", "TOTAL_TIME"},
		Rows:            [][]string{{"13/04/2024", "C172", "1.0"}},
		TimestampFormat: "DD/MM/YYYY",
	})
	require.NoError(t, err)
	assert.Equal(t, "DD/MM/YYYY", report.TimestampFormat)
}

func TestImport_ValidatesRequest(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID string
		req    dtos.ImportRequest
	}{
		{"no user", "", dtos.ImportRequest{Headers: []string{"DATE_TIME"}, Rows: [][]string{{"x"}}}},
		{"no headers", "pilot-1", dtos.ImportRequest{Rows: [][]string{{"x"}}}},
		{"no rows", "pilot-1", dtos.ImportRequest{Headers: []string{"DATE_TIME"}}},
		{"row too wide", "pilot-1", dtos.ImportRequest{Headers: []string{"DATE_TIME"}, Rows: [][]string{{"a", "b"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ingest.Import(ctx, tt.userID, tt.req)
			assert.ErrorIs(t, err, models.ErrInvalidRequest)
		})
	}
	assert.Equal(t, 0, env.inferrer.total())
}
