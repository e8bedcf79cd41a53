package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"infinite-experiment/logbook/internal/aircraft"
	"infinite-experiment/logbook/internal/common"
	"infinite-experiment/logbook/internal/config"
	"infinite-experiment/logbook/internal/db"
	"infinite-experiment/logbook/internal/db/repositories"
	"infinite-experiment/logbook/internal/mapping"
	"infinite-experiment/logbook/internal/metrics"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/models/dtos"
	"infinite-experiment/logbook/internal/registry"
)

type stubDetector struct {
	format *dtos.FormatDetection
	err    error
}

func (s *stubDetector) DetectFormat(_ context.Context, _ dtos.DetectFormatRequest) (*dtos.FormatDetection, error) {
	return s.format, s.err
}

type stubSuggester struct {
	resp *dtos.ColumnSuggestions
	err  error
}

func (s *stubSuggester) SuggestColumns(_ context.Context, _ dtos.SuggestColumnsRequest) (*dtos.ColumnSuggestions, error) {
	return s.resp, s.err
}

// stubInferrer answers from a table keyed by normalized identifier
type stubInferrer struct {
	mu    sync.Mutex
	known map[string]dtos.AircraftAttributes
	calls map[string]int
}

func (s *stubInferrer) InferAircraft(_ context.Context, raw string, _ bool) (*dtos.AircraftAttributes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := aircraft.Normalize(raw)
	s.calls[key]++
	attrs, ok := s.known[key]
	if !ok {
		return nil, models.ErrCollaboratorUnavailable
	}
	return &attrs, nil
}

func (s *stubInferrer) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func b(v bool) *bool { return &v }

func newStubInferrer() *stubInferrer {
	skyhawk := dtos.AircraftAttributes{
		CanonicalName: "Cessna 172", IsFixedWing: b(true), IsHelicopter: b(false),
		IsSingleEngine: b(true), IsTurbine: b(false), IsMilitary: b(false),
	}
	kingAir := dtos.AircraftAttributes{
		CanonicalName: "Beechcraft King Air 200", IsFixedWing: b(true), IsHelicopter: b(false),
		IsSingleEngine: b(false), IsTurbine: b(true), IsMilitary: b(false),
	}
	return &stubInferrer{
		known: map[string]dtos.AircraftAttributes{
			"c172": skyhawk,
			"be20": kingAir,
		},
		calls: map[string]int{},
	}
}

type testEnv struct {
	gdb       *gorm.DB
	metrics   *metrics.MetricsRegistry
	detector  *stubDetector
	suggester *stubSuggester
	inferrer  *stubInferrer
	ingest    *IngestionService
	logs      *FlightLogService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	reg := registry.Default()
	dbCfg := config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}
	gdb, err := db.Open(dbCfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, reg))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	sdb, err := db.OpenSQLX(dbCfg, gdb)
	require.NoError(t, err)

	env := &testEnv{
		gdb:       gdb,
		metrics:   metrics.NewMetricsRegistry(prometheus.NewRegistry()),
		detector:  &stubDetector{},
		suggester: &stubSuggester{resp: &dtos.ColumnSuggestions{}},
		inferrer:  newStubInferrer(),
	}

	resolver := aircraft.NewResolver(
		repositories.NewAircraftCatalogRepository(gdb),
		common.NewMemoryAliasCache(time.Minute),
		env.inferrer,
		env.metrics,
	)
	store := repositories.NewFlightLogRepository(gdb, reg)

	env.ingest = NewIngestionService(reg, env.detector, mapping.NewResolver(reg, env.suggester, 5), resolver, store, env.metrics, time.UTC, 4)
	env.logs = NewFlightLogService(reg, store, repositories.NewScorecardRepository(sdb), resolver, time.UTC)
	return env
}

func intRef(i int) *int { return &i }
