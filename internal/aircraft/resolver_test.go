package aircraft

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/logbook/internal/common"
	"infinite-experiment/logbook/internal/metrics"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/models/dtos"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
)

// fakeCatalog is an in-memory Catalog
type fakeCatalog struct {
	mu      sync.Mutex
	models  map[string]gormModels.AircraftModel
	aliases map[string]string

	// beforeCreate runs ahead of CreateWithAliases, outside the lock
	beforeCreate func()
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		models:  map[string]gormModels.AircraftModel{},
		aliases: map[string]string{},
	}
}

func (f *fakeCatalog) seed(model gormModels.AircraftModel, aliases ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models[model.ID] = model
	for _, a := range aliases {
		f.aliases[a] = model.ID
	}
}

func (f *fakeCatalog) FindByAlias(_ context.Context, alias string) (*gormModels.AircraftModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.aliases[alias]
	if !ok {
		return nil, models.ErrNotFound
	}
	m := f.models[id]
	m.Aliases = nil
	for a, owner := range f.aliases {
		if owner == id {
			m.Aliases = append(m.Aliases, gormModels.AircraftAlias{Alias: a, ModelID: id})
		}
	}
	return &m, nil
}

func (f *fakeCatalog) CreateWithAliases(_ context.Context, model *gormModels.AircraftModel, aliases []string) error {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range aliases {
		if _, taken := f.aliases[a]; taken {
			return models.ErrCatalogConflict
		}
	}
	f.models[model.ID] = *model
	for _, a := range aliases {
		f.aliases[a] = model.ID
	}
	return nil
}

func (f *fakeCatalog) AttachAlias(_ context.Context, modelID, alias string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.aliases[alias]; taken {
		return false, nil
	}
	f.aliases[alias] = modelID
	return true, nil
}

func (f *fakeCatalog) UpdateAttributes(_ context.Context, model *gormModels.AircraftModel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.models[model.ID]; !ok {
		return models.ErrNotFound
	}
	f.models[model.ID] = *model
	return nil
}

func (f *fakeCatalog) ListAll(_ context.Context) ([]gormModels.AircraftModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]gormModels.AircraftModel, 0, len(f.models))
	for _, m := range f.models {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeCatalog) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.models)
}

// countingInferrer answers every identifier with attrs, optionally blocking
// until release is closed
type countingInferrer struct {
	calls   atomic.Int32
	attrs   *dtos.AircraftAttributes
	err     error
	started chan struct{}
	release chan struct{}
}

func (c *countingInferrer) InferAircraft(ctx context.Context, raw string, _ bool) (*dtos.AircraftAttributes, error) {
	if c.calls.Add(1) == 1 && c.started != nil {
		close(c.started)
	}
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	cp := *c.attrs
	return &cp, nil
}

func boolPtr(b bool) *bool { return &b }

func skyhawkAttrs() *dtos.AircraftAttributes {
	return &dtos.AircraftAttributes{
		CanonicalName:  "Cessna 172",
		IsFixedWing:    boolPtr(true),
		IsHelicopter:   boolPtr(false),
		IsSingleEngine: boolPtr(true),
		IsTurbine:      boolPtr(false),
		IsMilitary:     boolPtr(false),
	}
}

func newTestResolver(catalog Catalog, inferrer *countingInferrer) (*Resolver, *metrics.MetricsRegistry) {
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	return NewResolver(catalog, common.NewMemoryAliasCache(time.Minute), inferrer, m), m
}

func TestResolve_ConcurrentVariantsInferOnce(t *testing.T) {
	catalog := newFakeCatalog()
	inferrer := &countingInferrer{
		attrs:   skyhawkAttrs(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	r, m := newTestResolver(catalog, inferrer)

	variants := []string{"C-172", "c172", "  C172  ", "C-172", "c172", "  C172  "}
	results := make([]*gormModels.AircraftModel, len(variants))
	errs := make([]error, len(variants))

	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		go func(i int, v string) {
			defer wg.Done()
			results[i], errs[i] = r.Resolve(context.Background(), v, false)
		}(i, v)
	}

	<-inferrer.started
	assert.Equal(t, PendingInference, r.State(context.Background(), "C172"))
	close(inferrer.release)
	wg.Wait()

	for i := range variants {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].ID, results[i].ID)
	}
	assert.Equal(t, int32(1), inferrer.calls.Load())
	assert.Equal(t, 1, catalog.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogCreationsTotal))
	assert.Equal(t, Resolved, r.State(context.Background(), "c172"))
}

func TestResolve_KnownAliasSkipsInference(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.seed(gormModels.AircraftModel{ID: "pa28", CanonicalName: "Piper PA-28"}, "piper pa28", "pa28")
	inferrer := &countingInferrer{attrs: skyhawkAttrs()}
	r, m := newTestResolver(catalog, inferrer)

	first, err := r.Resolve(context.Background(), "PA-28", false)
	require.NoError(t, err)
	assert.Equal(t, "pa28", first.ID)

	second, err := r.Resolve(context.Background(), "pa28", false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, int32(0), inferrer.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AliasCacheHitsTotal))
}

func TestResolve_LearnsAliasForExistingCanonicalName(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.seed(gormModels.AircraftModel{ID: "c172", CanonicalName: "Cessna 172", IsFixedWing: true, IsSingleEngine: true}, "cessna 172")
	inferrer := &countingInferrer{attrs: skyhawkAttrs()}
	r, _ := newTestResolver(catalog, inferrer)

	got, err := r.Resolve(context.Background(), "C172 Skyhawk", false)
	require.NoError(t, err)
	assert.Equal(t, "c172", got.ID)
	assert.Contains(t, got.AliasSet(), "c172 skyhawk")
	assert.Equal(t, 1, catalog.count())

	owner, err := catalog.FindByAlias(context.Background(), "c172 skyhawk")
	require.NoError(t, err)
	assert.Equal(t, "c172", owner.ID)
}

func TestResolve_IncompleteAttributes(t *testing.T) {
	attrs := skyhawkAttrs()
	attrs.IsMilitary = nil

	catalog := newFakeCatalog()
	r, m := newTestResolver(catalog, &countingInferrer{attrs: attrs})

	_, err := r.Resolve(context.Background(), "C172", false)
	assert.ErrorIs(t, err, models.ErrUnresolvedAircraft)
	assert.Equal(t, 0, catalog.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InferenceCallsTotal.WithLabelValues("incomplete")))
	assert.Equal(t, Unresolved, r.State(context.Background(), "C172"))
}

func TestResolve_InferenceFailure(t *testing.T) {
	catalog := newFakeCatalog()
	r, _ := newTestResolver(catalog, &countingInferrer{err: errors.New("collaborator down")})

	_, err := r.Resolve(context.Background(), "C172", true)
	assert.ErrorIs(t, err, models.ErrUnresolvedAircraft)
	assert.Equal(t, 0, catalog.count())
}

func TestResolve_EmptyIdentifier(t *testing.T) {
	inferrer := &countingInferrer{attrs: skyhawkAttrs()}
	r, _ := newTestResolver(newFakeCatalog(), inferrer)

	_, err := r.Resolve(context.Background(), " -/ ", false)
	assert.ErrorIs(t, err, models.ErrUnresolvedAircraft)
	assert.Equal(t, int32(0), inferrer.calls.Load())
}

func TestEnsureModel_AdoptsRaceWinner(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.beforeCreate = func() {
		catalog.beforeCreate = nil
		catalog.seed(gormModels.AircraftModel{ID: "winner", CanonicalName: "Cessna 172"}, "cessna 172", "c172")
	}
	r, m := newTestResolver(catalog, &countingInferrer{})

	got, err := r.EnsureModel(context.Background(), "c172", skyhawkAttrs())
	require.NoError(t, err)
	assert.Equal(t, "winner", got.ID)
	assert.Equal(t, 1, catalog.count())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CatalogCreationsTotal))
}

func TestEnsureModel_RetriesWhenWinnerHoldsOnlyCanonicalName(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.beforeCreate = func() {
		catalog.beforeCreate = nil
		catalog.seed(gormModels.AircraftModel{ID: "winner", CanonicalName: "Cessna 172"}, "cessna 172")
	}
	r, _ := newTestResolver(catalog, &countingInferrer{})

	got, err := r.EnsureModel(context.Background(), "c172", skyhawkAttrs())
	require.NoError(t, err)
	assert.Equal(t, "winner", got.ID)

	owner, err := catalog.FindByAlias(context.Background(), "c172")
	require.NoError(t, err)
	assert.Equal(t, "winner", owner.ID)
}

func TestEnsureModel_CreatesWithBothAliases(t *testing.T) {
	catalog := newFakeCatalog()
	r, _ := newTestResolver(catalog, &countingInferrer{})

	got, err := r.EnsureModel(context.Background(), "c172", skyhawkAttrs())
	require.NoError(t, err)
	assert.Equal(t, "Cessna 172", got.CanonicalName)
	assert.True(t, got.IsSingleEngine)

	for _, alias := range []string{"c172", "cessna 172"} {
		owner, err := catalog.FindByAlias(context.Background(), alias)
		require.NoError(t, err, alias)
		assert.Equal(t, got.ID, owner.ID)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unresolved", Unresolved.String())
	assert.Equal(t, "pending_inference", PendingInference.String())
	assert.Equal(t, "resolved", Resolved.String())
}
