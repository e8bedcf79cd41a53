// Package aircraft resolves free-text aircraft identifiers to records in the
// shared aircraft catalog, inferring and persisting records for unseen
// identifiers.
package aircraft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"infinite-experiment/logbook/internal/common"
	"infinite-experiment/logbook/internal/constants"
	"infinite-experiment/logbook/internal/logging"
	"infinite-experiment/logbook/internal/metrics"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/models/dtos"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
	"infinite-experiment/logbook/internal/providers"
)

// Catalog is the persistence the resolver needs. FindByAlias returns
// models.ErrNotFound for an unknown alias; CreateWithAliases returns
// models.ErrCatalogConflict when any alias is already claimed.
type Catalog interface {
	FindByAlias(ctx context.Context, alias string) (*gormModels.AircraftModel, error)
	CreateWithAliases(ctx context.Context, model *gormModels.AircraftModel, aliases []string) error
	AttachAlias(ctx context.Context, modelID, alias string) (bool, error)
	UpdateAttributes(ctx context.Context, model *gormModels.AircraftModel) error
	ListAll(ctx context.Context) ([]gormModels.AircraftModel, error)
}

// State is where an identifier is in resolution
type State int

const (
	Unresolved State = iota
	PendingInference
	Resolved
)

func (s State) String() string {
	switch s {
	case PendingInference:
		return "pending_inference"
	case Resolved:
		return "resolved"
	default:
		return "unresolved"
	}
}

const maxEnsureAttempts = 3

// Resolver maps raw identifiers to catalog records
type Resolver struct {
	catalog  Catalog
	cache    common.AliasCache
	inferrer providers.AttributeInferrer
	metrics  *metrics.MetricsRegistry

	group    singleflight.Group
	inflight sync.Map
}

func NewResolver(catalog Catalog, cache common.AliasCache, inferrer providers.AttributeInferrer, m *metrics.MetricsRegistry) *Resolver {
	return &Resolver{
		catalog:  catalog,
		cache:    cache,
		inferrer: inferrer,
		metrics:  m,
	}
}

// Resolve returns the catalog record for raw. An unseen identifier is sent to
// the inferrer once per normalized key, however many callers ask for it
// concurrently, and the result is persisted before it is returned.
func (r *Resolver) Resolve(ctx context.Context, raw string, fromImageSource bool) (*gormModels.AircraftModel, error) {
	key := Normalize(raw)
	if key == "" {
		return nil, models.NewError(constants.ErrCodeUnresolvedAircraft, "", fmt.Errorf("identifier %q has no comparable characters", raw))
	}

	model, err := r.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if model != nil {
		return model, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		// A caller that just finished inference for key may have persisted it.
		if model, err := r.lookup(ctx, key); err != nil || model != nil {
			return model, err
		}

		r.inflight.Store(key, struct{}{})
		defer r.inflight.Delete(key)

		return r.infer(ctx, raw, key, fromImageSource)
	})
	if err != nil {
		return nil, err
	}

	return v.(*gormModels.AircraftModel), nil
}

// State reports how far resolution of raw has progressed
func (r *Resolver) State(ctx context.Context, raw string) State {
	key := Normalize(raw)
	if key == "" {
		return Unresolved
	}
	if _, pending := r.inflight.Load(key); pending {
		return PendingInference
	}
	if model, err := r.lookup(ctx, key); err == nil && model != nil {
		return Resolved
	}
	return Unresolved
}

// lookup returns nil, nil when key is in neither the cache nor the catalog
func (r *Resolver) lookup(ctx context.Context, key string) (*gormModels.AircraftModel, error) {
	if model, found := r.cache.Get(ctx, key); found {
		r.metrics.AliasCacheHitsTotal.Inc()
		return model, nil
	}
	r.metrics.AliasCacheMissesTotal.Inc()

	model, err := r.catalog.FindByAlias(ctx, key)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up aircraft alias %q: %w", key, err)
	}

	r.cache.Set(ctx, key, model)
	return model, nil
}

func (r *Resolver) infer(ctx context.Context, raw, key string, fromImageSource bool) (*gormModels.AircraftModel, error) {
	attrs, err := r.inferrer.InferAircraft(ctx, raw, fromImageSource)
	if err != nil {
		r.metrics.InferenceCallsTotal.WithLabelValues("error").Inc()
		logging.Warn("Aircraft inference failed", "identifier", raw, "error", err.Error())
		return nil, models.NewError(constants.ErrCodeUnresolvedAircraft, "", err)
	}
	if !attrs.Complete() || Normalize(attrs.CanonicalName) == "" {
		r.metrics.InferenceCallsTotal.WithLabelValues("incomplete").Inc()
		return nil, models.NewError(constants.ErrCodeUnresolvedAircraft, "", fmt.Errorf("incomplete attributes for %q", raw))
	}
	r.metrics.InferenceCallsTotal.WithLabelValues("ok").Inc()

	model, err := r.EnsureModel(ctx, key, attrs)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, key, model)
	return model, nil
}

// EnsureModel returns the record that owns alias, creating it from attrs when
// neither alias nor the inferred canonical name is catalogued. When the
// canonical name already exists, alias is attached to that record instead.
// A lost creation race adopts the winner's record.
func (r *Resolver) EnsureModel(ctx context.Context, alias string, attrs *dtos.AircraftAttributes) (*gormModels.AircraftModel, error) {
	canonicalKey := Normalize(attrs.CanonicalName)

	for attempt := 0; attempt < maxEnsureAttempts; attempt++ {
		existing, err := r.catalog.FindByAlias(ctx, canonicalKey)
		switch {
		case err == nil:
			if alias != canonicalKey {
				if _, err := r.catalog.AttachAlias(ctx, existing.ID, alias); err != nil {
					return nil, fmt.Errorf("failed to attach alias %q: %w", alias, err)
				}
			}
			return r.owner(ctx, alias)

		case !errors.Is(err, models.ErrNotFound):
			return nil, fmt.Errorf("failed to look up aircraft %q: %w", canonicalKey, err)
		}

		model := &gormModels.AircraftModel{
			ID:             uuid.NewString(),
			CanonicalName:  attrs.CanonicalName,
			IsFixedWing:    *attrs.IsFixedWing,
			IsHelicopter:   *attrs.IsHelicopter,
			IsSingleEngine: *attrs.IsSingleEngine,
			IsTurbine:      *attrs.IsTurbine,
			IsMilitary:     *attrs.IsMilitary,
		}

		err = r.catalog.CreateWithAliases(ctx, model, uniqueAliases(canonicalKey, alias))
		if err == nil {
			r.metrics.CatalogCreationsTotal.Inc()
			logging.Info("Aircraft catalog record created",
				"model_id", model.ID,
				"canonical_name", model.CanonicalName,
				"alias", alias,
			)
			return model, nil
		}
		if !errors.Is(err, models.ErrCatalogConflict) {
			return nil, fmt.Errorf("failed to create aircraft %q: %w", attrs.CanonicalName, err)
		}

		logging.Debug("Aircraft catalog race lost, adopting winner", "alias", alias, "attempt", attempt+1)
		if winner, err := r.catalog.FindByAlias(ctx, alias); err == nil {
			return winner, nil
		}
	}

	return nil, models.NewError(constants.ErrCodeUnresolvedAircraft, "", models.ErrCatalogConflict)
}

func (r *Resolver) owner(ctx context.Context, alias string) (*gormModels.AircraftModel, error) {
	model, err := r.catalog.FindByAlias(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("failed to read aircraft alias %q: %w", alias, err)
	}
	return model, nil
}

// List returns the whole catalog
func (r *Resolver) List(ctx context.Context) ([]gormModels.AircraftModel, error) {
	return r.catalog.ListAll(ctx)
}

func uniqueAliases(aliases ...string) []string {
	seen := make(map[string]bool, len(aliases))
	out := make([]string, 0, len(aliases))
	for _, a := range aliases {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
