package aircraft

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"infinite-experiment/logbook/internal/constants"
	"infinite-experiment/logbook/internal/logging"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/models/dtos"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
)

// ImportModels upserts administrative catalog entries. An entry whose
// normalized canonical name is already catalogued updates that record's
// attributes. Aliases claimed by another record are skipped and reported.
func (r *Resolver) ImportModels(ctx context.Context, specs []dtos.AircraftSpec) (*dtos.CatalogImportResult, error) {
	result := &dtos.CatalogImportResult{}

	for i, spec := range specs {
		canonicalKey := Normalize(spec.CanonicalName)
		if canonicalKey == "" {
			return result, models.NewError(constants.ErrCodeInvalidRequest, "canonical_name",
				fmt.Errorf("entry %d has an empty canonical name", i))
		}

		model, created, err := r.upsertModel(ctx, canonicalKey, spec)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}

		for _, raw := range spec.Aliases {
			alias := Normalize(raw)
			if alias == "" || alias == canonicalKey {
				continue
			}

			inserted, err := r.catalog.AttachAlias(ctx, model.ID, alias)
			if err != nil {
				return result, fmt.Errorf("failed to attach alias %q: %w", alias, err)
			}
			if inserted {
				result.AliasesAdded++
				continue
			}

			owner, err := r.catalog.FindByAlias(ctx, alias)
			if err != nil {
				return result, fmt.Errorf("failed to read alias %q: %w", alias, err)
			}
			if owner.ID != model.ID {
				result.SkippedAliases = append(result.SkippedAliases,
					fmt.Sprintf("%s (claimed by %s)", strings.TrimSpace(raw), owner.CanonicalName))
			}
		}
	}

	logging.Info("Aircraft catalog import finished",
		"created", result.Created,
		"updated", result.Updated,
		"aliases_added", result.AliasesAdded,
		"aliases_skipped", len(result.SkippedAliases),
	)
	return result, nil
}

func (r *Resolver) upsertModel(ctx context.Context, canonicalKey string, spec dtos.AircraftSpec) (*gormModels.AircraftModel, bool, error) {
	existing, err := r.catalog.FindByAlias(ctx, canonicalKey)
	switch {
	case err == nil:
		existing.IsFixedWing = spec.IsFixedWing
		existing.IsHelicopter = spec.IsHelicopter
		existing.IsSingleEngine = spec.IsSingleEngine
		existing.IsTurbine = spec.IsTurbine
		existing.IsMilitary = spec.IsMilitary
		if err := r.catalog.UpdateAttributes(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("failed to update aircraft %q: %w", existing.CanonicalName, err)
		}
		r.evict(ctx, existing)
		return existing, false, nil

	case !errors.Is(err, models.ErrNotFound):
		return nil, false, fmt.Errorf("failed to look up aircraft %q: %w", canonicalKey, err)
	}

	model := &gormModels.AircraftModel{
		ID:             uuid.NewString(),
		CanonicalName:  strings.TrimSpace(spec.CanonicalName),
		IsFixedWing:    spec.IsFixedWing,
		IsHelicopter:   spec.IsHelicopter,
		IsSingleEngine: spec.IsSingleEngine,
		IsTurbine:      spec.IsTurbine,
		IsMilitary:     spec.IsMilitary,
	}
	if err := r.catalog.CreateWithAliases(ctx, model, []string{canonicalKey}); err != nil {
		return nil, false, fmt.Errorf("failed to create aircraft %q: %w", model.CanonicalName, err)
	}
	r.metrics.CatalogCreationsTotal.Inc()
	return model, true, nil
}

// evict drops cached copies of a record whose attributes changed
func (r *Resolver) evict(ctx context.Context, model *gormModels.AircraftModel) {
	r.cache.Delete(ctx, Normalize(model.CanonicalName))
	for _, alias := range model.AliasSet() {
		r.cache.Delete(ctx, alias)
	}
}
