package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"infinite-experiment/logbook/internal/models"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
)

type AircraftCatalogRepository struct {
	db *gorm.DB
}

// NewAircraftCatalogRepository creates a new GORM-based aircraft catalog repository
func NewAircraftCatalogRepository(db *gorm.DB) *AircraftCatalogRepository {
	return &AircraftCatalogRepository{db: db}
}

// FindByAlias fetches the record owning a normalized alias, aliases preloaded
func (r *AircraftCatalogRepository) FindByAlias(ctx context.Context, alias string) (*gormModels.AircraftModel, error) {
	var row gormModels.AircraftAlias
	err := r.db.WithContext(ctx).
		Where("alias = ?", alias).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch alias: %w", err)
	}

	return r.FindByID(ctx, row.ModelID)
}

// FindByID fetches a record by id, aliases preloaded
func (r *AircraftCatalogRepository) FindByID(ctx context.Context, id string) (*gormModels.AircraftModel, error) {
	var model gormModels.AircraftModel
	err := r.db.WithContext(ctx).
		Preload("Aliases", func(db *gorm.DB) *gorm.DB { return db.Order("alias") }).
		Where("id = ?", id).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch aircraft model: %w", err)
	}

	return &model, nil
}

// ListAll fetches the whole catalog ordered by canonical name
func (r *AircraftCatalogRepository) ListAll(ctx context.Context) ([]gormModels.AircraftModel, error) {
	var list []gormModels.AircraftModel
	err := r.db.WithContext(ctx).
		Preload("Aliases", func(db *gorm.DB) *gorm.DB { return db.Order("alias") }).
		Order("canonical_name").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft catalog: %w", err)
	}

	return list, nil
}

// CreateWithAliases inserts model and its aliases in one transaction. Aliases
// are insert-if-absent; if any is already claimed nothing is written and
// models.ErrCatalogConflict is returned.
func (r *AircraftCatalogRepository) CreateWithAliases(ctx context.Context, model *gormModels.AircraftModel, aliases []string) error {
	rows := make([]gormModels.AircraftAlias, 0, len(aliases))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return fmt.Errorf("failed to insert aircraft model: %w", err)
		}

		for _, alias := range aliases {
			row := gormModels.AircraftAlias{Alias: alias, ModelID: model.ID}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return fmt.Errorf("failed to insert alias %q: %w", alias, res.Error)
			}
			if res.RowsAffected == 0 {
				return models.ErrCatalogConflict
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return err
	}

	model.Aliases = rows
	return nil
}

// AttachAlias adds alias to modelID if no record claims it yet. It reports
// whether a row was inserted.
func (r *AircraftCatalogRepository) AttachAlias(ctx context.Context, modelID, alias string) (bool, error) {
	row := gormModels.AircraftAlias{Alias: alias, ModelID: modelID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert alias: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

// UpdateAttributes overwrites the capability attributes of model
func (r *AircraftCatalogRepository) UpdateAttributes(ctx context.Context, model *gormModels.AircraftModel) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.AircraftModel{ID: model.ID}).
		Select("is_fixed_wing", "is_helicopter", "is_single_engine", "is_turbine", "is_military", "updated_at").
		Updates(model)
	if res.Error != nil {
		return fmt.Errorf("failed to update aircraft model: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}
