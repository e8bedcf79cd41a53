package api

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"infinite-experiment/logbook/internal/aircraft"
	"infinite-experiment/logbook/internal/common"
	"infinite-experiment/logbook/internal/config"
	"infinite-experiment/logbook/internal/db/repositories"
	"infinite-experiment/logbook/internal/mapping"
	"infinite-experiment/logbook/internal/metrics"
	"infinite-experiment/logbook/internal/providers"
	"infinite-experiment/logbook/internal/registry"
	"infinite-experiment/logbook/internal/services"
)

type Repositories struct {
	Catalog    *repositories.AircraftCatalogRepository
	FlightLogs *repositories.FlightLogRepository
	Scorecard  *repositories.ScorecardRepository
}

type Services struct {
	Aircraft   *aircraft.Resolver
	Ingestion  *services.IngestionService
	FlightLogs *services.FlightLogService
}

type Dependencies struct {
	Registry *registry.Registry
	Metrics  *metrics.MetricsRegistry
	DB       *sqlx.DB
	Cache    common.AliasCache
	Repo     *Repositories
	Services *Services
}

// InitDependencies wires repositories, collaborators and services
func InitDependencies(cfg *config.Config, gdb *gorm.DB, sdb *sqlx.DB, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	loc, err := cfg.Ingest.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load ingest timezone: %w", err)
	}

	reg := registry.Default()

	repos := &Repositories{
		Catalog:    repositories.NewAircraftCatalogRepository(gdb),
		FlightLogs: repositories.NewFlightLogRepository(gdb, reg),
		Scorecard:  repositories.NewScorecardRepository(sdb),
	}

	collaborator := providers.NewCollaboratorProvider(cfg.Collaborator)
	cache := common.NewAliasCache(cfg.Cache)

	resolver := aircraft.NewResolver(repos.Catalog, cache, collaborator, metricsReg)
	mapper := mapping.NewResolver(reg, collaborator, cfg.Ingest.SampleRows)

	svcs := &Services{
		Aircraft:   resolver,
		Ingestion:  services.NewIngestionService(reg, collaborator, mapper, resolver, repos.FlightLogs, metricsReg, loc, cfg.Ingest.ResolveConcurrency),
		FlightLogs: services.NewFlightLogService(reg, repos.FlightLogs, repos.Scorecard, resolver, loc),
	}

	return &Dependencies{
		Registry: reg,
		Metrics:  metricsReg,
		DB:       sdb,
		Cache:    cache,
		Repo:     repos,
		Services: svcs,
	}, nil
}

// Close releases the alias cache connection
func (d *Dependencies) Close() error {
	return d.Cache.Close()
}
