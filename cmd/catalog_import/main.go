// Command catalog_import loads aircraft catalog entries from a YAML file.
//
//	catalog_import --file aircraft.yaml
//
// The file holds a list under "aircraft":
//
//	aircraft:
//	  - canonical_name: Cessna 172
//	    aliases: [C172, Skyhawk]
//	    fixed_wing: true
//	    single_engine: true
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"infinite-experiment/logbook/internal/aircraft"
	"infinite-experiment/logbook/internal/common"
	"infinite-experiment/logbook/internal/config"
	"infinite-experiment/logbook/internal/db"
	"infinite-experiment/logbook/internal/db/repositories"
	"infinite-experiment/logbook/internal/logging"
	"infinite-experiment/logbook/internal/metrics"
	"infinite-experiment/logbook/internal/models/dtos"
	"infinite-experiment/logbook/internal/providers"
	"infinite-experiment/logbook/internal/registry"
)

type catalogFile struct {
	Aircraft []dtos.AircraftSpec `yaml:"aircraft"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "catalog_import",
		Short: "Import aircraft models into the catalog",
		Long: `Upsert aircraft models and their aliases from a YAML file.

Entries whose canonical name is already catalogued have their attributes
updated. Aliases owned by another model are skipped and listed.`,
		Example: `  # Import a catalog file
  catalog_import --file aircraft.yaml

  # Validate a file without touching the database
  catalog_import --file aircraft.yaml --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			specs, err := readCatalog(file)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d aircraft entries parsed\n", len(specs))
				return nil
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), specs)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and validate the file only")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readCatalog(path string) ([]dtos.AircraftSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()
	return parseCatalog(f)
}

func parseCatalog(r io.Reader) ([]dtos.AircraftSpec, error) {
	var doc catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("catalog file is empty")
		}
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(doc.Aircraft) == 0 {
		return nil, fmt.Errorf("catalog file lists no aircraft")
	}
	for i, spec := range doc.Aircraft {
		if aircraft.Normalize(spec.CanonicalName) == "" {
			return nil, fmt.Errorf("entry %d: canonical_name is required", i)
		}
	}
	return doc.Aircraft, nil
}

func runImport(ctx context.Context, out io.Writer, specs []dtos.AircraftSpec) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.AppEnv, cfg.Log.Level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.Close()

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(gdb, registry.Default()); err != nil {
		return err
	}

	// Updates evict through the configured cache so a shared Redis cache
	// stops serving stale attributes.
	cache := common.NewAliasCache(cfg.Cache)
	defer cache.Close()

	resolver := aircraft.NewResolver(
		repositories.NewAircraftCatalogRepository(gdb),
		cache,
		providers.NewCollaboratorProvider(cfg.Collaborator),
		metrics.NewMetricsRegistry(prometheus.NewRegistry()),
	)

	result, err := resolver.ImportModels(ctx, specs)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "created %d, updated %d, aliases added %d\n", result.Created, result.Updated, result.AliasesAdded)
	for _, skipped := range result.SkippedAliases {
		fmt.Fprintf(out, "skipped alias %s\n", skipped)
	}
	return nil
}
