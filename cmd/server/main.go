package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"infinite-experiment/logbook/internal/api"
	"infinite-experiment/logbook/internal/config"
	"infinite-experiment/logbook/internal/db"
	"infinite-experiment/logbook/internal/logging"
	"infinite-experiment/logbook/internal/metrics"
	"infinite-experiment/logbook/internal/registry"
	"infinite-experiment/logbook/internal/routes"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv, cfg.Log.Level); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Logbook starting up",
		"environment", cfg.AppEnv,
		"database_driver", cfg.Database.Driver,
		"cache_backend", cfg.Cache.Backend,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		logging.Fatal("Failed to connect to database (GORM)", "error", err.Error())
	}
	if err := db.Migrate(gdb, registry.Default()); err != nil {
		logging.Fatal("Failed to migrate schema", "error", err.Error())
	}

	sdb, err := db.OpenSQLX(cfg.Database, gdb)
	if err != nil {
		logging.Fatal("Failed to connect to database (sqlx)", "error", err.Error())
	}
	defer sdb.Close()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(cfg, gdb, sdb, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err.Error())
	}
	defer deps.Close()

	router := routes.RegisterRoutes(deps, cfg.Server, prometheus.DefaultGatherer, time.Now())

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info("Server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server stopped unexpectedly", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err.Error())
	}
}
