package repositories

import (
	"testing"

	"gorm.io/gorm"

	"infinite-experiment/logbook/internal/config"
	"infinite-experiment/logbook/internal/db"
	"infinite-experiment/logbook/internal/registry"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb, registry.Default()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}
