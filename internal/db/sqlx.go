package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"infinite-experiment/logbook/internal/config"
)

// OpenSQLX returns the sqlx handle used by reports and health checks. Postgres
// gets its own lib/pq pool; SQLite shares the GORM connection so in-memory
// databases stay visible.
func OpenSQLX(cfg config.DatabaseConfig, gdb *gorm.DB) (*sqlx.DB, error) {
	if cfg.Driver == config.DriverSQLite {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		return sqlx.NewDb(sqlDB, "sqlite3"), nil
	}

	var (
		sdb *sqlx.DB
		err error
	)
	for i := 0; i < connectAttempts; i++ {
		sdb, err = sqlx.Connect("postgres", cfg.DSN)
		if err == nil {
			return sdb, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to postgres (sqlx): %w", err)
}
