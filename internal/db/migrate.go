package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	gormModels "infinite-experiment/logbook/internal/models/gorm"
	"infinite-experiment/logbook/internal/registry"
)

const flightLogUserDateIndex = "idx_flight_logs_user_date"

// Migrate creates the catalog and flight-log tables and adds one flight-log
// column per registry definition. Existing columns are left untouched.
func Migrate(gdb *gorm.DB, reg *registry.Registry) error {
	if err := gdb.AutoMigrate(
		&gormModels.AircraftModel{},
		&gormModels.AircraftAlias{},
		&gormModels.FlightLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate base tables: %w", err)
	}

	migrator := gdb.Migrator()
	table := gormModels.FlightLog{}.TableName()
	dialect := gdb.Dialector.Name()

	for _, def := range reg.All() {
		column := def.DBColumn()
		if migrator.HasColumn(&gormModels.FlightLog{}, column) {
			continue
		}

		err := gdb.Exec("ALTER TABLE ? ADD COLUMN ? "+ColumnType(dialect, def),
			clause.Table{Name: table}, clause.Column{Name: column}).Error
		if err != nil {
			return fmt.Errorf("failed to add column %s: %w", column, err)
		}
	}

	if !migrator.HasIndex(&gormModels.FlightLog{}, flightLogUserDateIndex) {
		err := gdb.Exec("CREATE INDEX ? ON ? (?, ?)",
			clause.Column{Name: flightLogUserDateIndex},
			clause.Table{Name: table},
			clause.Column{Name: gormModels.FlightLogColumnUserID},
			clause.Column{Name: strings.ToLower(registry.KeyDateTime)},
		).Error
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", flightLogUserDateIndex, err)
		}
	}

	return nil
}

// ColumnType is the SQL type backing a registry column for dialect
func ColumnType(dialect string, def registry.ColumnDefinition) string {
	postgres := dialect == "postgres"

	switch def.DataType {
	case registry.Timestamp:
		if postgres {
			return "timestamptz"
		}
		return "datetime"
	case registry.Number:
		if def.Unit == registry.UnitCount {
			if postgres {
				return "bigint"
			}
			return "integer"
		}
		if postgres {
			return "double precision"
		}
		return "real"
	default:
		return "text"
	}
}
