package gorm

import "time"

// FlightLog carries the fixed system columns of a flight-log row. The
// registry columns are added to the same table by the migrator and are read
// and written as maps keyed by column name.
type FlightLog struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	UserID      string    `gorm:"column:user_id;type:varchar(255);not null;index"`
	ExtraFields string    `gorm:"column:extra_fields;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (FlightLog) TableName() string {
	return "flight_logs"
}

// Physical names of the system columns.
const (
	FlightLogColumnID          = "id"
	FlightLogColumnUserID      = "user_id"
	FlightLogColumnExtraFields = "extra_fields"
	FlightLogColumnCreatedAt   = "created_at"
	FlightLogColumnUpdatedAt   = "updated_at"
)
