package gorm

import "time"

// AircraftModel is one canonical aircraft in the shared catalog
type AircraftModel struct {
	ID             string          `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	CanonicalName  string          `gorm:"column:canonical_name;type:text;not null" json:"canonicalName"`
	IsFixedWing    bool            `gorm:"column:is_fixed_wing;not null;default:false" json:"isFixedWing"`
	IsHelicopter   bool            `gorm:"column:is_helicopter;not null;default:false" json:"isHelicopter"`
	IsSingleEngine bool            `gorm:"column:is_single_engine;not null;default:false" json:"isSingleEngine"`
	IsTurbine      bool            `gorm:"column:is_turbine;not null;default:false" json:"isTurbine"`
	IsMilitary     bool            `gorm:"column:is_military;not null;default:false" json:"isMilitary"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	Aliases        []AircraftAlias `gorm:"foreignKey:ModelID;references:ID" json:"aliases,omitempty"`
}

// TableName specifies the table name for GORM
func (AircraftModel) TableName() string {
	return "aircraft_models"
}

// AliasSet returns the normalized alias strings of the model.
func (m *AircraftModel) AliasSet() []string {
	out := make([]string, 0, len(m.Aliases))
	for _, a := range m.Aliases {
		out = append(out, a.Alias)
	}
	return out
}

// AircraftAlias maps a normalized identifier to its catalog record. The alias
// is the primary key, so no two records can claim the same normalized string.
type AircraftAlias struct {
	Alias     string    `gorm:"column:alias;primaryKey;type:varchar(255)" json:"alias"`
	ModelID   string    `gorm:"column:model_id;index;type:varchar(36);not null" json:"modelId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for GORM
func (AircraftAlias) TableName() string {
	return "aircraft_aliases"
}
