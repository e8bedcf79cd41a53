package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_RequiredColumns(t *testing.T) {
	reg := Default()

	assert.Equal(t, []string{KeyDateTime, KeyAircraftType, KeyTotalTime}, reg.RequiredKeys())

	for _, def := range reg.All() {
		want := def.Key == KeyDateTime || def.Key == KeyAircraftType || def.Key == KeyTotalTime
		assert.Equal(t, want, reg.IsRequired(def.Key), def.Key)
	}
}

func TestDefault_OrderAndTypes(t *testing.T) {
	reg := Default()
	keys := reg.Keys()

	require.Len(t, keys, len(flightLogColumns))
	assert.Equal(t, KeyDateTime, keys[0])
	assert.Equal(t, KeyRemarks, keys[22])
	assert.Equal(t, KeyMilitaryTime, keys[len(keys)-1])

	tests := []struct {
		key      string
		dataType DataType
		unit     Unit
	}{
		{KeyDateTime, Timestamp, UnitNone},
		{KeyTotalTime, Number, UnitHours},
		{KeyDayLandings, Number, UnitCount},
		{KeyHolds, Number, UnitCount},
		{KeyDistance, Number, UnitNauticalMiles},
		{KeyRemarks, String, UnitNone},
	}
	for _, tt := range tests {
		def, ok := reg.Lookup(tt.key)
		require.True(t, ok, tt.key)
		assert.Equal(t, tt.dataType, def.DataType, tt.key)
		assert.Equal(t, tt.unit, def.Unit, tt.key)
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, ok := Default().Lookup("TAIL_WIND")
	assert.False(t, ok)
	assert.False(t, Default().IsRequired("TAIL_WIND"))
}

func TestAll_ReturnsCopy(t *testing.T) {
	reg := Default()
	all := reg.All()
	all[0].Key = "MUTATED"

	def, ok := reg.Lookup(KeyDateTime)
	require.True(t, ok)
	assert.Equal(t, KeyDateTime, def.Key)
	assert.Equal(t, KeyDateTime, reg.All()[0].Key)
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New([]ColumnDefinition{
		{Key: "A", DataType: String},
		{Key: "A", DataType: Number},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Panics(t, func() {
		MustNew([]ColumnDefinition{{Key: ""}})
	})
}

func TestNew_RejectsGeneratedRequired(t *testing.T) {
	_, err := New([]ColumnDefinition{{Key: "X", Generated: true, Required: true}})
	assert.Error(t, err)
}

func TestMatchHeader(t *testing.T) {
	reg := Default()

	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"TOTAL_TIME", KeyTotalTime, true},
		{"  total_time ", KeyTotalTime, true},
		{"Date_Time", KeyDateTime, true},
		{"Total Time", "", false},
		{"TURBINE_TIME", "", false},
		{"aircraft_model_id", "", false},
	}
	for _, tt := range tests {
		def, ok := reg.MatchHeader(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, def.Key, tt.header)
	}
}

func TestDescribe_ListsOnlyInputs(t *testing.T) {
	out := Default().Describe()

	assert.Contains(t, out, "TOTAL_TIME (number, hours, required): ")
	assert.Contains(t, out, "DAY_LANDINGS (number, count): ")
	assert.Contains(t, out, "REMARKS (string): ")
	assert.NotContains(t, out, KeyTurbineTime)
	assert.Equal(t, len(Default().Inputs()), strings.Count(out, "\n"))
}

func TestColumnDefinition_Helpers(t *testing.T) {
	def, _ := Default().Lookup(KeyCrossCountryTime)
	assert.Equal(t, "cross_country_time", def.DBColumn())
	assert.True(t, def.IsDuration())

	def, _ = Default().Lookup(KeyDayLandings)
	assert.False(t, def.IsDuration())
}
