package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `aircraft:
  - canonical_name: Cessna 172
    aliases: [C172, Skyhawk]
    fixed_wing: true
    single_engine: true
  - canonical_name: Beechcraft King Air 200
    aliases: [BE20]
    fixed_wing: true
    turbine: true
`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aircraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCatalog(t *testing.T) {
	specs, err := parseCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "Cessna 172", specs[0].CanonicalName)
	assert.Equal(t, []string{"C172", "Skyhawk"}, specs[0].Aliases)
	assert.True(t, specs[0].IsSingleEngine)
	assert.False(t, specs[0].IsTurbine)
	assert.True(t, specs[1].IsTurbine)
}

func TestParseCatalogRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "empty"},
		{"no entries", "aircraft: []\n", "no aircraft"},
		{"missing name", "aircraft:\n  - aliases: [C172]\n", "canonical_name is required"},
		{"unknown field", "aircraft:\n  - canonical_name: C172\n    wingspan: 36\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCatalog(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDryRun(t *testing.T) {
	out, err := execute(t, "--file", writeCatalog(t, sampleCatalog), "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "2 aircraft entries parsed\n", out)
}

func TestFileFlagRequired(t *testing.T) {
	_, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

func TestImportIntoSQLite(t *testing.T) {
	path := writeCatalog(t, sampleCatalog)
	t.Chdir(t.TempDir())
	t.Setenv("FLIGHTLOG_DATABASE_DRIVER", "sqlite")
	t.Setenv("FLIGHTLOG_DATABASE_DSN", filepath.Join(t.TempDir(), "catalog.db"))
	t.Setenv("FLIGHTLOG_CACHE_BACKEND", "memory")
	t.Setenv("FLIGHTLOG_LOG_LEVEL", "error")

	out, err := execute(t, "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "created 2, updated 0, aliases added 3\n", out)

	// A second run updates in place and adds nothing new.
	out, err = execute(t, "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "created 0, updated 2, aliases added 0\n", out)
}
