package translate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTablesDefaults(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)
	assert.Equal(t, "Comfortable", tables.Comfort["COMFORTABLE_FOR_MOST"])
	assert.Equal(t, "Oculus Rift S", tables.HmdPlatforms["LAGUNA"])
}

func TestLoadTablesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.json")
	override := `{
		"comfort": {"COMFORTABLE_FOR_MOST": "Chill", "NEW_TOKEN": "New"},
		"hmd_platforms": {"ZION": "Meta Quest 4"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)

	// overridden and added entries take effect
	assert.Equal(t, "Chill", tables.Comfort["COMFORTABLE_FOR_MOST"])
	assert.Equal(t, "New", tables.Comfort["NEW_TOKEN"])
	assert.Equal(t, "Meta Quest 4", tables.HmdPlatforms["ZION"])

	// untouched defaults survive
	assert.Equal(t, "Moderate", tables.Comfort["COMFORTABLE_FOR_SOME"])
	assert.Equal(t, "Oculus Rift", tables.HmdPlatforms["RIFT"])
}

func TestLoadTablesBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	tables, err := LoadTables(path)
	assert.Error(t, err)
	// defaults still come back so callers can proceed
	assert.Equal(t, "Comfortable", tables.Comfort["COMFORTABLE_FOR_MOST"])
}
