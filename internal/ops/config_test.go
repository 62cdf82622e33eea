package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"source": {"baseUrl": "http://localhost:8080", "perPage": 100, "timeoutSeconds": 10},
		"database": {"host": "db", "port": 5433, "user": "crypto", "database": "snapshots"},
		"policy": {"priceMax": 5e6, "recheckEssentialAfterCoerce": true},
		"schedule": {"intervalMinutes": 15}
	}`), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", loaded.Source.BaseURL)
	assert.Equal(t, 100, loaded.Source.PerPage)
	assert.Equal(t, 10*time.Second, loaded.Source.Timeout)
	assert.Equal(t, "db", loaded.Conn.Host)
	assert.Equal(t, 5433, loaded.Conn.Port)
	assert.Equal(t, 5e6, loaded.Policy.PriceMax)
	assert.Equal(t, 1e-6, loaded.Policy.PriceMin, "unset thresholds keep defaults")
	assert.True(t, loaded.Policy.RecheckEssentialAfterCoerce)
	assert.Equal(t, 15*time.Minute, loaded.Interval)
}

func TestResolveDefaults(t *testing.T) {
	loaded, err := Resolve(FileConfig{})
	require.NoError(t, err)

	assert.Equal(t, 60*time.Minute, loaded.Interval)
	assert.Equal(t, 1000.0, loaded.Policy.MaxAbsChangePct)
	assert.False(t, loaded.Policy.RecheckEssentialAfterCoerce)
}

func TestResolveRejectsInvalidPolicy(t *testing.T) {
	neg := -1.0
	_, err := Resolve(FileConfig{Policy: PolicyConfig{MaxAbsChangePct: &neg}})
	assert.Error(t, err)

	minHigh := 10.0
	maxLow := 1.0
	_, err = Resolve(FileConfig{Policy: PolicyConfig{PriceMin: &minHigh, PriceMax: &maxLow}})
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
