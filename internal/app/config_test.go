package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securejoin/internal/app"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := app.Load("/tmp/h", []byte(`username = "bob@example.org"`))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/h", cfg.Home)
	assert.Equal(t, "bob@example.org", cfg.Username)
	assert.Equal(t, app.BackendBolt, cfg.StoreBackend)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.RelayURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout.Duration)
}

func TestLoadParsesAllKeys(t *testing.T) {
	b := []byte(`
relay_url = "http://relay:9000"
username = "bob@example.org"
store_backend = "sqlite"
log_level = "debug"
log_format = "json"
http_timeout = "3s"
`)
	cfg, err := app.Load("/tmp/h", b)
	require.NoError(t, err)

	assert.Equal(t, "http://relay:9000", cfg.RelayURL)
	assert.Equal(t, app.BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout.Duration)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := app.Load("/tmp/h", []byte(`usernme = "typo"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undecoded")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"backend":  `store_backend = "postgres"`,
		"format":   `log_format = "xml"`,
		"timeout":  `http_timeout = "soon"`,
		"relay":    `relay_url = ""`,
		"negative": `http_timeout = "-1s"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := app.Load("/tmp/h", []byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoadHomeMissingFileUsesDefaults(t *testing.T) {
	cfg, err := app.LoadHome(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, app.BackendBolt, cfg.StoreBackend)
	assert.Empty(t, cfg.Username)
}

func TestSaveThenLoadHome(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested")
	cfg := app.DefaultConfig(home)
	cfg.Username = "bob@example.org"
	cfg.StoreBackend = app.BackendSQLite
	cfg.HTTPTimeout.Duration = 1500 * time.Millisecond
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(home, app.ConfigFilename))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := app.LoadHome(home)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
