package app_test

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securejoin/internal/app"
)

const testPass = "Correct-Horse-42"

func TestNewWireRequiresUsername(t *testing.T) {
	cfg := app.DefaultConfig(t.TempDir())
	_, err := app.NewWire(cfg, testPass)
	assert.ErrorIs(t, err, app.ErrNoUsername)
}

func TestNewWireBothBackends(t *testing.T) {
	for _, backend := range []string{app.BackendBolt, app.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := app.DefaultConfig(t.TempDir())
			cfg.Username = "bob@example.org"
			cfg.StoreBackend = backend

			_, fp, err := app.NewIdentityService(cfg).GenerateIdentity(testPass)
			require.NoError(t, err)

			w, err := app.NewWire(cfg, testPass)
			require.NoError(t, err)
			defer w.Close()

			self, err := w.Self.SelfFingerprint(t.Context())
			require.NoError(t, err)
			assert.Equal(t, fp, self)

			state, err := w.Join.Status(t.Context())
			require.NoError(t, err)
			assert.Nil(t, state)
		})
	}
}

func TestNewWireWrongPassphrase(t *testing.T) {
	cfg := app.DefaultConfig(t.TempDir())
	cfg.Username = "bob@example.org"
	_, _, err := app.NewIdentityService(cfg).GenerateIdentity(testPass)
	require.NoError(t, err)

	_, err = app.NewWire(cfg, "Wrong-Horse-42")
	assert.Error(t, err)
}

func TestConfigureLogging(t *testing.T) {
	defer logrus.SetOutput(logrus.StandardLogger().Out)
	defer logrus.SetLevel(logrus.GetLevel())
	defer logrus.SetFormatter(logrus.StandardLogger().Formatter)

	var buf bytes.Buffer
	cfg := app.DefaultConfig("/tmp/h")
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"
	require.NoError(t, app.ConfigureLogging(cfg, &buf))

	logrus.Info("hidden")
	logrus.WithField("k", "v").Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	cfg.LogLevel = "loud"
	assert.Error(t, app.ConfigureLogging(cfg, &buf))
}
