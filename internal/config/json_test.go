package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"database_dsn":       "/tmp/w.db",
		"device_key_file":    "/tmp/w.key",
		"lock_timeout":       "90s",
		"work_factor":        50000,
		"kdf":                "argon2id",
		"biometrics_enabled": false,
		"log_level":          "debug",
		"log_format":         "json",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, &Config{
			DatabaseDSN:       "/tmp/w.db",
			DeviceKeyFile:     "/tmp/w.key",
			LockTimeout:       90 * time.Second,
			WorkFactor:        50000,
			KDF:               "argon2id",
			BiometricsEnabled: false,
			LogLevel:          "debug",
			LogFormat:         "json",
		}, cfg)
	})

	t.Run("absent keys keep earlier values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"lock_timeout": int64(time.Minute),
		})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		want := *cfg
		want.LockTimeout = time.Minute

		parseJson(cfg)
		assert.Equal(t, want, *cfg)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{DatabaseDSN: "defaults.db", LockTimeout: 42 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "defaults.db", cfg.DatabaseDSN)
		assert.Equal(t, 42*time.Second, cfg.LockTimeout)
	})

	t.Run("loads YAML", func(t *testing.T) {
		path := filepath.Join(dir, "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte("lock_timeout: 2m\nwork_factor: 30000\nbiometrics_enabled: false\n"), 0o600))
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{DatabaseDSN: "keep.db", BiometricsEnabled: true}
		parseJson(cfg)

		assert.Equal(t, &Config{
			DatabaseDSN: "keep.db",
			LockTimeout: 2 * time.Minute,
			WorkFactor:  30000,
		}, cfg)
	})

	t.Run("invalid YAML → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yml")
		require.NoError(t, os.WriteFile(bad, []byte("lock_timeout: [unclosed\n"), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
