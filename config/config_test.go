package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, "models", cfg.Models.Dir)
	require.Len(t, cfg.Routes, 3)
	assert.Equal(t, ModeRedirect, cfg.Routes[0].Mode)
	assert.Equal(t, "hdb.html", cfg.Routes[0].Template)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 8080
  timeout: 5s
models:
  dir: /srv/models
  cache_size: 64
routes:
  - task: regression
    prefix: ""
`), 0o600))
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 64, cfg.Models.CacheSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.Len(t, cfg.Routes, 1)
	assert.Equal(t, ModeRender, cfg.Routes[0].Mode)
	assert.Equal(t, "hdb.html", cfg.Routes[0].Template)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "http")
	_, err := Load("")
	assert.ErrorContains(t, err, "invalid PORT")
}

func TestValidate(t *testing.T) {
	t.Setenv("PORT", "")
	cfg := Default()
	cfg.Routes = append(cfg.Routes,
		Route{Task: "clustering", Prefix: "/c", Mode: ModeRender, Template: "c.html"},
		Route{Task: "anomaly", Prefix: "/hdb", Mode: ModeRedirect, RedirectURL: "/relative"},
		Route{Task: "anomaly", Prefix: "bad/", Mode: "stream"},
	)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown task "clustering"`)
	assert.Contains(t, err.Error(), `prefix "/hdb" already mounted`)
	assert.Contains(t, err.Error(), "must be an absolute URL")
	assert.Contains(t, err.Error(), `prefix "bad/"`)
}
