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
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, SourceFile, cfg.Catalog.Source)
	assert.Equal(t, "./data", cfg.Catalog.Path)
	assert.Equal(t, 15*time.Minute, cfg.Catalog.Cache.TTL)
	assert.Equal(t, 0.6, cfg.Engine.PriceCeilingRatio)
	assert.Equal(t, 5000, cfg.Engine.MaxSeeds)
	assert.Equal(t, 5, cfg.Engine.ResultLimit)
	assert.Equal(t, int64(1000), cfg.Engine.TopUpThreshold)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Same(t, cfg, Get())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8081
catalog:
  source: postgres
  cache:
    ttl: 2m
engine:
  price_ceiling_ratio: 0.65
  redundancy_groups:
    - name: water
      tags: ["생수", "삼다수"]
`), 0o644))

	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://localhost/combos")
	t.Setenv("COMBO_SERVICE_ENGINE_MAX_SEEDS", "1200")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "env overrides file")
	assert.Equal(t, SourcePostgres, cfg.Catalog.Source)
	assert.Equal(t, 2*time.Minute, cfg.Catalog.Cache.TTL)
	assert.Equal(t, 0.65, cfg.Engine.PriceCeilingRatio)
	assert.Equal(t, 1200, cfg.Engine.MaxSeeds)
	require.Len(t, cfg.Engine.RedundancyGroups, 1)
	assert.Equal(t, []string{"생수", "삼다수"}, cfg.Engine.RedundancyGroups[0].Tags)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "postgres://localhost/combos", GetDatabaseURL())
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	tests := []struct {
		name string
		yaml string
	}{
		{"bad source", "catalog:\n  source: s3\n"},
		{"bad ratio", "engine:\n  price_ceiling_ratio: 0.9\n"},
		{"bad ttl", "catalog:\n  cache:\n    ttl: 0s\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"url source without urls", "catalog:\n  source: url\n"},
		{"bad fetch rate", "catalog:\n  source: url\n  urls: [\"https://example.com/cu.csv\"]\n  fetch:\n    requests_per_second: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"# comment\nCATALOG_PATH=\"/srv/catalog\"\n\nINVALID LINE\n"), 0o644))
	t.Setenv("CATALOG_PATH", "")
	os.Unsetenv("CATALOG_PATH")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/catalog", cfg.Catalog.Path)
	os.Unsetenv("CATALOG_PATH")
}

func TestLoadURLSource(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  source: url
  urls:
    - https://example.com/cu.csv
    - https://example.com/gs25.xlsx
  fetch:
    max_retries: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceURL, cfg.Catalog.Source)
	assert.Len(t, cfg.Catalog.URLs, 2)
	assert.Equal(t, 5, cfg.Catalog.Fetch.MaxRetries)
	assert.Equal(t, 2, cfg.Catalog.Fetch.RequestsPerSecond, "unset keys keep defaults")
}

func TestLoadPostgresSourceNeedsURL(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("COMBO_SERVICE_DATABASE_URL", "")

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  source: postgres\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "database.url")

	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  source: postgres\ndatabase:\n  url: postgres://localhost/combos\n  min_connections: 50\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "min_connections")
}
