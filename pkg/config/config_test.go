package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HLSFLOW_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("HLSFLOW_CATALOG", "")
	t.Setenv("HLSFLOW_LOG_LEVEL", "")
	t.Setenv("HLSFLOW_LOG_FORMAT", "")
	t.Setenv("HLSFLOW_BACKENDS", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, &Config{LogLevel: "info", LogFormat: "text"}, cfg)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte("backends: []\n"), 0o644))

	path := filepath.Join(dir, "config.yaml")
	doc := "catalogPath: " + catalog + "\nlogLevel: debug\nbackends: [vivado]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	t.Setenv("HLSFLOW_CATALOG", "")
	t.Setenv("HLSFLOW_LOG_LEVEL", "")
	t.Setenv("HLSFLOW_LOG_FORMAT", "json")
	t.Setenv("HLSFLOW_BACKENDS", " vitis, ,vivado ")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, catalog, cfg.CatalogPath)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, []string{"vitis", "vivado"}, cfg.Backends)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("HLSFLOW_CATALOG", "")
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.ErrorContains(t, err, "read config file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("logLevel: [\n"), 0o644))
	_, err = LoadConfig(bad)
	require.ErrorContains(t, err, "parse config")

	t.Setenv("HLSFLOW_CATALOG", filepath.Join(dir, "nope.yaml"))
	ok := filepath.Join(dir, "ok.yaml")
	require.NoError(t, os.WriteFile(ok, []byte("logLevel: warn\n"), 0o644))
	_, err = LoadConfig(ok)
	require.ErrorContains(t, err, "catalog path does not exist")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	content := "# comment\nexport HLSFLOW_LOG_LEVEL=\"debug\"\nHLSFLOW_BACKENDS=vitis\nOTHER=ignored\nHLSFLOW_LOG_FORMAT=json\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644))

	t.Setenv("HLSFLOW_LOG_FORMAT", "text")
	os.Unsetenv("HLSFLOW_LOG_LEVEL")
	os.Unsetenv("HLSFLOW_BACKENDS")
	t.Cleanup(func() {
		os.Unsetenv("HLSFLOW_LOG_LEVEL")
		os.Unsetenv("HLSFLOW_BACKENDS")
	})

	applied, err := LoadDotEnv(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"HLSFLOW_LOG_LEVEL", "HLSFLOW_BACKENDS"}, applied)
	require.Equal(t, "debug", os.Getenv("HLSFLOW_LOG_LEVEL"))
	require.Equal(t, "text", os.Getenv("HLSFLOW_LOG_FORMAT"))
	_, set := os.LookupEnv("OTHER")
	require.False(t, set)

	applied, err = LoadDotEnv(t.TempDir())
	require.NoError(t, err)
	require.Nil(t, applied)
}
