package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves the test into dir and restores the working directory afterwards.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "build", config.Output.Dir)
	assert.Equal(t, []string{"kicad_pcb", "net", "json"}, config.Output.Formats)
	assert.Equal(t, 20240108, config.KiCad.Version)
	assert.Equal(t, "pcbgen", config.KiCad.Generator)
	assert.InDelta(t, 1.6, config.KiCad.Thickness, 1e-9)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, ".pcbgen/history.db", config.Database.Path)
	assert.Equal(t, 200*time.Millisecond, config.Watch.Debounce())
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pcbgen.toml")

	require.NoError(t, CreateConfigFile(path))
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)

	assert.Error(t, CreateConfigFile(path), "creating config file again should fail")
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pcbgen.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\nformats = [\"kicad_pcb\"]\n\n[log]\nlevel = \"debug\"\n"), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"kicad_pcb"}, config.Output.Formats)
	assert.Equal(t, "debug", config.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, "build", config.Output.Dir)
	assert.Equal(t, 20240108, config.KiCad.Version)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[output\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("[output]\ncolour = \"red\"\n"), 0o644))
	_, err = LoadConfig(unknown)
	assert.ErrorContains(t, err, "output.colour")
}

func TestResolve(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv(EnvConfig, "")

		config, path, err := Resolve("")
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, DefaultConfig(), config)
	})

	t.Run("pcbgen.toml in working directory", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		t.Setenv(EnvConfig, "")
		require.NoError(t, os.WriteFile(DefaultPath, []byte("[output]\ndir = \"out\"\n"), 0o644))

		config, path, err := Resolve("")
		require.NoError(t, err)
		assert.Equal(t, DefaultPath, path)
		assert.Equal(t, "out", config.Output.Dir)
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		chdir(t, t.TempDir())
		_, _, err := Resolve("nope.toml")
		assert.Error(t, err)
	})

	t.Run("environment overrides", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)

		alt := filepath.Join(dir, "alt.toml")
		require.NoError(t, os.WriteFile(alt, []byte("[kicad]\nthickness = 0.8\n"), 0o644))
		t.Setenv(EnvConfig, alt)
		t.Setenv(EnvOutputDir, "artifacts")
		t.Setenv(EnvDatabase, "")

		config, path, err := Resolve("")
		require.NoError(t, err)
		assert.Equal(t, alt, path)
		assert.InDelta(t, 0.8, config.KiCad.Thickness, 1e-9)
		assert.Equal(t, "artifacts", config.Output.Dir)
		assert.Empty(t, config.Database.Path)
	})

	t.Run("dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		t.Setenv(EnvConfig, "")
		// registered so the value set by godotenv is restored afterwards
		t.Setenv(EnvLogLevel, "")
		require.NoError(t, os.Unsetenv(EnvLogLevel))
		require.NoError(t, os.WriteFile(".env", []byte(EnvLogLevel+"=warn\n"), 0o644))

		config, _, err := Resolve("")
		require.NoError(t, err)
		assert.Equal(t, "warn", config.Log.Level)
	})
}
