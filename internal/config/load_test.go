package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	return pflag.NewFlagSet("mcp-order-reader", pflag.ContinueOnError)
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(newFlagSet(), []string{"--dir", dir})
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
	assert.Equal(t, DefaultExtractTimeout, cfg.ExtractTimeout)
	assert.Equal(t, dir, cfg.Directory)
}

func TestLoadFlags(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(newFlagSet(), []string{
		"--mode=server", "--host=0.0.0.0", "--port=9090", "--dir=" + dir,
		"--log-level=debug", "--max-file-size=2048", "--cache-size=0", "--extract-timeout=30s",
	})
	require.NoError(t, err)

	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(2048), cfg.MaxFileSize)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.Equal(t, 30*time.Second, cfg.ExtractTimeout)
}

func TestLoadEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MCP_ORDER_MODE", "server")
	t.Setenv("MCP_ORDER_PORT", "7070")
	t.Setenv("MCP_ORDER_DIR", dir)
	t.Setenv("MCP_ORDER_MAX_FILE_SIZE", "4096")
	t.Setenv("MCP_ORDER_CACHE_SIZE", "8")

	cfg, err := Load(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, dir, cfg.Directory)
	assert.Equal(t, int64(4096), cfg.MaxFileSize)
	assert.Equal(t, 8, cfg.CacheSize)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("MCP_ORDER_PORT", "7070")

	cfg, err := Load(newFlagSet(), []string{"--dir", t.TempDir(), "--port", "9191"})
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Port)
}

func TestLoadRelativeDirectoryIsAbsolute(t *testing.T) {
	base := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(base))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(newFlagSet(), []string{"--dir", "orders"})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.Directory))
	assert.DirExists(t, cfg.Directory)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "invalid mode", args: []string{"--mode=daemon"}},
		{name: "invalid log level", args: []string{"--log-level=loud"}},
		{name: "invalid port", args: []string{"--mode=server", "--port=0"}},
		{name: "unknown flag", args: []string{"--bogus"}},
		{name: "bad number", args: []string{"--port=abc"}},
		{name: "negative timeout", args: []string{"--extract-timeout=-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--dir", t.TempDir()}, tt.args...)
			fs := newFlagSet()
			fs.SetOutput(io.Discard)
			_, err := Load(fs, args)
			assert.Error(t, err)
		})
	}
}

func TestLoadVersion(t *testing.T) {
	for _, arg := range []string{"--version", "-v"} {
		_, err := Load(newFlagSet(), []string{arg})
		assert.ErrorIs(t, err, ErrVersionRequested, arg)
	}
}
