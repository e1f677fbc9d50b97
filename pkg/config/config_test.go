package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(10<<20), cfg.Parse.MaxUploadBytes)
	assert.Equal(t, 30*time.Second, cfg.Parse.Timeout)
	assert.False(t, cfg.Parse.ValidatePDF)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, slog.LevelInfo, cfg.Observability.LogLevel)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("PARSE_TIMEOUT", "5s")
	t.Setenv("PARSE_VALIDATE_PDF", "true")
	t.Setenv("PARSE_WORKERS", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("METRICS_ENABLED", "not-a-bool")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Parse.Timeout)
	assert.True(t, cfg.Parse.ValidatePDF)
	assert.Equal(t, 3, cfg.Parse.Workers)
	assert.Equal(t, slog.LevelDebug, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled, "invalid values fall back to the default")
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PARSE_MAX_UPLOAD_BYTES=2048\n"), 0o600))
	// godotenv never overrides a variable that is already set, even to "".
	t.Setenv("PARSE_MAX_UPLOAD_BYTES", "")
	require.NoError(t, os.Unsetenv("PARSE_MAX_UPLOAD_BYTES"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), cfg.Parse.MaxUploadBytes)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PARSE_MAX_UPLOAD_BYTES", "-1")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
