package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/markb/sareeone/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef"

// isolate clears every variable Load reads and runs from an empty dir so a
// developer's environment or sareeone.yaml cannot leak into the test.
func isolate(t *testing.T) {
	t.Helper()
	for name := range envKeys {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv(PathEnvVar, "")
	os.Unsetenv(PathEnvVar)
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "sqlite::memory:")
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://localhost:5000", "http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 120, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 256, cfg.WSSendBuffer)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	isolate(t)
	t.Setenv("SESSION_SECRET", testSecret)

	_, err := Load(nil)
	require.Error(t, err)

	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "DatabaseURL", verr.Fields[0].Field)
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "sqlite::memory:")

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SessionSecret is required")

	t.Setenv("SESSION_SECRET", "short")
	_, err = Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SessionSecret must be at least 16 characters")
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db/saree")
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://saree.one, https://admin.saree.one")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("UNRELATED_VAR", "ignored")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://saree.one", "https://admin.saree.one"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
}

func TestLoadFileThenEnvThenOverrides(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: "sqlite:/tmp/saree.db"
session_secret: "`+testSecret+`"
host: "127.0.0.1"
port: 7000
log_level: debug
`), 0o644))
	t.Setenv(PathEnvVar, path)
	t.Setenv("PORT", "7100")

	cfg, err := Load(map[string]any{"port": 7200})
	require.NoError(t, err)

	assert.Equal(t, "sqlite:/tmp/saree.db", cfg.DatabaseURL)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 7200, cfg.Port)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "sqlite::memory:")
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("APP_ENV", "staging")

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Env must be one of")
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: []string{"http://localhost:5000"}}
	assert.Equal(t, []string{"http://localhost:5000"}, cfg.AllowedOrigins())

	cfg.BaseURL = "https://saree.one/"
	assert.Equal(t, []string{"http://localhost:5000", "https://saree.one"}, cfg.AllowedOrigins())

	cfg.CORSOrigins = append(cfg.CORSOrigins, "https://saree.one")
	assert.Len(t, cfg.AllowedOrigins(), 2)
}

func TestLogging(t *testing.T) {
	cfg := &Config{LogMode: "file", LogLevel: "warn", LogFormat: "json", LogFile: "x.log", LogBufferLines: 10}
	lc := cfg.Logging()
	assert.Equal(t, "file", lc.Mode)
	assert.Equal(t, "warn", lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "x.log", lc.FilePath)
	assert.Equal(t, 10, lc.BufferLines)
}
