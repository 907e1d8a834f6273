package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.AllowedOrigins)
	assert.Equal(t, DefaultCookieName, cfg.Session.CookieName)
	assert.Equal(t, DefaultSessionTTL, cfg.Session.TTL)
	assert.Equal(t, DefaultStoreTimeout, cfg.Session.StoreTimeout)
	assert.Equal(t, DefaultSweepPeriod, cfg.Session.SweepInterval)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, DefaultAnalysisTimeout, cfg.Analysis.Timeout)
	assert.Equal(t, DefaultAnalysisCacheTTL, cfg.Analysis.CacheTTL)
	assert.Error(t, cfg.Validate(), "a secret is required to serve")
}

func TestLoad_FromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9000\n" +
		"SESSION_SECRET=0123456789abcdef0123456789abcdef\n" +
		"SESSION_TTL=1h\n" +
		"STORE_TIMEOUT=not-a-duration\n" +
		"CORS_ALLOWED_ORIGINS=https://a.example, https://b.example ,\n" +
		"DB_USER=mw\nDB_PASSWORD=pw\nDB_NAME=mentalwell\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, DefaultStoreTimeout, cfg.Session.StoreTimeout, "invalid durations fall back")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "pgx5://mw:pw@localhost:5432/mentalwell?sslmode=disable", cfg.DB.MigrateURL())
	assert.Contains(t, cfg.DB.DSN(), "dbname=mentalwell")
}

func TestLoad_NonPositiveDurationsFallBack(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	content := "ANALYSIS_TIMEOUT=0s\n" +
		"ANALYSIS_CACHE_TTL=-1m\n" +
		"STORE_TIMEOUT=0s\n" +
		"SESSION_TTL=-5h\n" +
		"SESSION_SWEEP_INTERVAL=0\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)

	assert.Equal(t, DefaultAnalysisTimeout, cfg.Analysis.Timeout)
	assert.Equal(t, DefaultAnalysisCacheTTL, cfg.Analysis.CacheTTL)
	assert.Equal(t, DefaultStoreTimeout, cfg.Session.StoreTimeout)
	assert.Equal(t, DefaultSessionTTL, cfg.Session.TTL)
	assert.Equal(t, DefaultSweepPeriod, cfg.Session.SweepInterval)
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := &Config{Session: SessionConfig{Secret: "short"}}
	assert.Error(t, cfg.Validate())
}
