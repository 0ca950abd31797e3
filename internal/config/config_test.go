package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate stops tests from reading a stray .env in the package directory.
func isolate(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	for _, k := range []string{
		"PORT", "REQUEST_TIMEOUT_SEC", "APP_ENV", "NODE_ENV", "CORS_ORIGIN",
		"KIS_APP_KEY", "KIS_APP_SECRET", "KIS_BASE_URL", "KIS_MAX_RPS", "KIS_BURST",
		"KIS_TOKEN_MARGIN_SEC", "KIS_TOKEN_MIN_INTERVAL_SEC", "KIS_TOKEN_STATE_FILE",
		"KIS_TOKEN_REFRESH_CRON", "CHART_CACHE_TTL_SEC", "CHART_CACHE_MAX_ITEMS",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.False(t, cfg.KIS.Configured())
	require.Equal(t, "http://localhost:5173", cfg.Server.AllowedOrigin())
}

func TestLoad_JSONFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "stocker.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": "9000", "env": "production"},
		"kis": {"app_key": "k", "app_secret": "s", "max_rps": 5},
		"chart": {"cache_ttl_sec": 0}
	}`), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Server.Port)
	require.Equal(t, 10, cfg.Server.RequestTimeoutSec, "default kept")
	require.True(t, cfg.Server.Production())
	require.Equal(t, "https://stocker.com", cfg.Server.AllowedOrigin())
	require.True(t, cfg.KIS.Configured())
	require.InEpsilon(t, 5.0, cfg.KIS.MaxRPS, 0.0001)
	require.Zero(t, cfg.Chart.CacheTTLSeconds)
}

func TestLoad_YAMLFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "stocker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "4000"
kis:
  token_refresh_cron: "@every 6h"
log:
  level: debug
  format: json
`), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Equal(t, "4000", cfg.Server.Port)
	require.Equal(t, "@every 6h", cfg.KIS.TokenRefreshCron)
	require.Equal(t, "json", cfg.Log.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))

	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "8081")
	t.Setenv("REQUEST_TIMEOUT_SEC", "3")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("CORS_ORIGIN", "https://example.org")
	t.Setenv("KIS_APP_KEY", "key")
	t.Setenv("KIS_APP_SECRET", "secret")
	t.Setenv("KIS_MAX_RPS", "2.5")
	t.Setenv("KIS_BURST", "not-a-number")
	t.Setenv("CHART_CACHE_TTL_SEC", "0")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))

	require.NoError(t, err)
	require.Equal(t, "8081", cfg.Server.Port)
	require.Equal(t, 3, cfg.Server.RequestTimeoutSec)
	require.True(t, cfg.Server.Production())
	require.Equal(t, "https://example.org", cfg.Server.AllowedOrigin())
	require.True(t, cfg.KIS.Configured())
	require.InEpsilon(t, 2.5, cfg.KIS.MaxRPS, 0.0001)
	require.Equal(t, 5, cfg.KIS.Burst, "unparsable value ignored")
	require.Zero(t, cfg.Chart.CacheTTLSeconds)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_DotenvDoesNotOverrideEnv(t *testing.T) {
	isolate(t)

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("KIS_APP_KEY=from-file\nKIS_APP_SECRET=from-file\n"), 0o600))
	t.Setenv("NO_DOTENV", "")
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("KIS_APP_KEY", "from-env")
	// godotenv treats an empty value as set, so unset the secret for the file to fill it.
	require.NoError(t, os.Unsetenv("KIS_APP_SECRET"))
	t.Cleanup(func() { os.Unsetenv("KIS_APP_SECRET") })

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))

	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.KIS.AppKey)
	require.Equal(t, "from-file", cfg.KIS.AppSecret)
}

func TestLoad_ExplicitEnvFileMissing(t *testing.T) {
	isolate(t)
	t.Setenv("NO_DOTENV", "")
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	_, err := Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = ""
	cfg.Server.RequestTimeoutSec = 0
	cfg.KIS.AppKey = "only-key"
	cfg.KIS.Burst = 0
	cfg.KIS.TokenRefreshCron = "every now and then"
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()

	require.Error(t, err)
	for _, want := range []string{"port", "timeout", "secret", "burst", "cron", "log level", "log format"} {
		require.ErrorContains(t, err, want)
	}
}
