package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `json:"port" yaml:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
	// Env is "production" or anything else for development.
	Env        string `json:"env" yaml:"env"`
	CORSOrigin string `json:"cors_origin" yaml:"cors_origin"`
}

// Production reports whether the server runs in production mode.
func (s Server) Production() bool { return strings.EqualFold(s.Env, "production") }

// AllowedOrigin is the configured CORS origin or the default for the mode.
func (s Server) AllowedOrigin() string {
	if s.CORSOrigin != "" {
		return s.CORSOrigin
	}
	if s.Production() {
		return "https://stocker.com"
	}
	return "http://localhost:5173"
}

type KIS struct {
	AppKey    string `json:"app_key" yaml:"app_key"`
	AppSecret string `json:"app_secret" yaml:"app_secret"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	// MaxRPS and Burst size the token bucket in front of quotation calls.
	MaxRPS              float64 `json:"max_rps" yaml:"max_rps"`
	Burst               int     `json:"burst" yaml:"burst"`
	TokenMarginSec      int     `json:"token_margin_sec" yaml:"token_margin_sec"`
	TokenMinIntervalSec int     `json:"token_min_interval_sec" yaml:"token_min_interval_sec"`
	// TokenStateFile persists the access token across restarts when set.
	TokenStateFile string `json:"token_state_file" yaml:"token_state_file"`
	// TokenRefreshCron schedules a proactive token refresh, e.g. "@every 6h".
	TokenRefreshCron string `json:"token_refresh_cron" yaml:"token_refresh_cron"`
}

// Configured reports whether both secrets are present.
func (k KIS) Configured() bool { return k.AppKey != "" && k.AppSecret != "" }

type Chart struct {
	CacheTTLSeconds int `json:"cache_ttl_sec" yaml:"cache_ttl_sec"`
	CacheMaxItems   int `json:"cache_max_items" yaml:"cache_max_items"`
}

type Log struct {
	Level string `json:"level" yaml:"level"`
	// Format is "console" or "json".
	Format string `json:"format" yaml:"format"`
}

type Config struct {
	Server Server `json:"server" yaml:"server"`
	KIS    KIS    `json:"kis" yaml:"kis"`
	Chart  Chart  `json:"chart" yaml:"chart"`
	Log    Log    `json:"log" yaml:"log"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "3000", RequestTimeoutSec: 10, Env: "development"},
		KIS: KIS{
			BaseURL:             "https://openapi.koreainvestment.com:9443",
			MaxRPS:              20,
			Burst:               5,
			TokenMarginSec:      60,
			TokenMinIntervalSec: 60,
		},
		Chart: Chart{CacheTTLSeconds: 30, CacheMaxItems: 1000},
		Log:   Log{Level: "info", Format: "console"},
	}
}

// Load reads .env, then a JSON or YAML config file, then environment
// overrides. If path is empty, config.json and config.yaml are tried in
// turn; a missing file yields defaults.
func Load(path string) (Config, error) {
	if err := loadDotenv(); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path == "" {
		for _, p := range []string{"config.json", "config.yaml", "config.yml"} {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

// loadDotenv loads ENV_FILE (default .env). Variables already set win.
// NO_DOTENV=1 skips it.
func loadDotenv() error {
	if parseBool(os.Getenv("NO_DOTENV")) {
		return nil
	}
	path := os.Getenv("ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if x, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Server.RequestTimeoutSec = x
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("NODE_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.Server.CORSOrigin = v
	}

	if v := os.Getenv("KIS_APP_KEY"); v != "" {
		cfg.KIS.AppKey = v
	}
	if v := os.Getenv("KIS_APP_SECRET"); v != "" {
		cfg.KIS.AppSecret = v
	}
	if v := os.Getenv("KIS_BASE_URL"); v != "" {
		cfg.KIS.BaseURL = v
	}
	if v := os.Getenv("KIS_MAX_RPS"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil && x >= 0 {
			cfg.KIS.MaxRPS = x
		}
	}
	if x, ok := envInt("KIS_BURST"); ok && x > 0 {
		cfg.KIS.Burst = x
	}
	if x, ok := envInt("KIS_TOKEN_MARGIN_SEC"); ok && x >= 0 {
		cfg.KIS.TokenMarginSec = x
	}
	if x, ok := envInt("KIS_TOKEN_MIN_INTERVAL_SEC"); ok && x >= 0 {
		cfg.KIS.TokenMinIntervalSec = x
	}
	if v := os.Getenv("KIS_TOKEN_STATE_FILE"); v != "" {
		cfg.KIS.TokenStateFile = v
	}
	if v := os.Getenv("KIS_TOKEN_REFRESH_CRON"); v != "" {
		cfg.KIS.TokenRefreshCron = v
	}

	if x, ok := envInt("CHART_CACHE_TTL_SEC"); ok && x >= 0 {
		cfg.Chart.CacheTTLSeconds = x
	}
	if x, ok := envInt("CHART_CACHE_MAX_ITEMS"); ok && x > 0 {
		cfg.Chart.CacheMaxItems = x
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// Validate asserts the config has sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.Server.Port == "" {
		errs = errors.Join(errs, errors.New("server port cannot be empty"))
	}
	if cfg.Server.RequestTimeoutSec <= 0 {
		errs = errors.Join(errs, fmt.Errorf("request timeout must be positive, got %d", cfg.Server.RequestTimeoutSec))
	}
	if (cfg.KIS.AppKey == "") != (cfg.KIS.AppSecret == "") {
		errs = errors.Join(errs, errors.New("kis app key and secret must be set together"))
	}
	if cfg.KIS.MaxRPS < 0 {
		errs = errors.Join(errs, fmt.Errorf("kis max rps cannot be negative, got %v", cfg.KIS.MaxRPS))
	}
	if cfg.KIS.Burst <= 0 {
		errs = errors.Join(errs, fmt.Errorf("kis burst must be positive, got %d", cfg.KIS.Burst))
	}
	if cfg.KIS.TokenRefreshCron != "" {
		if _, err := cron.ParseStandard(cfg.KIS.TokenRefreshCron); err != nil {
			errs = errors.Join(errs, fmt.Errorf("kis token refresh cron: %w", err))
		}
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		errs = errors.Join(errs, fmt.Errorf("log level: %w", err))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "console", "json":
	default:
		errs = errors.Join(errs, fmt.Errorf("log format must be console or json, got %q", cfg.Log.Format))
	}

	return errs
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return x, true
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
