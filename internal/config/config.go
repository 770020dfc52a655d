package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything cijene needs to talk to the price API and store
// local state.
type Config struct {
	APIURL            string
	APIToken          string
	Timeout           time.Duration
	DownloadTimeout   time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	DataDir           string
	LogLevel          string
	RequireLogin      bool
	PollInterval      time.Duration

	DefaultLat  *float64
	DefaultLon  *float64
	DefaultCity string
}

const (
	defaultConfigPath      = "~/.config/cijene/config.toml"
	defaultDataDir         = "~/.local/share/cijene"
	defaultAPIURL          = "https://cijene.searxngmate.tk"
	defaultTimeout         = 10 * time.Second
	defaultDownloadTimeout = 30 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryDelay      = time.Second
	defaultLogLevel        = "info"
	defaultPollInterval    = 5 * time.Minute
	defaultEnvFile         = ".env"
)

// Environment variables that take precedence over the config file.
const (
	EnvAPIURL       = "CIJENE_API_URL"
	EnvAPIToken     = "CIJENE_API_TOKEN"
	EnvLogLevel     = "CIJENE_LOG_LEVEL"
	EnvRequireLogin = "CIJENE_REQUIRE_LOGIN"
)

type rawConfig struct {
	APIURL                 string   `toml:"api_url"`
	APIToken               string   `toml:"api_token"`
	TimeoutSeconds         int      `toml:"timeout_seconds"`
	DownloadTimeoutSeconds int      `toml:"download_timeout_seconds"`
	RetryAttempts          *int     `toml:"retry_attempts"`
	RetryDelayMS           int      `toml:"retry_delay_ms"`
	RequestsPerSecond      float64  `toml:"requests_per_second"`
	DataDir                string   `toml:"data_dir"`
	LogLevel               string   `toml:"log_level"`
	RequireLogin           bool     `toml:"require_login"`
	PollIntervalSeconds    int      `toml:"poll_interval_seconds"`
	DefaultLat             *float64 `toml:"default_lat"`
	DefaultLon             *float64 `toml:"default_lon"`
	DefaultCity            string   `toml:"default_city"`
}

// Load reads the TOML config at path (or the default location), then applies
// overrides from the process environment and a .env file in the working
// directory. A missing config file yields defaults.
func Load(path string) (Config, error) {
	return load(path, defaultEnvFile)
}

func load(path, envFile string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	bytes, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if bytes != nil {
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return Config{}, err
	}
	applyEnv(&raw, envLookup(dotenv))

	return build(raw)
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return bytes, nil
}

func readEnvFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return values, nil
}

// envLookup prefers the real environment over values read from .env, so an
// exported variable always wins.
func envLookup(dotenv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

func applyEnv(raw *rawConfig, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		raw.APIURL = v
	}
	if v, ok := lookup(EnvAPIToken); ok && strings.TrimSpace(v) != "" {
		raw.APIToken = v
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		raw.LogLevel = v
	}
	if v, ok := lookup(EnvRequireLogin); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			raw.RequireLogin = b
		}
	}
}

func build(raw rawConfig) (Config, error) {
	cfg := Config{
		APIURL:            strings.TrimRight(strings.TrimSpace(raw.APIURL), "/"),
		APIToken:          strings.TrimSpace(raw.APIToken),
		Timeout:           seconds(raw.TimeoutSeconds, defaultTimeout),
		DownloadTimeout:   seconds(raw.DownloadTimeoutSeconds, defaultDownloadTimeout),
		RetryAttempts:     defaultRetryAttempts,
		RetryDelay:        defaultRetryDelay,
		RequestsPerSecond: raw.RequestsPerSecond,
		LogLevel:          strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		RequireLogin:      raw.RequireLogin,
		PollInterval:      seconds(raw.PollIntervalSeconds, defaultPollInterval),
		DefaultLat:        raw.DefaultLat,
		DefaultLon:        raw.DefaultLon,
		DefaultCity:       strings.TrimSpace(raw.DefaultCity),
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if raw.RetryAttempts != nil && *raw.RetryAttempts >= 0 {
		cfg.RetryAttempts = *raw.RetryAttempts
	}
	if raw.RetryDelayMS > 0 {
		cfg.RetryDelay = time.Duration(raw.RetryDelayMS) * time.Millisecond
	}
	if cfg.RequestsPerSecond < 0 {
		cfg.RequestsPerSecond = 0
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	dataDir := strings.TrimSpace(raw.DataDir)
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	expanded, err := expandPath(dataDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve data_dir: %w", err)
	}
	cfg.DataDir = expanded

	return cfg, nil
}

func seconds(v int, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Second
}

// LogPath returns the path of the application log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/cijene.log")
	}
	return filepath.Join(c.DataDir, "cijene.log")
}

// HasDefaultLocation reports whether both coordinates are configured.
func (c Config) HasDefaultLocation() bool {
	return c.DefaultLat != nil && c.DefaultLon != nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
