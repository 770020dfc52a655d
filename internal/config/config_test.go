package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIURL, EnvAPIToken, EnvLogLevel, EnvRequireLogin} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := load(filepath.Join(home, "does-not-exist.toml"), "")
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.Timeout != defaultTimeout {
		t.Fatalf("Timeout = %v, want %v", cfg.Timeout, defaultTimeout)
	}
	if cfg.DownloadTimeout != defaultDownloadTimeout {
		t.Fatalf("DownloadTimeout = %v, want %v", cfg.DownloadTimeout, defaultDownloadTimeout)
	}
	if cfg.RetryAttempts != defaultRetryAttempts {
		t.Fatalf("RetryAttempts = %d, want %d", cfg.RetryAttempts, defaultRetryAttempts)
	}
	if cfg.RetryDelay != defaultRetryDelay {
		t.Fatalf("RetryDelay = %v, want %v", cfg.RetryDelay, defaultRetryDelay)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, defaultLogLevel)
	}

	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.LogPath() != filepath.Join(wantDataDir, "cijene.log") {
		t.Fatalf("LogPath = %q, want %q", cfg.LogPath(), filepath.Join(wantDataDir, "cijene.log"))
	}
	if cfg.HasDefaultLocation() {
		t.Fatalf("HasDefaultLocation = true, want false")
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  https://prices.example.com/  "
api_token = "  secret  "
timeout_seconds = 4
retry_attempts = 0
retry_delay_ms = 250
requests_per_second = 2.5
data_dir = "  ~/.cijene  "
log_level = " DEBUG "
require_login = true
poll_interval_seconds = 60
default_lat = 45.815
default_lon = 15.9819
default_city = " Zagreb "
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := load(path, "")
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.APIURL != "https://prices.example.com" {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, "https://prices.example.com")
	}
	if cfg.APIToken != "secret" {
		t.Fatalf("APIToken = %q, want %q", cfg.APIToken, "secret")
	}
	if cfg.Timeout != 4*time.Second {
		t.Fatalf("Timeout = %v, want 4s", cfg.Timeout)
	}
	if cfg.RetryAttempts != 0 {
		t.Fatalf("RetryAttempts = %d, want 0", cfg.RetryAttempts)
	}
	if cfg.RetryDelay != 250*time.Millisecond {
		t.Fatalf("RetryDelay = %v, want 250ms", cfg.RetryDelay)
	}
	if cfg.RequestsPerSecond != 2.5 {
		t.Fatalf("RequestsPerSecond = %v, want 2.5", cfg.RequestsPerSecond)
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if !cfg.RequireLogin {
		t.Fatalf("RequireLogin = false, want true")
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("PollInterval = %v, want 1m", cfg.PollInterval)
	}
	if !cfg.HasDefaultLocation() || *cfg.DefaultLat != 45.815 || *cfg.DefaultLon != 15.9819 {
		t.Fatalf("default location = %v,%v, want 45.815,15.9819", cfg.DefaultLat, cfg.DefaultLon)
	}
	if cfg.DefaultCity != "Zagreb" {
		t.Fatalf("DefaultCity = %q, want %q", cfg.DefaultCity, "Zagreb")
	}
}

func TestLoad_EnvFileAndEnvironmentOverrideFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "https://file.example.com"
api_token = "file-token"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("CIJENE_API_URL=https://dotenv.example.com\nCIJENE_API_TOKEN=dotenv-token\nCIJENE_REQUIRE_LOGIN=true\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(EnvAPIToken, "env-token")

	cfg, err := load(path, envFile)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.APIURL != "https://dotenv.example.com" {
		t.Fatalf("APIURL = %q, want the .env value", cfg.APIURL)
	}
	if cfg.APIToken != "env-token" {
		t.Fatalf("APIToken = %q, want the environment value", cfg.APIToken)
	}
	if !cfg.RequireLogin {
		t.Fatalf("RequireLogin = false, want true from .env")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("api_url = ["), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := load(path, ""); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("load error = %v, want parse config error", err)
	}
}

func TestExpandPath_Tilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/data")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "data") {
		t.Fatalf("expandPath = %q, want %q", got, filepath.Join(home, "data"))
	}
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath(blank) returned nil error")
	}
}
