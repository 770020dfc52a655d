// Package config loads cijene's configuration.
//
// # Sources
//
// Values are resolved in this order, later sources winning:
//
//  1. Built-in defaults
//  2. The TOML file (~/.config/cijene/config.toml unless a path is given)
//  3. A .env file in the working directory
//  4. The process environment
//
// A missing config file is not an error. Empty or whitespace-only values fall
// back to defaults, and tilde paths are expanded.
//
// # TOML Format
//
//	api_url = "https://cijene.searxngmate.tk"
//	api_token = "..."
//	timeout_seconds = 10
//	download_timeout_seconds = 30
//	retry_attempts = 3
//	retry_delay_ms = 1000
//	requests_per_second = 0
//	data_dir = "~/.local/share/cijene"
//	log_level = "info"
//	require_login = false
//	poll_interval_seconds = 300
//	default_lat = 45.815
//	default_lon = 15.9819
//	default_city = "Zagreb"
//
// # Environment
//
// CIJENE_API_URL, CIJENE_API_TOKEN, CIJENE_LOG_LEVEL and CIJENE_REQUIRE_LOGIN
// override the matching file keys. The API token is a single static bearer
// credential shared by every request; local accounts never change it.
package config
