// Package config loads environment-based configuration for the Wahoo
// MCP server and the auth helper.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrTokenFileRequired reports a missing WAHOO_TOKEN_FILE. The auth
// helper matches on it to print setup guidance instead of a bare error.
var ErrTokenFileRequired = errors.New("WAHOO_TOKEN_FILE is required")

// Config holds all environment-based configuration.
type Config struct {
	// Path of the JSON file holding OAuth tokens. Required: both the MCP
	// server and the auth helper read and write it.
	TokenFile string `env:"WAHOO_TOKEN_FILE"`

	// OAuth application credentials. The MCP server needs ClientID to
	// refresh tokens; the auth helper prompts for missing values
	// interactively. ClientSecret is empty for public PKCE clients.
	ClientID     string `env:"WAHOO_CLIENT_ID"`
	ClientSecret string `env:"WAHOO_CLIENT_SECRET"`

	// Wahoo Cloud endpoints.
	APIURL   string `env:"WAHOO_API_URL" envDefault:"https://api.wahooligan.com"`
	AuthURL  string `env:"WAHOO_AUTH_URL" envDefault:"https://api.wahooligan.com/oauth/authorize"`
	TokenURL string `env:"WAHOO_TOKEN_URL" envDefault:"https://api.wahooligan.com/oauth/token"`

	// Bind address for the auth helper's callback server.
	AuthHost string `env:"WAHOO_AUTH_HOST" envDefault:"localhost"`
	AuthPort int    `env:"WAHOO_AUTH_PORT" envDefault:"8080"`

	// Redirect URI pieces advertised to the OAuth provider. Host and port
	// default to the auth bind address; they differ when a proxy or
	// tunnel fronts the callback server.
	RedirectHost   string `env:"WAHOO_REDIRECT_HOST"`
	RedirectPort   int    `env:"WAHOO_REDIRECT_PORT"`
	RedirectScheme string `env:"WAHOO_REDIRECT_SCHEME" envDefault:"http"`

	// Timeout for Wahoo API requests.
	HTTPTimeout time.Duration `env:"WAHOO_HTTP_TIMEOUT" envDefault:"30s"`

	// Path of the bbolt cache for FIT analyses. Empty disables caching.
	FITCachePath string `env:"WAHOO_FIT_CACHE"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// Listen address for the MCP server's HTTP transport (--http mode).
	MCPListenAddr string `env:"MCP_LISTEN_ADDR" envDefault:":8090"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.RedirectHost == "" {
		cfg.RedirectHost = cfg.AuthHost
	}

	if cfg.RedirectPort == 0 {
		cfg.RedirectPort = cfg.AuthPort
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	// Resolve file paths to absolute at startup. MCP hosts launch the
	// server with an arbitrary working directory, and the process keeps
	// using these paths long after any chdir.
	absToken, err := filepath.Abs(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("resolving token file to absolute path: %w", err)
	}

	cfg.TokenFile = absToken

	if cfg.FITCachePath != "" {
		absCache, err := filepath.Abs(cfg.FITCachePath)
		if err != nil {
			return nil, fmt.Errorf("resolving FIT cache to absolute path: %w", err)
		}

		cfg.FITCachePath = absCache
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.TokenFile == "" {
		return ErrTokenFileRequired
	}

	if c.RedirectScheme != "http" && c.RedirectScheme != "https" {
		return fmt.Errorf("WAHOO_REDIRECT_SCHEME must be http or https, got %q", c.RedirectScheme)
	}

	if c.AuthPort < 1 || c.AuthPort > 65535 {
		return fmt.Errorf("WAHOO_AUTH_PORT must be between 1 and 65535, got %d", c.AuthPort)
	}

	if c.RedirectPort < 1 || c.RedirectPort > 65535 {
		return fmt.Errorf("WAHOO_REDIRECT_PORT must be between 1 and 65535, got %d", c.RedirectPort)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("WAHOO_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}

	return nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
