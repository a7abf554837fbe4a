// Package config handles the XDG configuration directory, the config file
// and environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "todolists"

	// ConfigFile is the settings filename inside the config directory.
	ConfigFile = "config.yaml"

	// EnvFile is an optional dotenv file inside the config directory.
	EnvFile = ".env"

	// EnvPrefix prefixes environment overrides (TODOLISTS_SERVER, ...).
	EnvPrefix = "TODOLISTS"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored Google OAuth token filename.
	TokenFile = "token.json"
)

// Defaults for remote store settings.
const (
	DefaultServer          = "http://localhost:8080"
	DefaultNetwork         = "todo"
	DefaultLedger          = "lists"
	DefaultTimeout         = 5 * time.Second
	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = 30 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Server is the remote store origin, e.g. http://localhost:8080.
	Server string

	// Network and Ledger select the ledger under /fdb/{network}/{ledger}.
	Network string
	Ledger  string

	// Timeout bounds every remote call.
	Timeout time.Duration

	// Token is an optional bearer token for the remote store.
	Token string

	// LogFile, when set, receives a copy of all log output (rotated).
	LogFile string

	// BreakerFailures is the number of consecutive unavailability failures
	// that opens the circuit breaker.
	BreakerFailures uint32

	// BreakerCooldown is how long the breaker stays open.
	BreakerCooldown time.Duration
}

// New creates a new Config with the default or specified config directory
// and default remote store settings. It does not read any file.
// If configDir is empty, uses XDG_CONFIG_HOME/todolists or $HOME/.config/todolists.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:             dir,
		Server:          DefaultServer,
		Network:         DefaultNetwork,
		Ledger:          DefaultLedger,
		Timeout:         DefaultTimeout,
		BreakerFailures: DefaultBreakerFailures,
		BreakerCooldown: DefaultBreakerCooldown,
	}, nil
}

// Load creates a Config like New and then applies, in increasing priority,
// config.yaml from the config directory, the optional .env file and
// TODOLISTS_* environment variables.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	// .env only fills variables that are not already set.
	envPath := filepath.Join(cfg.Dir, EnvFile)
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envPath, err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(cfg.Dir, ConfigFile))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server", cfg.Server)
	v.SetDefault("network", cfg.Network)
	v.SetDefault("ledger", cfg.Ledger)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("token", "")
	v.SetDefault("log_file", "")
	v.SetDefault("breaker.failures", cfg.BreakerFailures)
	v.SetDefault("breaker.cooldown", cfg.BreakerCooldown)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
		}
	}

	cfg.Server = strings.TrimRight(v.GetString("server"), "/")
	cfg.Network = v.GetString("network")
	cfg.Ledger = v.GetString("ledger")
	cfg.Timeout = v.GetDuration("timeout")
	cfg.Token = v.GetString("token")
	cfg.LogFile = v.GetString("log_file")
	cfg.BreakerFailures = v.GetUint32("breaker.failures")
	cfg.BreakerCooldown = v.GetDuration("breaker.cooldown")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the remote store settings.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url: %q", c.Server)
	}
	if strings.TrimSpace(c.Network) == "" || strings.TrimSpace(c.Ledger) == "" {
		return fmt.Errorf("network and ledger must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %s", c.Timeout)
	}
	return nil
}

// BaseURL returns the ledger endpoint prefix: {server}/fdb/{network}/{ledger}.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("%s/fdb/%s/%s", strings.TrimRight(c.Server, "/"), c.Network, c.Ledger)
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored Google OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
