// Package config provides configuration management for the application.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/magnetarr/magnetarr/internal/constants"
)

const (
	// Default configuration file name
	defaultConfigFile = "config.json"
	// Default database path
	defaultDatabasePath = "./magnetarr.db"
)

// Config holds the application configuration.
// It supports loading from environment variables and JSON files.
type Config struct {
	// Network
	Port     string `json:"PORT"`
	RelayURL string `json:"RELAY_URL"`

	// Credentials (sensitive; never logged in plaintext)
	APIKeyDebrid string `json:"API_KEY_DEBRID"`
	YGGPasskey   string `json:"YGG_PASSKEY"`

	// Search behavior
	ProviderOrder []string `json:"PROVIDER_ORDER"`
	// AccumulateProviders keeps querying later providers after a first
	// non-empty result set so cross-provider dedup can widen the choice.
	AccumulateProviders bool `json:"ACCUMULATE_PROVIDERS"`
	MaxResults          int  `json:"MAX_RESULTS"`

	// Storage settings
	DatabasePath string        `json:"DATABASE_PATH"`
	CacheSize    int           `json:"CACHE_SIZE"`
	CacheTTL     time.Duration `json:"-"`
	CacheTTLMin  int           `json:"CACHE_TTL_MINUTES"`

	// Debug toggles verbose logging
	Debug bool `json:"DEBUG"`

	// Internal lookup set for fast provider membership checks
	providerSet map[string]bool
	setOnce     sync.Once
}

// Load reads configuration from environment variables and an optional JSON
// file. Environment variables take precedence over file values.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                constants.DefaultPort,
		ProviderOrder:       append([]string{}, constants.DefaultProviderOrder...),
		AccumulateProviders: true,
		MaxResults:          constants.DefaultMaxResults,
		CacheSize:           constants.DefaultCacheSize,
		CacheTTLMin:         constants.DefaultCacheTTLMinutes,
		DatabasePath:        getEnvOrDefault("DATABASE_PATH", defaultDatabasePath),
	}

	configFile := getEnvOrDefault("CONFIG_FILE", defaultConfigFile)
	if err := cfg.loadFromFile(configFile); err != nil {
		// Ignore file not found errors
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.InitLookups()

	return cfg, nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Port = port
	}
	if relay := os.Getenv("RELAY_URL"); relay != "" {
		c.RelayURL = relay
	}
	if key := os.Getenv("API_KEY_DEBRID"); key != "" {
		c.APIKeyDebrid = key
	}
	if passkey := os.Getenv("YGG_PASSKEY"); passkey != "" {
		c.YGGPasskey = passkey
	}
	if order := os.Getenv("PROVIDER_ORDER"); order != "" {
		c.ProviderOrder = splitList(order)
	}
	if v := os.Getenv("ACCUMULATE_PROVIDERS"); v != "" {
		c.AccumulateProviders = parseBool(v, c.AccumulateProviders)
	}
	if v := os.Getenv("MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxResults = n
		}
	}
	if v := os.Getenv("CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.CacheSize = n
		}
	}
	if v := os.Getenv("CACHE_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.CacheTTLMin = n
		}
	}
	if v := os.Getenv("DEBUG"); v != "" {
		c.Debug = parseBool(v, c.Debug)
	}
}

// loadFromFile loads configuration from a JSON file.
func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, c)
}

// Validate checks the configuration and fills derived fields.
// The debrid API key is optional at startup; acquisition operations report a
// validation error when it is missing at use time.
func (c *Config) Validate() error {
	if len(c.ProviderOrder) == 0 {
		c.ProviderOrder = append([]string{}, constants.DefaultProviderOrder...)
	}
	for _, name := range c.ProviderOrder {
		if !isKnownProvider(name) {
			return fmt.Errorf("unknown provider in PROVIDER_ORDER: %s", name)
		}
	}

	if c.CacheSize <= 0 {
		c.CacheSize = constants.DefaultCacheSize
	}
	if c.CacheTTLMin <= 0 {
		c.CacheTTLMin = constants.DefaultCacheTTLMinutes
	}
	c.CacheTTL = time.Duration(c.CacheTTLMin) * time.Minute

	if c.MaxResults <= 0 {
		c.MaxResults = constants.DefaultMaxResults
	}

	return nil
}

// InitLookups initializes internal lookup structures.
// This method is idempotent and thread-safe; re-invocation is a no-op.
func (c *Config) InitLookups() {
	c.setOnce.Do(func() {
		c.providerSet = make(map[string]bool, len(c.ProviderOrder))
		for _, name := range c.ProviderOrder {
			c.providerSet[strings.ToLower(name)] = true
		}
	})
}

// ProviderEnabled reports whether a provider participates in the failover
// sequence.
func (c *Config) ProviderEnabled(name string) bool {
	c.InitLookups()
	return c.providerSet[strings.ToLower(name)]
}

func isKnownProvider(name string) bool {
	switch strings.ToLower(name) {
	case constants.ProviderApiBay, constants.ProviderTorrentsCSV,
		constants.ProviderEZTV, constants.ProviderYGG:
		return true
	}
	return false
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, strings.ToLower(trimmed))
		}
	}
	return result
}

func parseBool(value string, fallback bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
