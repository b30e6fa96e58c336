package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. LOGPARTS_SERVER_PORT
const EnvPrefix = "LOGPARTS"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Search    SearchConfig    `mapstructure:"search"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects the product repository backend
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // "sqlite" or "memory"
	Path string `mapstructure:"path"`
	Seed string `mapstructure:"seed"` // catalog file loaded at startup, optional
}

// SearchConfig holds search and suggestion tuning
type SearchConfig struct {
	DefaultLimit        int  `mapstructure:"default_limit"`
	MaxLimit            int  `mapstructure:"max_limit"`
	CandidateMultiplier int  `mapstructure:"candidate_multiplier"`
	MaxCandidates       int  `mapstructure:"max_candidates"`
	CorrectionScanLimit int  `mapstructure:"correction_scan_limit"`
	EnableDebugLogging  bool `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Size    int           `mapstructure:"size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// flagKeys maps command line flag names onto config keys
var flagKeys = map[string]string{
	"port":     "server.port",
	"env":      "server.environment",
	"db-type":  "database.type",
	"db-path":  "database.path",
	"seed":     "database.seed",
	"debug":    "search.enable_debug_logging",
	"no-cache": "cache.enabled",
}

// Load loads configuration from defaults, an optional config file, a .env file,
// environment variables and finally the given flags. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/logparts/")

	// Environment variable settings
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// bindFlags binds the known flags that are present in flags
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if name == "no-cache" {
			// inverted: only an explicit --no-cache turns the cache off
			if f.Changed && f.Value.String() == "true" {
				v.Set(key, false)
			}
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "logparts.db")
	v.SetDefault("database.seed", "")

	// Search defaults
	v.SetDefault("search.default_limit", 20)
	v.SetDefault("search.max_limit", 100)
	v.SetDefault("search.candidate_multiplier", 2)
	v.SetDefault("search.max_candidates", 500)
	v.SetDefault("search.correction_scan_limit", 1000)
	v.SetDefault("search.enable_debug_logging", false)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.ttl", "5m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required (set %s_SERVER_PORT)", EnvPrefix)
	}

	switch config.Database.Type {
	case "memory":
	case "sqlite":
		if config.Database.Path == "" {
			return fmt.Errorf("database path is required when database type is 'sqlite'")
		}
	default:
		return fmt.Errorf("database type must be 'sqlite' or 'memory', got: %s", config.Database.Type)
	}

	if config.Search.DefaultLimit <= 0 || config.Search.MaxLimit <= 0 {
		return fmt.Errorf("search limits must be positive")
	}
	if config.Search.DefaultLimit > config.Search.MaxLimit {
		return fmt.Errorf("search default_limit %d exceeds max_limit %d", config.Search.DefaultLimit, config.Search.MaxLimit)
	}

	if config.Cache.Enabled && (config.Cache.Size <= 0 || config.Cache.TTL <= 0) {
		return fmt.Errorf("cache size and ttl must be positive when the cache is enabled")
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	return nil
}

// loadEnvFile exports KEY=value pairs from ./.env without overriding variables that
// are already set. A missing file is not an error.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}
