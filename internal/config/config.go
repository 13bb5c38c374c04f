// Package config provides kvsearch tool configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable, e.g. KVSEARCH_STORE_URL.
const EnvPrefix = "KVSEARCH"

// Default values. Struct tag defaults in EnvConfig must match these.
const (
	DefaultStoreURL  = "mem://"
	DefaultPrefix    = "search_cache"
	DefaultIDField   = "id"
	DefaultLogLevel  = "INFO"
	DefaultLogFormat = LogFormatPretty
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// EnvConfig holds environment-based configuration.
type EnvConfig struct {
	// StoreURL selects the key-value store (redis://, bolt://, sqlite://, mem://).
	// Env: KVSEARCH_STORE_URL (default: mem://)
	StoreURL string `envconfig:"STORE_URL" default:"mem://"`

	// Prefix is the key namespace.
	// Env: KVSEARCH_PREFIX (default: search_cache)
	Prefix string `envconfig:"PREFIX" default:"search_cache"`

	// IDField is the record field holding the identifier.
	// Env: KVSEARCH_ID_FIELD (default: id)
	IDField string `envconfig:"ID_FIELD" default:"id"`

	// LogLevel is the log verbosity level.
	// Env: KVSEARCH_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: KVSEARCH_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
}

// LoadFromEnv loads configuration from KVSEARCH_* environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads environment variables from a .env file.
// If path is empty, it loads from ".env" in the current directory.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// LoadConfig loads the optional .env file, then the environment.
// Variables already set in the environment win over the file.
func LoadConfig(envPath string) (AppConfig, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return AppConfig{}, err
	}
	envCfg, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, err
	}
	return envCfg.ToAppConfig()
}

// ToAppConfig validates and converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() (AppConfig, error) {
	format := LogFormat(strings.ToLower(e.LogFormat))
	switch format {
	case LogFormatPretty, LogFormatJSON:
	default:
		return AppConfig{}, fmt.Errorf("invalid log format %q", e.LogFormat)
	}
	if strings.TrimSpace(e.StoreURL) == "" {
		return AppConfig{}, fmt.Errorf("store URL is required")
	}
	cfg := NewAppConfigWithOptions(
		WithStoreURL(e.StoreURL),
		WithPrefix(e.Prefix),
		WithIDField(e.IDField),
		WithLogLevel(e.LogLevel),
		WithLogFormat(format),
	)
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks values that can also come from command line flags.
func (c AppConfig) Validate() error {
	if strings.ContainsAny(c.prefix, `*?[]\`) {
		return fmt.Errorf("prefix %q contains glob metacharacters", c.prefix)
	}
	return nil
}

// AppConfig is the validated, immutable configuration.
type AppConfig struct {
	storeURL  string
	prefix    string
	idField   string
	logLevel  string
	logFormat LogFormat
}

// NewAppConfig returns a configuration with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		storeURL:  DefaultStoreURL,
		prefix:    DefaultPrefix,
		idField:   DefaultIDField,
		logLevel:  DefaultLogLevel,
		logFormat: DefaultLogFormat,
	}
}

// Option modifies an AppConfig.
type Option func(*AppConfig)

// NewAppConfigWithOptions returns the defaults with opts applied.
func NewAppConfigWithOptions(opts ...Option) AppConfig {
	cfg := NewAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithStoreURL sets the store URL.
func WithStoreURL(u string) Option {
	return func(c *AppConfig) {
		if u != "" {
			c.storeURL = u
		}
	}
}

// WithPrefix sets the key namespace.
func WithPrefix(p string) Option {
	return func(c *AppConfig) {
		if p != "" {
			c.prefix = p
		}
	}
}

// WithIDField sets the identifier field.
func WithIDField(f string) Option {
	return func(c *AppConfig) {
		if f != "" {
			c.idField = f
		}
	}
}

// WithLogLevel sets the log level.
func WithLogLevel(l string) Option {
	return func(c *AppConfig) {
		if l != "" {
			c.logLevel = l
		}
	}
}

// WithLogFormat sets the log format.
func WithLogFormat(f LogFormat) Option {
	return func(c *AppConfig) {
		if f != "" {
			c.logFormat = f
		}
	}
}

// StoreURL returns the store URL.
func (c AppConfig) StoreURL() string { return c.storeURL }

// Prefix returns the key namespace.
func (c AppConfig) Prefix() string { return c.prefix }

// IDField returns the identifier field.
func (c AppConfig) IDField() string { return c.idField }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }
