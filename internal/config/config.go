// Package config loads command configuration from a file, INPLACE_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZaguanLabs/inplace"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. INPLACE_RELAY_MODE.
const EnvPrefix = "INPLACE"

// Relay modes.
const (
	RelayLocal  = "local"
	RelayHTTP   = "http"
	RelayLambda = "lambda"
)

// Cache types.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
)

// Config is the full command configuration.
type Config struct {
	Service    string         `mapstructure:"service"`
	Credential string         `mapstructure:"credential"`
	Selector   string         `mapstructure:"selector"`
	TargetLang string         `mapstructure:"target_lang"`
	Relay      RelayConfig    `mapstructure:"relay"`
	Backends   BackendsConfig `mapstructure:"backends"`
	Cache      CacheConfig    `mapstructure:"cache"`
	Retry      RetryConfig    `mapstructure:"retry"`
	Log        LogConfig      `mapstructure:"log"`
}

// RelayConfig selects and configures the dispatch channel.
type RelayConfig struct {
	Mode     string        `mapstructure:"mode"`
	URL      string        `mapstructure:"url"`
	Function string        `mapstructure:"function"`
	Listen   string        `mapstructure:"listen"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// BackendsConfig configures the relay backends. A backend is registered
// only when its required settings are present.
type BackendsConfig struct {
	Tencent TencentConfig `mapstructure:"tencent"`
	Google  GoogleConfig  `mapstructure:"google"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
}

// TencentConfig holds the Tencent Machine Translation credentials. Endpoint
// may be a host or a URL.
type TencentConfig struct {
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
}

// GoogleConfig enables Google Cloud Translation. Without an API key or a
// credentials file the client falls back to application default credentials.
type GoogleConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api_key"`
	Credentials string `mapstructure:"credentials"`
}

// OpenAIConfig enables the completions backend. The API key arrives with
// each request body.
type OpenAIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig configures the relay reply cache.
type CacheConfig struct {
	Type      string        `mapstructure:"type"`
	TTL       time.Duration `mapstructure:"ttl"`
	RedisURL  string        `mapstructure:"redis_url"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Path      string        `mapstructure:"path"`
	File      string        `mapstructure:"file"`
}

// RetryConfig bounds the relay's exponential backoff for retryable backend
// errors.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
}

// LogConfig selects the zap logger level and encoder.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"service":    "service",
	"credential": "credential",
	"selector":   "selector",
	"lang":       "target_lang",
	"relay":      "relay.mode",
	"relay-url":  "relay.url",
	"function":   "relay.function",
	"listen":     "relay.listen",
	"timeout":    "relay.timeout",
	"cache":      "cache.type",
	"cache-ttl":  "cache.ttl",
	"cache-file": "cache.file",
	"log-level":  "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service", string(inplace.ServiceGoogle))
	v.SetDefault("credential", "")
	v.SetDefault("selector", inplace.DefaultSelector)
	v.SetDefault("target_lang", inplace.DefaultTargetLang)

	v.SetDefault("relay.mode", RelayLocal)
	v.SetDefault("relay.url", "http://localhost:8787/")
	v.SetDefault("relay.function", "")
	v.SetDefault("relay.listen", ":8787")
	v.SetDefault("relay.timeout", 60*time.Second)

	v.SetDefault("backends.tencent.secret_id", "")
	v.SetDefault("backends.tencent.secret_key", "")
	v.SetDefault("backends.tencent.region", "")
	v.SetDefault("backends.tencent.endpoint", "")
	v.SetDefault("backends.google.enabled", true)
	v.SetDefault("backends.google.api_key", "")
	v.SetDefault("backends.google.credentials", "")
	v.SetDefault("backends.openai.enabled", true)
	v.SetDefault("backends.openai.model", "")
	v.SetDefault("backends.openai.base_url", "")

	v.SetDefault("cache.type", CacheMemory)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.key_prefix", "")
	v.SetDefault("cache.path", "inplace-cache.db")
	v.SetDefault("cache.file", "")

	retry := inplace.DefaultRetryConfig()
	v.SetDefault("retry.max_retries", retry.MaxRetries)
	v.SetDefault("retry.base_delay", retry.BaseDelay)
	v.SetDefault("retry.max_delay", retry.MaxDelay)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", false)
}

// Load reads configuration. path may be empty; flags may be nil. Only flags
// the user actually set override file and environment values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error

	if _, err := inplace.ParseServiceID(c.Service); err != nil {
		errs = append(errs, err)
	}

	switch c.Relay.Mode {
	case RelayLocal, RelayHTTP:
	case RelayLambda:
		if c.Relay.Function == "" {
			errs = append(errs, &inplace.ConfigError{Message: "relay.function is required in lambda mode"})
		}
	default:
		errs = append(errs, &inplace.ConfigError{Message: "unknown relay mode " + c.Relay.Mode})
	}

	switch c.Cache.Type {
	case CacheNone, CacheMemory, CacheRedis, CacheSQLite:
	default:
		errs = append(errs, &inplace.ConfigError{Message: "unknown cache type " + c.Cache.Type})
	}

	if c.Retry.MaxRetries < 0 {
		errs = append(errs, &inplace.ConfigError{Message: "retry.max_retries must not be negative"})
	}

	return errors.Join(errs...)
}

// ServiceID returns the validated service identifier.
func (c *Config) ServiceID() inplace.ServiceID {
	id, _ := inplace.ParseServiceID(c.Service)
	return id
}

// RetryPolicy converts the retry section.
func (c *Config) RetryPolicy() inplace.RetryConfig {
	return inplace.RetryConfig{
		MaxRetries: c.Retry.MaxRetries,
		BaseDelay:  c.Retry.BaseDelay,
		MaxDelay:   c.Retry.MaxDelay,
	}
}
