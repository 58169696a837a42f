// Package config provides configuration loading and validation for the API
// server. It uses koanf to merge environment variables with optional file
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database
	DatabaseURL string `koanf:"database_url"`

	// Redis (daily swipe counter cache). Optional; the counter is
	// derived from rows when absent.
	RedisURL string `koanf:"redis_url"`

	// Elasticsearch (semantic vacancy retrieval). Optional; ranking
	// falls back to recency retrieval when unset.
	ElasticsearchAddresses []string `koanf:"elasticsearch_addresses"`
	ElasticsearchUsername  string   `koanf:"elasticsearch_username"`
	ElasticsearchPassword  string   `koanf:"elasticsearch_password"`
	VacancyIndex           string   `koanf:"vacancy_index"`

	// AWS SNS (match notifications). Optional; notifications fall back
	// to log-only when the topic is unset.
	AWSRegion   string `koanf:"aws_region"`
	SNSTopicARN string `koanf:"sns_topic_arn"`

	// OpenAI (conversation greeting). Optional; a static greeting is
	// used when unset.
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// Swipe limits
	DailySwipeCap int `koanf:"daily_swipe_cap"`

	// SLA recompute cycle in seconds
	SLARecomputeIntervalSeconds int `koanf:"sla_recompute_interval_seconds"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrInvalidPort        = errors.New("PORT must be a valid integer")
	ErrInvalidSwipeCap    = errors.New("DAILY_SWIPE_CAP must be positive")
)

// Default values for non-secret configuration.
const (
	DefaultPort                        = 8080
	DefaultEnv                         = "development"
	DefaultAWSRegion                   = "eu-west-1"
	DefaultDailySwipeCap               = 50
	DefaultSLARecomputeIntervalSeconds = 60
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if
// valid).
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefault("PORT", k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	swipeCap, capErr := getEnvIntOrDefault("DAILY_SWIPE_CAP", k.Int("daily_swipe_cap"), DefaultDailySwipeCap)
	if capErr != nil {
		loadErrs = append(loadErrs, capErr)
	}

	slaInterval, slaErr := getEnvIntOrDefault("SLA_RECOMPUTE_INTERVAL_SECONDS",
		k.Int("sla_recompute_interval_seconds"), DefaultSLARecomputeIntervalSeconds)
	if slaErr != nil {
		loadErrs = append(loadErrs, slaErr)
	}

	cfg := &Config{
		Port:                        port,
		Env:                         getEnvOrDefault("ENV", k.String("env"), DefaultEnv),
		DatabaseURL:                 getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:                    getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		ElasticsearchAddresses:      getEnvListOrKoanf("ELASTICSEARCH_ADDRESSES", k, "elasticsearch_addresses"),
		ElasticsearchUsername:       getEnvOrKoanf("ELASTICSEARCH_USERNAME", k, "elasticsearch_username"),
		ElasticsearchPassword:       getEnvOrKoanf("ELASTICSEARCH_PASSWORD", k, "elasticsearch_password"),
		VacancyIndex:                getEnvOrKoanf("VACANCY_INDEX", k, "vacancy_index"),
		AWSRegion:                   getEnvOrDefault("AWS_REGION", k.String("aws_region"), DefaultAWSRegion),
		SNSTopicARN:                 getEnvOrKoanf("SNS_TOPIC_ARN", k, "sns_topic_arn"),
		OpenAIAPIKey:                getEnvOrKoanf("OPENAI_API_KEY", k, "openai_api_key"),
		DailySwipeCap:               swipeCap,
		SLARecomputeIntervalSeconds: slaInterval,
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.DailySwipeCap <= 0 {
		errs = append(errs, ErrInvalidSwipeCap)
	}

	return errs
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// getEnvOrKoanf returns the environment variable value if set, otherwise
// the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvListOrKoanf returns the environment variable split on commas if
// set, otherwise the koanf string slice.
func getEnvListOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) []string {
	if val := os.Getenv(envKey); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	return k.Strings(koanfKey)
}

// getEnvIntOrDefault returns the environment variable as int if set,
// otherwise the koanf value, or default. Returns an error if the
// environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, ErrInvalidPort)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}
