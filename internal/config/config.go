// Package config loads service and CLI settings from defaults, an optional
// config file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. HRPULSE_SERVER_PORT.
const EnvPrefix = "HRPULSE"

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Model     ModelConfig     `mapstructure:"model"`
	Training  TrainingConfig  `mapstructure:"training"`
	Upload    UploadConfig    `mapstructure:"upload"`
	NLP       NLPConfig       `mapstructure:"nlp"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate-limit"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed-origins"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// DatabaseConfig points at the jobs database.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// ModelConfig locates the model bundle.
type ModelConfig struct {
	Path string `mapstructure:"path"`
	// Required makes serve exit when the bundle cannot be loaded instead of
	// starting unready.
	Required bool `mapstructure:"required"`
}

// TrainingConfig holds the training hyperparameters.
type TrainingConfig struct {
	Input     string  `mapstructure:"input"`
	Trees     int     `mapstructure:"trees"`
	MaxDepth  int     `mapstructure:"max-depth"`
	Seed      int64   `mapstructure:"seed"`
	TestRatio float64 `mapstructure:"test-ratio"`
}

// UploadConfig configures POST /upload.
type UploadConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max-bytes"`
}

// NLPConfig configures the entity-recognition batch job.
type NLPConfig struct {
	APIKey   string        `mapstructure:"api-key"`
	Model    string        `mapstructure:"model"`
	Delay    time.Duration `mapstructure:"delay"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxChars int           `mapstructure:"max-chars"`
	Limit    int           `mapstructure:"limit"`
}

// TracingConfig configures OTLP export. An empty endpoint disables tracing.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service-name"`
}

// LogConfig selects the logger flavour.
type LogConfig struct {
	Debug bool `mapstructure:"debug"`
	JSON  bool `mapstructure:"json"`
}

// RateLimitConfig configures the per-client token buckets.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default-limit"`
	DefaultWindow   time.Duration `mapstructure:"default-window"`
	CleanupInterval time.Duration `mapstructure:"cleanup-interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// Option adjusts the viper instance before the config is decoded.
type Option func(v *viper.Viper)

// WithOverride forces key to value, taking precedence over file and environment.
func WithOverride(key string, value any) Option {
	return func(v *viper.Viper) {
		v.Set(key, value)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed-origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 60*time.Second)
	v.SetDefault("server.idle-timeout", 60*time.Second)
	v.SetDefault("server.shutdown-timeout", 30*time.Second)

	v.SetDefault("database.url", "")

	v.SetDefault("model.path", "models/salary_model.json")
	v.SetDefault("model.required", false)

	v.SetDefault("training.input", "data/cleaned-data.csv")
	v.SetDefault("training.trees", 100)
	v.SetDefault("training.max-depth", 0)
	v.SetDefault("training.seed", 42)
	v.SetDefault("training.test-ratio", 0.2)

	v.SetDefault("upload.dir", "data")
	v.SetDefault("upload.max-bytes", 32<<20)

	v.SetDefault("nlp.api-key", "")
	v.SetDefault("nlp.model", "gemini-2.5-flash-lite")
	v.SetDefault("nlp.delay", time.Second)
	v.SetDefault("nlp.timeout", 30*time.Second)
	v.SetDefault("nlp.max-chars", 1000)
	v.SetDefault("nlp.limit", 100)

	v.SetDefault("tracing.endpoint", "http://localhost:4317")
	v.SetDefault("tracing.service-name", "hr-pulse-backend")

	v.SetDefault("log.debug", false)
	v.SetDefault("log.json", false)

	v.SetDefault("rate-limit.enabled", true)
	v.SetDefault("rate-limit.default-limit", 1000)
	v.SetDefault("rate-limit.default-window", time.Minute)
	v.SetDefault("rate-limit.cleanup-interval", 5*time.Minute)
	v.SetDefault("rate-limit.whitelist", []string{})
	v.SetDefault("rate-limit.blacklist", []string{})
}

// conventional variable names honoured alongside the HRPULSE_ ones
var bindings = map[string][]string{
	"database.url":         {"DATABASE_URL"},
	"nlp.api-key":          {"GEMINI_API_KEY"},
	"tracing.endpoint":     {"OTEL_EXPORTER_OTLP_ENDPOINT"},
	"tracing.service-name": {"OTEL_SERVICE_NAME"},
	"server.port":          {"PORT"},
}

// Load builds the configuration. path may be empty, in which case hrpulse.yaml
// in the working directory is read if present.
func Load(path string, opts ...Option) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, envs := range bindings {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
		if err := v.BindEnv(append([]string{key, prefixed}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("hrpulse")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	for _, opt := range opts {
		opt(v)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks numeric ranges. Values a single command needs, such as the
// database URL, are checked by that command.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("config error: 'upload.max-bytes' must be positive")
	}
	if c.Training.Trees <= 0 {
		return fmt.Errorf("config error: 'training.trees' must be positive")
	}
	if c.Training.MaxDepth < 0 {
		return fmt.Errorf("config error: 'training.max-depth' must be non-negative")
	}
	if c.Training.TestRatio <= 0 || c.Training.TestRatio >= 1 {
		return fmt.Errorf("config error: 'training.test-ratio' must be in (0, 1)")
	}
	if c.NLP.MaxChars <= 0 {
		return fmt.Errorf("config error: 'nlp.max-chars' must be positive")
	}
	if c.NLP.Limit < 0 {
		return fmt.Errorf("config error: 'nlp.limit' must be non-negative")
	}
	if c.NLP.Delay < 0 {
		return fmt.Errorf("config error: 'nlp.delay' must be non-negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.DefaultLimit <= 0 || c.RateLimit.DefaultWindow <= 0) {
		return fmt.Errorf("config error: 'rate-limit' needs a positive default limit and window")
	}
	return nil
}
