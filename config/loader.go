// =============================================================================
// Agentline configuration loader
// =============================================================================
// Unified configuration loading: defaults, then a YAML file, then
// environment variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("agentline.yaml").
//	    WithEnvPrefix("AGENTLINE").
//	    Load()
//
// Precedence: defaults -> YAML file -> environment variables.
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/agentline/llm"
	"github.com/BaSui01/agentline/llm/cache"
)

// Config is the complete agentline configuration.
type Config struct {
	// Engine holds runner limits and tracing.
	Engine EngineConfig `yaml:"engine" env:"ENGINE"`

	// LLM configures the chat client shared through the Ctx.
	LLM llm.Config `yaml:"llm" env:"LLM"`

	// Cache configures response caching for the LLM client.
	Cache CacheConfig `yaml:"cache" env:"CACHE"`

	// History configures run history recording.
	History HistoryConfig `yaml:"history" env:"HISTORY"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry configures metrics and tracing export.
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// EngineConfig holds runner-level settings.
type EngineConfig struct {
	// MaxSteps caps total agent invocations per run.
	MaxSteps int `yaml:"max_steps" env:"MAX_STEPS"`
	// MaxRetries caps consecutive Retry outcomes per agent.
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
	// Tracing installs stderr trace hooks on runners built from this config.
	Tracing bool `yaml:"tracing" env:"TRACING"`
}

// CacheConfig selects and tunes the LLM response cache.
type CacheConfig struct {
	// Enabled turns response caching on.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Backend is "memory" or "redis".
	Backend string `yaml:"backend" env:"BACKEND"`
	// TTL is how long cached responses live. Zero means no expiry.
	TTL time.Duration `yaml:"ttl" env:"TTL"`
	// Redis holds connection settings when Backend is "redis".
	Redis cache.RedisConfig `yaml:"redis" env:"REDIS"`
}

// HistoryConfig selects the run history store.
type HistoryConfig struct {
	// Enabled turns run history recording on.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend" env:"BACKEND"`
	// Path is the SQLite database file. ":memory:" keeps it in-process.
	Path string `yaml:"path" env:"PATH"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is "json" or "console".
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths lists zap sink URLs or file paths.
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// EnableCaller annotates entries with the call site.
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// EnableStacktrace attaches stack traces to error entries.
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig controls metrics and tracing export.
type TelemetryConfig struct {
	// Enabled turns OTLP export on.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLPEndpoint is the collector address, host:port.
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// ServiceName identifies this process in traces and metrics.
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// SampleRate is the trace sampling ratio in [0, 1].
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
	// MetricsPort serves the Prometheus scrape endpoint when positive.
	MetricsPort int `yaml:"metrics_port" env:"METRICS_PORT"`
}

// Loader loads configuration with the builder pattern.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a loader with the AGENTLINE env prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "AGENTLINE",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML file to load. A missing file is not an
// error; defaults and env vars still apply.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix overrides the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a validation function run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load resolves the configuration. Precedence: defaults, then the YAML
// file, then environment variables.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv walks the struct recursively, composing env keys from
// the prefix and each field's env tag.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads configuration from path and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv loads configuration from defaults and environment only.
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate checks the configuration for inconsistent values, collecting
// every problem before reporting.
func (c *Config) Validate() error {
	var errs []string

	if c.Engine.MaxSteps < 0 {
		errs = append(errs, "engine.max_steps must not be negative")
	}
	if c.Engine.MaxRetries < 0 {
		errs = append(errs, "engine.max_retries must not be negative")
	}
	if c.Cache.Enabled && c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		errs = append(errs, fmt.Sprintf("cache.backend %q is not supported", c.Cache.Backend))
	}
	if c.History.Enabled && c.History.Backend != "memory" && c.History.Backend != "sqlite" {
		errs = append(errs, fmt.Sprintf("history.backend %q is not supported", c.History.Backend))
	}
	if c.History.Enabled && c.History.Backend == "sqlite" && c.History.Path == "" {
		errs = append(errs, "history.path is required for the sqlite backend")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry.sample_rate must be between 0 and 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
