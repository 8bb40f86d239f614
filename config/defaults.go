// =============================================================================
// Agentline default configuration
// =============================================================================
// Reasonable defaults for every configuration section.
// =============================================================================
package config

import (
	"time"

	"github.com/BaSui01/agentline/llm"
	"github.com/BaSui01/agentline/llm/cache"
)

// DefaultConfig returns the full default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine:    DefaultEngineConfig(),
		LLM:       llm.DefaultConfig(),
		Cache:     DefaultCacheConfig(),
		History:   DefaultHistoryConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultEngineConfig returns the default runner limits.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxSteps:   10_000,
		MaxRetries: 3,
		Tracing:    false,
	}
}

// DefaultCacheConfig returns an in-memory cache kept disabled.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: false,
		Backend: "memory",
		TTL:     15 * time.Minute,
		Redis:   cache.DefaultRedisConfig(),
	}
}

// DefaultHistoryConfig returns an in-memory history kept disabled.
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Enabled: false,
		Backend: "memory",
		Path:    "agentline.db",
	}
}

// DefaultLogConfig returns JSON logging at info level to stderr.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns telemetry kept disabled.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "agentline",
		SampleRate:   1.0,
		MetricsPort:  0,
	}
}
