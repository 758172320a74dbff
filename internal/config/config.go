// Package config loads runtime configuration from listsmith.yaml plus
// environment overrides (LISTSMITH_LLM_API_KEY and friends), with a .env file
// picked up when present.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

// LLMConfig configures the generative backend client.
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

// BatchConfig configures one orchestration run.
type BatchConfig struct {
	Deadline        time.Duration `mapstructure:"deadline"`
	ConfidenceFloor float64       `mapstructure:"confidence_floor"`
	SkipReview      bool          `mapstructure:"skip_review"`
}

// SessionConfig selects and tunes the session store.
type SessionConfig struct {
	// Store is "memory" or "redis".
	Store string        `mapstructure:"store"`
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

// RedisConfig configures the redis-backed session store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads listsmith.yaml from path (or the working directory when path is
// empty), merges environment overrides, and applies defaults. A missing
// config file is not an error.
func Load(path string) (*Config, error) {
	// Best effort; absence of a .env file is normal.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("listsmith")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("listsmith")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	// Empty defaults register the keys so AutomaticEnv overrides reach
	// Unmarshal even without a config file entry.
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("batch.deadline", "120s")
	v.SetDefault("batch.confidence_floor", 0.5)
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.redis.addr", "localhost:6379")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func validate(cfg *Config) error {
	if cfg.Batch.Deadline <= 0 {
		return fmt.Errorf("batch.deadline must be positive, got %s", cfg.Batch.Deadline)
	}
	if cfg.Batch.ConfidenceFloor < 0 || cfg.Batch.ConfidenceFloor > 1 {
		return fmt.Errorf("batch.confidence_floor must be within [0,1], got %g", cfg.Batch.ConfidenceFloor)
	}
	switch cfg.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("session.store must be memory or redis, got %q", cfg.Session.Store)
	}
	return nil
}
