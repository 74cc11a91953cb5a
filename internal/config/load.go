package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables. Every setting has a
// default, so the process starts with no environment at all; environment
// variables (API_PORT, WORKER_CONCURRENCY, QUEUE_BACKEND, ...) override
// the defaults. Returns a populated Config or an error when a value fails
// validation.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults mirror the reference deployment: 100 cooperative workers,
	// 300s per-task deadline, in-memory queue.
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.log_level", "info")
	v.SetDefault("queue.backend", "memory")
	v.SetDefault("queue.redis_url", "")
	v.SetDefault("worker.concurrency", 100)
	v.SetDefault("worker.timeout", 300)
	v.SetDefault("worker.daily_task_cron", "")
	v.SetDefault("database.url", "")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)

	// Map nested keys onto flat environment variables: "worker.concurrency"
	// is overridden by WORKER_CONCURRENCY, "api.port" by API_PORT, etc.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
