package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"api"      validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue"    validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains the HTTP listener settings.
type ServerConfig struct {
	Host     string `mapstructure:"host"      validate:"required"`
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// QueueConfig selects the task queue backend. Only "memory" is implemented;
// other values fall back to memory with a warning at startup.
type QueueConfig struct {
	Backend string `mapstructure:"backend" validate:"required"`

	// RedisURL is recognized but unused until a redis backend exists.
	RedisURL string `mapstructure:"redis_url"`
}

// WorkerConfig contains the worker pool settings.
type WorkerConfig struct {
	// Concurrency is the number of concurrent worker loops.
	Concurrency int `mapstructure:"concurrency" validate:"required,gt=0"`

	// TimeoutSeconds is the hard per-task execution deadline.
	TimeoutSeconds int `mapstructure:"timeout" validate:"required,gt=0"`

	// DailyTaskCron schedules automatic daily_task_generator enqueues.
	// Empty disables the scheduler.
	DailyTaskCron string `mapstructure:"daily_task_cron"`
}

// DatabaseConfig contains the document store settings. The URL may be empty
// when the process runs without the analysis handlers (e.g. in tests).
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// LLMConfig contains the LLM integration settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`

	// MaxRetries bounds retry attempts for transient API failures.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`
}
