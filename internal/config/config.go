package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	SRS       SRSConfig       `yaml:"srs"`
	Study     StudyConfig     `yaml:"study"`
	Placement PlacementConfig `yaml:"placement"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SRSConfig holds FSRS scheduler parameters. The 19 model weights are only
// overridable as a whole: WeightsRaw empty means the reference defaults.
type SRSConfig struct {
	WeightsRaw             string  `yaml:"weights"                  env:"SRS_WEIGHTS"`
	LearningStepsRaw       string  `yaml:"learning_steps"           env:"SRS_LEARNING_STEPS"           env-default:"1m,10m"`
	RelearningStepsRaw     string  `yaml:"relearning_steps"         env:"SRS_RELEARNING_STEPS"         env-default:"10m"`
	GraduatingIntervalGood int     `yaml:"graduating_interval_good" env:"SRS_GRADUATING_INTERVAL_GOOD" env-default:"1"`
	GraduatingIntervalEasy int     `yaml:"graduating_interval_easy" env:"SRS_GRADUATING_INTERVAL_EASY" env-default:"4"`
	MaxIntervalDays        int     `yaml:"max_interval_days"        env:"SRS_MAX_INTERVAL"             env-default:"36500"`
	HardIntervalFactor     float64 `yaml:"hard_interval_factor"     env:"SRS_HARD_INTERVAL_FACTOR"     env-default:"1.2"`

	// Weights is parsed from WeightsRaw during validation; nil means defaults.
	Weights *[19]float64 `yaml:"-" env:"-"`
	// LearningSteps is parsed from LearningStepsRaw during validation.
	LearningSteps []time.Duration `yaml:"-" env:"-"`
	// RelearningSteps is parsed from RelearningStepsRaw during validation.
	RelearningSteps []time.Duration `yaml:"-" env:"-"`
}

// StudyConfig holds study queue composition settings.
type StudyConfig struct {
	BandWidth        float64 `yaml:"band_width"         env:"STUDY_BAND_WIDTH"         env-default:"1.0"`
	DefaultQueueSize int     `yaml:"default_queue_size" env:"STUDY_DEFAULT_QUEUE_SIZE" env-default:"10"`
	MaxQueueSize     int     `yaml:"max_queue_size"     env:"STUDY_MAX_QUEUE_SIZE"     env-default:"50"`
}

// PlacementConfig holds adaptive placement stop-rule settings.
type PlacementConfig struct {
	MinItems int     `yaml:"min_items" env:"PLACEMENT_MIN_ITEMS" env-default:"7"`
	MaxItems int     `yaml:"max_items" env:"PLACEMENT_MAX_ITEMS" env-default:"12"`
	TargetSE float64 `yaml:"target_se" env:"PLACEMENT_TARGET_SE" env-default:"0.3"`
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"          env:"RATE_LIMIT_ENABLED"          env-default:"true"`
	MaxPerMinute    int           `yaml:"max_per_minute"   env:"RATE_LIMIT_MAX_PER_MINUTE"   env-default:"120"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"5m"`
}
