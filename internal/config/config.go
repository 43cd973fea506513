package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Engine    EngineConfig    `yaml:"engine"`
	Predictor PredictorConfig `yaml:"predictor"`
	Cram      CramConfig      `yaml:"cram"`
	CORS      CORSConfig      `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
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

	// RateLimitPerMinute caps requests per client IP. Zero disables the
	// limiter.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" env:"SERVER_RATE_LIMIT_PER_MINUTE" env-default:"240"`
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

// EngineConfig holds the adaptive tracker's thresholds and targets.
// Accuracy thresholds are percentages on the 0-100 scale.
type EngineConfig struct {
	WeaknessThreshold     float64 `yaml:"weakness_threshold"      env:"ENGINE_WEAKNESS_THRESHOLD"      env-default:"70"`
	StrongThreshold       float64 `yaml:"strong_threshold"        env:"ENGINE_STRONG_THRESHOLD"        env-default:"75"`
	MinQuestionsForPart   int     `yaml:"min_questions_for_part"  env:"ENGINE_MIN_QUESTIONS_FOR_PART"  env-default:"50"`
	EscalateThreshold     float64 `yaml:"escalate_threshold"      env:"ENGINE_ESCALATE_THRESHOLD"      env-default:"85"`
	DeescalateThreshold   float64 `yaml:"deescalate_threshold"    env:"ENGINE_DEESCALATE_THRESHOLD"    env-default:"50"`
	CoverageTarget        int     `yaml:"coverage_target"         env:"ENGINE_COVERAGE_TARGET"         env-default:"1000"`
	TargetResponseSeconds int     `yaml:"target_response_seconds" env:"ENGINE_TARGET_RESPONSE_SECONDS" env-default:"90"`
}

// PredictorConfig holds score-prediction parameters.
type PredictorConfig struct {
	TargetQuestionVolume int `yaml:"target_question_volume"  env:"PREDICTOR_TARGET_VOLUME"    env-default:"500"`
	MinQuestionsForLevel int `yaml:"min_questions_for_level" env:"PREDICTOR_MIN_FOR_LEVEL"    env-default:"100"`
	MinQuestionsForQuick int `yaml:"min_questions_for_quick" env:"PREDICTOR_MIN_FOR_QUICK"    env-default:"10"`
	WeeklyStudyHours     int `yaml:"weekly_study_hours"      env:"PREDICTOR_WEEKLY_HOURS"     env-default:"15"`
}

// CramConfig holds review-scheduler readiness gates.
type CramConfig struct {
	TopicCompletionGate float64 `yaml:"topic_completion_gate" env:"CRAM_TOPIC_COMPLETION_GATE" env-default:"80"`
	AccuracyGate        float64 `yaml:"accuracy_gate"         env:"CRAM_ACCURACY_GATE"         env-default:"72"`
}
