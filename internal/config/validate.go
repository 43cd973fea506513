package config

import (
	"fmt"
	"log/slog"
)

// Validate checks the configuration for values that would break the
// application at runtime rather than at startup.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Engine.validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Predictor.validate(); err != nil {
		return fmt.Errorf("predictor: %w", err)
	}
	if err := c.Cram.validate(); err != nil {
		return fmt.Errorf("cram: %w", err)
	}
	return nil
}

func (s *ServerConfig) validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port %d out of range", s.Port)
	}
	if s.ReadTimeout <= 0 || s.WriteTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if s.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate_limit_per_minute must not be negative")
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	if d.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	if d.MaxConns < 1 {
		return fmt.Errorf("max_conns must be at least 1")
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		return fmt.Errorf("min_conns %d invalid for max_conns %d", d.MinConns, d.MaxConns)
	}
	return nil
}

func (l *LogConfig) validate() error {
	if _, err := l.ParseLevel(); err != nil {
		return err
	}
	switch l.Format {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("unknown format %q", l.Format)
	}
}

// ParseLevel converts the configured level string into a slog.Level.
func (l *LogConfig) ParseLevel() (slog.Level, error) {
	switch l.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", l.Level)
	}
}

func (e *EngineConfig) validate() error {
	for name, v := range map[string]float64{
		"weakness_threshold":   e.WeaknessThreshold,
		"strong_threshold":     e.StrongThreshold,
		"escalate_threshold":   e.EscalateThreshold,
		"deescalate_threshold": e.DeescalateThreshold,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s %.1f out of range [0, 100]", name, v)
		}
	}
	if e.DeescalateThreshold >= e.EscalateThreshold {
		return fmt.Errorf("deescalate_threshold %.1f must be below escalate_threshold %.1f",
			e.DeescalateThreshold, e.EscalateThreshold)
	}
	if e.MinQuestionsForPart < 1 {
		return fmt.Errorf("min_questions_for_part must be at least 1")
	}
	if e.CoverageTarget < 1 {
		return fmt.Errorf("coverage_target must be at least 1")
	}
	if e.TargetResponseSeconds < 1 {
		return fmt.Errorf("target_response_seconds must be at least 1")
	}
	return nil
}

func (p *PredictorConfig) validate() error {
	if p.TargetQuestionVolume < 1 {
		return fmt.Errorf("target_question_volume must be at least 1")
	}
	if p.MinQuestionsForLevel < 1 {
		return fmt.Errorf("min_questions_for_level must be at least 1")
	}
	if p.MinQuestionsForQuick < 1 {
		return fmt.Errorf("min_questions_for_quick must be at least 1")
	}
	if p.WeeklyStudyHours < 1 {
		return fmt.Errorf("weekly_study_hours must be at least 1")
	}
	return nil
}

func (c *CramConfig) validate() error {
	if c.TopicCompletionGate < 0 || c.TopicCompletionGate > 100 {
		return fmt.Errorf("topic_completion_gate %.1f out of range [0, 100]", c.TopicCompletionGate)
	}
	if c.AccuracyGate < 0 || c.AccuracyGate > 100 {
		return fmt.Errorf("accuracy_gate %.1f out of range [0, 100]", c.AccuracyGate)
	}
	return nil
}
