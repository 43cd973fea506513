// Package tracker implements the adaptive performance tracker: per-question
// spaced repetition, per-part rolling statistics, difficulty adjustment, and
// question selection.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/examready/backend/internal/config"
	"github.com/examready/backend/internal/domain"
)

// saveRetries bounds optimistic-concurrency retries for state mutations.
const saveRetries = 3

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type stateRepo interface {
	Get(ctx context.Context, learnerID string) (*domain.AdaptiveState, error)
	Save(ctx context.Context, state *domain.AdaptiveState) error
	Delete(ctx context.Context, learnerID string) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the tracker business logic. The service itself is
// stateless; all learner state lives in the repository.
type Service struct {
	states stateRepo
	log    *slog.Logger
	cfg    config.EngineConfig
}

// NewService creates a new tracker service.
func NewService(log *slog.Logger, states stateRepo, cfg config.EngineConfig) *Service {
	return &Service{
		states: states,
		log:    log.With("service", "tracker"),
		cfg:    cfg,
	}
}

// loadState fetches a learner's state, falling back to a fresh default when
// none exists. Unexpected load failures also fall back, with a warning:
// tracking must keep working even when the store is unhappy.
func (s *Service) loadState(ctx context.Context, learnerID string) *domain.AdaptiveState {
	state, err := s.states.Get(ctx, learnerID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "load state failed, starting fresh",
				slog.String("learner_id", learnerID),
				slog.String("error", err.Error()),
			)
		}
		return domain.NewAdaptiveState(learnerID)
	}
	return state
}

// mutateState loads a learner's state, applies fn, and saves it back.
// Version conflicts are retried with a fresh load so concurrent writers
// each apply their mutation exactly once. The mutated state is returned
// even when the final save fails; persistence trouble is logged, not
// surfaced, so a flaky store never blocks an answer from being scored.
func (s *Service) mutateState(ctx context.Context, learnerID string, fn func(*domain.AdaptiveState) error) (*domain.AdaptiveState, error) {
	var state *domain.AdaptiveState

	for attempt := 0; attempt < saveRetries; attempt++ {
		state = s.loadState(ctx, learnerID)

		if err := fn(state); err != nil {
			return nil, err
		}

		err := s.states.Save(ctx, state)
		if err == nil {
			return state, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			continue
		}

		s.log.WarnContext(ctx, "save state failed",
			slog.String("learner_id", learnerID),
			slog.String("error", err.Error()),
		)
		return state, nil
	}

	s.log.WarnContext(ctx, "save state failed after retries",
		slog.String("learner_id", learnerID),
	)
	return state, nil
}

// ResetProgress wipes a learner's entire tracker state.
func (s *Service) ResetProgress(ctx context.Context, learnerID string) error {
	if learnerID == "" {
		return domain.NewValidationError("learner_id", "required")
	}

	if err := s.states.Delete(ctx, learnerID); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}

	s.log.InfoContext(ctx, "progress reset", slog.String("learner_id", learnerID))
	return nil
}

// CurrentDifficulty returns the learner's adaptive difficulty level.
func (s *Service) CurrentDifficulty(ctx context.Context, learnerID string) (domain.Difficulty, error) {
	if learnerID == "" {
		return "", domain.NewValidationError("learner_id", "required")
	}
	state := s.loadState(ctx, learnerID)
	return state.CurrentDifficulty, nil
}
