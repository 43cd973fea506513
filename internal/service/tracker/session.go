package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/examready/backend/internal/domain"
)

// StartSession opens a practice session explicitly: a fresh start
// timestamp and a zeroed question counter. Answers arriving without an
// explicit start still open a session on their own.
func (s *Service) StartSession(ctx context.Context, learnerID string) error {
	if learnerID == "" {
		return domain.NewValidationError("learner_id", "required")
	}

	now := time.Now().UTC()
	_, err := s.mutateState(ctx, learnerID, func(st *domain.AdaptiveState) error {
		st.SessionStart = &now
		st.SessionQuestions = 0
		st.SessionCount++
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "session started", slog.String("learner_id", learnerID))
	return nil
}

// EndSession closes the learner's current practice session and returns its
// summary. Ending when no session is open returns an empty summary.
func (s *Service) EndSession(ctx context.Context, learnerID string) (*domain.SessionSummary, error) {
	if learnerID == "" {
		return nil, domain.NewValidationError("learner_id", "required")
	}

	now := time.Now().UTC()
	var summary domain.SessionSummary

	_, err := s.mutateState(ctx, learnerID, func(st *domain.AdaptiveState) error {
		if st.SessionStart != nil {
			minutes := int(now.Sub(*st.SessionStart).Minutes())
			if minutes < 0 {
				minutes = 0
			}
			summary = domain.SessionSummary{
				DurationMinutes:   minutes,
				QuestionsAnswered: st.SessionQuestions,
				RecentAccuracy:    st.RecentAccuracy(domain.RecentAccuracyWindow),
			}
		}
		st.SessionStart = nil
		st.SessionQuestions = 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "session ended",
		slog.String("learner_id", learnerID),
		slog.Int("questions", summary.QuestionsAnswered),
		slog.Int("duration_min", summary.DurationMinutes),
	)

	return &summary, nil
}
