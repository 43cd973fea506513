// Package cram implements the intensive review scheduler: static five-day
// study plans per exam part, topic and formula completion tracking, and
// day/overall progress with an exam-ready gate.
package cram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/examready/backend/internal/config"
	"github.com/examready/backend/internal/domain"
)

// Day progress weights, percent.
const (
	topicsWeight    = 30
	formulasWeight  = 20
	questionsWeight = 50
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type stateRepo interface {
	Get(ctx context.Context, learnerID string) (*domain.CramState, error)
	Save(ctx context.Context, state *domain.CramState) error
	Delete(ctx context.Context, learnerID string) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the review-scheduler business logic.
type Service struct {
	states stateRepo
	log    *slog.Logger
	cfg    config.CramConfig
}

// NewService creates a new cram service.
func NewService(log *slog.Logger, states stateRepo, cfg config.CramConfig) *Service {
	return &Service{
		states: states,
		log:    log.With("service", "cram"),
		cfg:    cfg,
	}
}

// loadActive fetches a learner's cram state, or nil when no session is
// active. Unexpected load failures read as no session, with a warning.
func (s *Service) loadActive(ctx context.Context, learnerID string) *domain.CramState {
	state, err := s.states.Get(ctx, learnerID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "load cram state failed",
				slog.String("learner_id", learnerID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	if !state.IsActive {
		return nil
	}
	return state
}

// save persists the state, logging failures instead of surfacing them so a
// flaky store never interrupts a session in progress.
func (s *Service) save(ctx context.Context, state *domain.CramState) {
	if err := s.states.Save(ctx, state); err != nil {
		s.log.WarnContext(ctx, "save cram state failed",
			slog.String("learner_id", state.LearnerID),
			slog.String("error", err.Error()),
		)
	}
}

// mutate applies fn to the learner's active session and persists the
// result. Returns ErrNotFound when no session is active.
func (s *Service) mutate(ctx context.Context, learnerID string, fn func(*domain.CramState)) (*domain.CramState, error) {
	if learnerID == "" {
		return nil, domain.NewValidationError("learner_id", "is required")
	}
	state := s.loadActive(ctx, learnerID)
	if state == nil {
		return nil, fmt.Errorf("active cram session: %w", domain.ErrNotFound)
	}
	fn(state)
	s.save(ctx, state)
	return state, nil
}

// StartCram begins a fresh day-1 session for the part, replacing any
// session already in progress.
func (s *Service) StartCram(ctx context.Context, learnerID string, part domain.ExamPart) (*domain.CramState, error) {
	if learnerID == "" {
		return nil, domain.NewValidationError("learner_id", "is required")
	}
	if !part.IsValid() {
		return nil, domain.NewValidationError("part", "unknown exam part")
	}

	state := domain.NewCramState(learnerID, part, time.Now().UTC())
	s.save(ctx, state)

	s.log.InfoContext(ctx, "cram session started",
		slog.String("learner_id", learnerID),
		slog.String("part", part.String()),
	)
	return state, nil
}

// EndCram closes the session, returning its final accuracy and completed
// topic count, and clears the persisted record. Ending with no active
// session returns an empty result.
func (s *Service) EndCram(ctx context.Context, learnerID string) (domain.CramResult, error) {
	if learnerID == "" {
		return domain.CramResult{}, domain.NewValidationError("learner_id", "is required")
	}

	var result domain.CramResult
	if state := s.loadActive(ctx, learnerID); state != nil {
		result = domain.CramResult{
			Accuracy:        math.Round(state.Accuracy()),
			TopicsCompleted: len(state.CompletedTopics),
		}
	}

	if err := s.states.Delete(ctx, learnerID); err != nil {
		s.log.WarnContext(ctx, "delete cram state failed",
			slog.String("learner_id", learnerID),
			slog.String("error", err.Error()),
		)
	}

	s.log.InfoContext(ctx, "cram session ended",
		slog.String("learner_id", learnerID),
		slog.Float64("accuracy", result.Accuracy),
		slog.Int("topics_completed", result.TopicsCompleted),
	)
	return result, nil
}

// GetTodaysPlan returns the current day's plan, or nil when no session is
// active.
func (s *Service) GetTodaysPlan(ctx context.Context, learnerID string) (*domain.CramDayPlan, error) {
	if learnerID == "" {
		return nil, domain.NewValidationError("learner_id", "is required")
	}
	state := s.loadActive(ctx, learnerID)
	if state == nil {
		return nil, nil
	}
	return dayPlan(state), nil
}

// GetTodaysTopics returns the catalog topics scheduled for the current day.
func (s *Service) GetTodaysTopics(ctx context.Context, learnerID string) ([]domain.CramTopic, error) {
	plan, err := s.GetTodaysPlan(ctx, learnerID)
	if err != nil || plan == nil {
		return nil, err
	}
	return topicsByID(plan.Topics), nil
}

// GetTodaysFormulas returns the catalog formulas scheduled for the current
// day.
func (s *Service) GetTodaysFormulas(ctx context.Context, learnerID string) ([]domain.CramFormula, error) {
	plan, err := s.GetTodaysPlan(ctx, learnerID)
	if err != nil || plan == nil {
		return nil, err
	}
	return formulasByID(plan.Formulas), nil
}

// CompleteTopic marks a topic done. Idempotent.
func (s *Service) CompleteTopic(ctx context.Context, learnerID, topicID string) error {
	if topicID == "" {
		return domain.NewValidationError("topic_id", "is required")
	}
	_, err := s.mutate(ctx, learnerID, func(state *domain.CramState) {
		state.CompletedTopics[topicID] = struct{}{}
	})
	return err
}

// ReviewFormula marks a formula reviewed. Idempotent.
func (s *Service) ReviewFormula(ctx context.Context, learnerID, formulaID string) error {
	if formulaID == "" {
		return domain.NewValidationError("formula_id", "is required")
	}
	_, err := s.mutate(ctx, learnerID, func(state *domain.CramState) {
		state.FormulasReviewed[formulaID] = struct{}{}
	})
	return err
}

// RecordQuestion tallies one practice answer against the session. The
// tally is the session's own ledger, separate from the tracker's.
func (s *Service) RecordQuestion(ctx context.Context, learnerID string, correct bool) error {
	_, err := s.mutate(ctx, learnerID, func(state *domain.CramState) {
		state.QuestionsAnswered++
		if correct {
			state.CorrectAnswers++
		}
	})
	return err
}

// AdvanceToNextDay moves the session forward one day. At the final day it
// reports false and leaves the session untouched.
func (s *Service) AdvanceToNextDay(ctx context.Context, learnerID string) (bool, error) {
	advanced := false
	_, err := s.mutate(ctx, learnerID, func(state *domain.CramState) {
		if state.CurrentDay < len(planFor(state.Part)) {
			state.CurrentDay++
			advanced = true
		}
	})
	if err != nil {
		return false, err
	}
	return advanced, nil
}

// GetDayProgress scores the current day 0-100: topics 30%, formulas 20%,
// questions 50%. Categories the day does not schedule earn full credit.
func (s *Service) GetDayProgress(ctx context.Context, learnerID string) (int, error) {
	if learnerID == "" {
		return 0, domain.NewValidationError("learner_id", "is required")
	}
	state := s.loadActive(ctx, learnerID)
	if state == nil {
		return 0, nil
	}
	plan := dayPlan(state)
	if plan == nil {
		return 0, nil
	}

	return dayProgressFor(state, plan), nil
}

// dayProgressFor scores one day 0-100: topics 30%, formulas 20%, practice
// questions 50% capped at the day's target. A category the plan does not
// schedule counts as complete.
func dayProgressFor(state *domain.CramState, plan *domain.CramDayPlan) int {
	var progress float64

	if n := len(plan.Topics); n > 0 {
		done := 0
		for _, id := range plan.Topics {
			if _, ok := state.CompletedTopics[id]; ok {
				done++
			}
		}
		progress += float64(done) / float64(n) * topicsWeight
	} else {
		progress += topicsWeight
	}

	if n := len(plan.Formulas); n > 0 {
		done := 0
		for _, id := range plan.Formulas {
			if _, ok := state.FormulasReviewed[id]; ok {
				done++
			}
		}
		progress += float64(done) / float64(n) * formulasWeight
	} else {
		progress += formulasWeight
	}

	if plan.PracticeQuestions > 0 {
		answered := min(state.QuestionsAnswered, plan.PracticeQuestions)
		progress += float64(answered) / float64(plan.PracticeQuestions) * questionsWeight
	} else {
		progress += questionsWeight
	}

	return int(math.Round(progress))
}

// GetOverallProgress summarizes the whole plan: days completed, topic
// completion over every catalog topic tagged to the part, accuracy, and
// the exam-ready gate.
func (s *Service) GetOverallProgress(ctx context.Context, learnerID string) (domain.CramOverallProgress, error) {
	if learnerID == "" {
		return domain.CramOverallProgress{}, domain.NewValidationError("learner_id", "is required")
	}
	state := s.loadActive(ctx, learnerID)
	if state == nil {
		return domain.CramOverallProgress{}, fmt.Errorf("active cram session: %w", domain.ErrNotFound)
	}

	partTopics := topicsForPart(state.Part)
	completed := 0
	for _, t := range partTopics {
		if _, ok := state.CompletedTopics[t.ID]; ok {
			completed++
		}
	}

	accuracy := math.Round(state.Accuracy())
	ready := float64(completed) >= float64(len(partTopics))*s.cfg.TopicCompletionGate/100 &&
		accuracy >= s.cfg.AccuracyGate

	return domain.CramOverallProgress{
		DaysCompleted:   state.CurrentDay - 1,
		TotalDays:       len(planFor(state.Part)),
		TopicsCompleted: completed,
		TotalTopics:     len(partTopics),
		Accuracy:        accuracy,
		ReadyForExam:    ready,
	}, nil
}

// GetCriticalTopics lists a part's critical-priority topics for quick
// review. Catalog lookup, no session required.
func (s *Service) GetCriticalTopics(part domain.ExamPart) ([]domain.CramTopic, error) {
	if !part.IsValid() {
		return nil, domain.NewValidationError("part", "unknown exam part")
	}
	out := make([]domain.CramTopic, 0)
	for _, t := range topicsForPart(part) {
		if t.Priority == domain.TopicPriorityCritical {
			out = append(out, t)
		}
	}
	return out, nil
}

// FormulasForPart lists every formula tagged to a part.
func (s *Service) FormulasForPart(part domain.ExamPart) ([]domain.CramFormula, error) {
	if !part.IsValid() {
		return nil, domain.NewValidationError("part", "unknown exam part")
	}
	return formulasForPart(part), nil
}

// dayPlan resolves the state's current day against its part plan.
func dayPlan(state *domain.CramState) *domain.CramDayPlan {
	plan := planFor(state.Part)
	if state.CurrentDay < 1 || state.CurrentDay > len(plan) {
		return nil
	}
	day := plan[state.CurrentDay-1]
	return &day
}
