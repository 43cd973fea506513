package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/examready/backend/internal/domain"
)

// sessionGap is the idle time after which the next answer starts a new
// practice session.
const sessionGap = 30 * time.Minute

// RecordAnswer scores one answered question and updates every layer of the
// learner's state: the global answer window, part and domain statistics,
// the adaptive difficulty, the question's spaced-repetition schedule, the
// anti-repetition window, and the session counters.
func (s *Service) RecordAnswer(ctx context.Context, input RecordAnswerInput) (*domain.AdaptiveState, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	state, err := s.mutateState(ctx, input.LearnerID, func(st *domain.AdaptiveState) error {
		s.applyAnswer(st, input, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "answer recorded",
		slog.String("learner_id", input.LearnerID),
		slog.String("question_id", input.QuestionID),
		slog.Bool("correct", input.Correct),
		slog.String("difficulty", state.CurrentDifficulty.String()),
	)

	return state, nil
}

// applyAnswer folds one answer into the state. Pure against the clock
// passed in; all persistence happens in the caller.
func (s *Service) applyAnswer(st *domain.AdaptiveState, input RecordAnswerInput, now time.Time) {
	// Global rolling window.
	st.RecentAnswers = append(st.RecentAnswers, input.Correct)
	if len(st.RecentAnswers) > domain.RecentAnswersWindow {
		st.RecentAnswers = st.RecentAnswers[len(st.RecentAnswers)-domain.RecentAnswersWindow:]
	}
	st.TotalQuestionsAnswered++

	// Part statistics.
	perf := st.Parts[input.Part]
	if perf == nil {
		perf = domain.NewPartPerformance(input.Part)
		st.Parts[input.Part] = perf
	}
	perf.QuestionsAttempted++
	correctSoFar := perf.Accuracy / 100 * float64(perf.QuestionsAttempted-1)
	if input.Correct {
		correctSoFar++
	}
	perf.Accuracy = correctSoFar / float64(perf.QuestionsAttempted) * 100
	perf.RecentAccuracy = st.RecentAccuracy(domain.RecentAccuracyWindow)
	t := now
	perf.LastPracticed = &t

	// Domain statistics.
	if input.Domain != "" {
		ds := perf.Domains[input.Domain]
		ds.DomainID = input.Domain
		ds.Attempted++
		if input.Correct {
			ds.Correct++
		}
		perf.Domains[input.Domain] = ds
	}

	// Concept mastery.
	s.applyConcept(perf, input.Concept, input.Correct)

	// Weakness flag.
	perf.NeedsWork = perf.Accuracy < s.cfg.WeaknessThreshold ||
		perf.QuestionsAttempted < s.cfg.MinQuestionsForPart

	// Difficulty ladder, once the recent window is full enough to judge.
	if len(st.RecentAnswers) >= domain.RecentAccuracyWindow {
		recent := st.RecentAccuracy(domain.RecentAccuracyWindow)
		switch {
		case recent >= s.cfg.EscalateThreshold:
			st.CurrentDifficulty = st.CurrentDifficulty.StepUp()
		case recent <= s.cfg.DeescalateThreshold:
			st.CurrentDifficulty = st.CurrentDifficulty.StepDown()
		}
	}

	// Spaced repetition.
	rec, exists := st.Records[input.QuestionID]
	if !exists {
		rec = NewReviewRecord(input.QuestionID, input.Correct, now)
		st.Records[input.QuestionID] = rec
	} else {
		ApplyReview(rec, input.Correct, now)
	}
	RecordResponseTime(rec, input.ResponseMs)

	// Anti-repetition window.
	st.LastQuestionIDs = append(st.LastQuestionIDs, input.QuestionID)
	if len(st.LastQuestionIDs) > domain.AntiRepetitionWindow {
		st.LastQuestionIDs = st.LastQuestionIDs[len(st.LastQuestionIDs)-domain.AntiRepetitionWindow:]
	}

	// Session tracking.
	if st.SessionStart == nil || now.Sub(*st.SessionStart) > sessionGap {
		start := now
		st.SessionStart = &start
		st.SessionQuestions = 1
		st.SessionCount++
	} else {
		st.SessionQuestions++
	}
}

// applyConcept moves a concept tag between the mastered and struggle lists
// based on the latest result.
func (s *Service) applyConcept(perf *domain.PartPerformance, concept string, correct bool) {
	if concept == "" {
		return
	}
	if correct {
		perf.StruggleConcepts = removeString(perf.StruggleConcepts, concept)
		perf.MasteredConcepts = appendUnique(perf.MasteredConcepts, concept)
	} else {
		perf.MasteredConcepts = removeString(perf.MasteredConcepts, concept)
		perf.StruggleConcepts = appendUnique(perf.StruggleConcepts, concept)
	}
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
