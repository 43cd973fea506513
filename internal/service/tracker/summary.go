package tracker

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/examready/backend/internal/domain"
)

// GetPerformanceSummary builds the aggregate view of a learner's progress:
// per-part breakdowns, weak and strong part lists, and a readiness score
// blending recent accuracy with question-volume coverage.
func (s *Service) GetPerformanceSummary(ctx context.Context, learnerID string) (*domain.PerformanceSummary, error) {
	if learnerID == "" {
		return nil, domain.NewValidationError("learner_id", "required")
	}

	state := s.loadState(ctx, learnerID)

	summary := &domain.PerformanceSummary{
		TotalQuestions:    state.TotalQuestionsAnswered,
		OverallAccuracy:   state.RecentAccuracy(0),
		CurrentDifficulty: state.CurrentDifficulty,
		Parts:             make([]domain.PartBreakdown, 0, len(state.Parts)),
		WeakParts:         []domain.ExamPart{},
		StrongParts:       []domain.ExamPart{},
	}

	for _, part := range domain.AllParts() {
		perf := state.Parts[part]
		if perf == nil {
			perf = domain.NewPartPerformance(part)
		}

		summary.Parts = append(summary.Parts, domain.PartBreakdown{
			Part:               part,
			Accuracy:           perf.Accuracy,
			RecentAccuracy:     perf.RecentAccuracy,
			QuestionsAttempted: perf.QuestionsAttempted,
			NeedsWork:          perf.NeedsWork,
		})

		if perf.NeedsWork {
			summary.WeakParts = append(summary.WeakParts, part)
		}
		if perf.Accuracy >= s.cfg.StrongThreshold && perf.QuestionsAttempted >= s.cfg.MinQuestionsForPart {
			summary.StrongParts = append(summary.StrongParts, part)
		}
	}

	coverage := math.Min(100, float64(state.TotalQuestionsAnswered)/float64(s.cfg.CoverageTarget)*100)
	summary.ReadinessScore = 0.6*summary.OverallAccuracy + 0.4*coverage

	return summary, nil
}

// DueForReview returns the IDs of previously missed questions whose review
// date has passed, weakest memories first.
func (s *Service) DueForReview(ctx context.Context, learnerID string) ([]string, error) {
	if learnerID == "" {
		return nil, domain.NewValidationError("learner_id", "required")
	}

	state := s.loadState(ctx, learnerID)
	now := time.Now().UTC()

	due := make([]string, 0)
	for id, rec := range state.Records {
		if !rec.LastResult && rec.IsDue(now) {
			due = append(due, id)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		ri := state.Records[due[i]].Retrievability(now)
		rj := state.Records[due[j]].Retrievability(now)
		if ri != rj {
			return ri < rj
		}
		return due[i] < due[j]
	})

	return due, nil
}

// WeakParts returns the learner's weak parts, the largest accuracy gap
// first.
func (s *Service) WeakParts(ctx context.Context, learnerID string) ([]domain.ExamPart, error) {
	if learnerID == "" {
		return nil, domain.NewValidationError("learner_id", "required")
	}

	state := s.loadState(ctx, learnerID)

	type weighted struct {
		part  domain.ExamPart
		score float64
	}
	weak := make([]weighted, 0, len(state.Parts))
	for _, part := range domain.AllParts() {
		perf := state.Parts[part]
		if perf == nil || !perf.NeedsWork {
			continue
		}
		// Both parts carry equal blueprint weight, so the accuracy gap
		// alone decides the order.
		gap := 1 - perf.Accuracy/100
		weak = append(weak, weighted{part: part, score: gap})
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].score > weak[j].score })

	parts := make([]domain.ExamPart, len(weak))
	for i, w := range weak {
		parts[i] = w.part
	}
	return parts, nil
}
