package tracker

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/examready/backend/internal/domain"
)

// Selection tier quotas, as shares of the requested count.
const (
	dueShare      = 0.3
	weakPartShare = 0.4
)

// SelectQuestions picks the next practice set from a candidate pool.
// Questions are drawn in tiers: due reviews first (weakest memories
// leading), then weak-part coverage, then difficulty matches, then
// whatever balances the set. Recently served questions are excluded
// unless that would empty the pool entirely. The final set is shuffled.
func (s *Service) SelectQuestions(ctx context.Context, input SelectQuestionsInput) ([]domain.SelectedQuestion, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	state := s.loadState(ctx, input.LearnerID)
	now := time.Now().UTC()

	selected := selectFromPool(state, input, now)

	rand.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	s.log.InfoContext(ctx, "questions selected",
		slog.String("learner_id", input.LearnerID),
		slog.Int("requested", input.Count),
		slog.Int("selected", len(selected)),
	)

	return selected, nil
}

// selectFromPool is the deterministic part of selection (everything but the
// final shuffle), separated out for testability.
func selectFromPool(state *domain.AdaptiveState, input SelectQuestionsInput, now time.Time) []domain.SelectedQuestion {
	candidates := input.Pool
	if input.FocusPart != nil {
		candidates = filterQuestions(candidates, func(q domain.Question) bool {
			return q.Part == *input.FocusPart
		})
	}

	// Anti-repetition. The full pool is re-admitted only when filtering
	// leaves nothing; a short fresh pool yields a short result instead of
	// repeating recently served questions.
	recent := make(map[string]struct{}, len(state.LastQuestionIDs))
	for _, id := range state.LastQuestionIDs {
		recent[id] = struct{}{}
	}
	fresh := filterQuestions(candidates, func(q domain.Question) bool {
		_, seen := recent[q.ID]
		return !seen
	})
	if len(fresh) == 0 {
		fresh = candidates
	}

	picked := make(map[string]struct{}, input.Count)
	selected := make([]domain.SelectedQuestion, 0, input.Count)

	take := func(qs []domain.Question, limit int, reason domain.SelectionReason) {
		for _, q := range qs {
			if len(selected) >= input.Count || limit <= 0 {
				return
			}
			if _, dup := picked[q.ID]; dup {
				continue
			}
			picked[q.ID] = struct{}{}
			selected = append(selected, domain.SelectedQuestion{Question: q, Reason: reason})
			limit--
		}
	}

	// Tier 1: due reviews, weakest memories first.
	due := filterQuestions(fresh, func(q domain.Question) bool {
		rec, ok := state.Records[q.ID]
		return ok && rec.IsDue(now)
	})
	sort.SliceStable(due, func(i, j int) bool {
		return state.Records[due[i].ID].Retrievability(now) < state.Records[due[j].ID].Retrievability(now)
	})
	take(due, quota(input.Count, dueShare), domain.SelectionReasonReviewDue)

	// Tier 2: weak-part coverage, skipped when the caller pinned a part.
	if input.FocusPart == nil {
		weak := filterQuestions(fresh, func(q domain.Question) bool {
			perf := state.Parts[q.Part]
			if perf == nil || !perf.NeedsWork {
				return false
			}
			return q.Difficulty == state.CurrentDifficulty || q.Difficulty == domain.DifficultyMedium
		})
		take(weak, quota(input.Count, weakPartShare), domain.SelectionReasonWeakPart)
	}

	// Tier 3: difficulty matches.
	matched := filterQuestions(fresh, func(q domain.Question) bool {
		return q.Difficulty == state.CurrentDifficulty
	})
	take(matched, input.Count, domain.SelectionReasonDifficultyMatch)

	// Tier 4: fill the rest.
	take(fresh, input.Count, domain.SelectionReasonBalanced)

	return selected
}

func quota(count int, share float64) int {
	q := int(float64(count) * share)
	if q < 1 {
		q = 1
	}
	return q
}

func filterQuestions(qs []domain.Question, keep func(domain.Question) bool) []domain.Question {
	out := make([]domain.Question, 0, len(qs))
	for _, q := range qs {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}
