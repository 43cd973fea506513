package learnerstate_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examready/backend/internal/adapter/postgres/learnerstate"
	"github.com/examready/backend/internal/adapter/postgres/testhelper"
	"github.com/examready/backend/internal/domain"
)

func newLearnerID() string {
	return "learner-" + uuid.NewString()
}

func sampleState(learnerID string) *domain.AdaptiveState {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	state := domain.NewAdaptiveState(learnerID)
	state.CurrentDifficulty = domain.DifficultyHard
	state.TotalQuestionsAnswered = 42
	state.RecentAnswers = []bool{true, false, true, true}
	state.LastQuestionIDs = []string{"q1", "q2", "q3"}
	state.SessionStart = &now
	state.SessionQuestions = 7
	state.SessionCount = 3

	perf := state.Parts[domain.PartCMA1]
	perf.QuestionsAttempted = 30
	perf.Accuracy = 76.7
	perf.RecentAccuracy = 80
	perf.NeedsWork = false
	perf.LastPracticed = &now
	perf.MasteredConcepts = []string{"budgeting"}
	perf.StruggleConcepts = []string{"variance-analysis"}
	perf.Domains["CMA1-A"] = domain.DomainStat{DomainID: "CMA1-A", Attempted: 10, Correct: 8}
	perf.Domains["CMA1-B"] = domain.DomainStat{DomainID: "CMA1-B", Attempted: 5, Correct: 2}

	state.Records["q1"] = &domain.ReviewRecord{
		QuestionID:     "q1",
		Attempts:       3,
		CorrectCount:   2,
		LastAttempted:  now,
		LastResult:     true,
		EaseFactor:     2.1,
		IntervalDays:   6,
		NextReviewDate: now.AddDate(0, 0, 6),
		Lapses:         1,
		Stability:      4.5,
		LastResponseMs: 42000,
		AvgResponseMs:  51000,
	}

	return state
}

func TestRepo_Get_NotFound(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := learnerstate.New(pool)

	_, err := repo.Get(context.Background(), newLearnerID())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_SaveAndGet_RoundTrip(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := learnerstate.New(pool)
	ctx := context.Background()

	learnerID := newLearnerID()
	state := sampleState(learnerID)

	require.NoError(t, repo.Save(ctx, state))
	assert.Equal(t, int64(1), state.Version)

	got, err := repo.Get(ctx, learnerID)
	require.NoError(t, err)

	assert.Equal(t, learnerID, got.LearnerID)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, domain.DifficultyHard, got.CurrentDifficulty)
	assert.Equal(t, 42, got.TotalQuestionsAnswered)
	assert.Equal(t, []bool{true, false, true, true}, got.RecentAnswers)
	assert.Equal(t, []string{"q1", "q2", "q3"}, got.LastQuestionIDs)
	assert.Equal(t, 7, got.SessionQuestions)
	assert.Equal(t, 3, got.SessionCount)
	require.NotNil(t, got.SessionStart)
	assert.True(t, got.SessionStart.Equal(*state.SessionStart))

	// All known parts present even though only one was populated.
	require.Len(t, got.Parts, len(domain.AllParts()))

	perf := got.Parts[domain.PartCMA1]
	require.NotNil(t, perf)
	assert.Equal(t, 30, perf.QuestionsAttempted)
	assert.InDelta(t, 76.7, perf.Accuracy, 0.001)
	assert.False(t, perf.NeedsWork)
	assert.Equal(t, []string{"budgeting"}, perf.MasteredConcepts)
	assert.Equal(t, []string{"variance-analysis"}, perf.StruggleConcepts)
	require.Len(t, perf.Domains, 2)
	assert.Equal(t, 8, perf.Domains["CMA1-A"].Correct)

	// Untouched part keeps its fresh defaults.
	other := got.Parts[domain.PartCMA2]
	require.NotNil(t, other)
	assert.True(t, other.NeedsWork)
	assert.Empty(t, other.Domains)

	require.Len(t, got.Records, 1)
	rec := got.Records["q1"]
	require.NotNil(t, rec)
	assert.Equal(t, 3, rec.Attempts)
	assert.Equal(t, 2, rec.CorrectCount)
	assert.True(t, rec.LastResult)
	assert.InDelta(t, 2.1, rec.EaseFactor, 0.001)
	assert.Equal(t, 6, rec.IntervalDays)
	assert.Equal(t, 1, rec.Lapses)
	assert.InDelta(t, 4.5, rec.Stability, 0.001)
	assert.Equal(t, 42000, rec.LastResponseMs)
	assert.True(t, rec.NextReviewDate.Equal(state.Records["q1"].NextReviewDate))
}

func TestRepo_Save_UpdateAdvancesVersion(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := learnerstate.New(pool)
	ctx := context.Background()

	state := sampleState(newLearnerID())
	require.NoError(t, repo.Save(ctx, state))

	state.TotalQuestionsAnswered = 43
	require.NoError(t, repo.Save(ctx, state))
	assert.Equal(t, int64(2), state.Version)

	got, err := repo.Get(ctx, state.LearnerID)
	require.NoError(t, err)
	assert.Equal(t, 43, got.TotalQuestionsAnswered)
	assert.Equal(t, int64(2), got.Version)
}

func TestRepo_Save_StaleVersionConflict(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := learnerstate.New(pool)
	ctx := context.Background()

	state := sampleState(newLearnerID())
	require.NoError(t, repo.Save(ctx, state))

	// Another copy of the same state, loaded at version 1.
	stale, err := repo.Get(ctx, state.LearnerID)
	require.NoError(t, err)

	// First writer wins.
	state.TotalQuestionsAnswered = 100
	require.NoError(t, repo.Save(ctx, state))

	stale.TotalQuestionsAnswered = 50
	err = repo.Save(ctx, stale)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// The first write is intact.
	got, err := repo.Get(ctx, state.LearnerID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.TotalQuestionsAnswered)
}

func TestRepo_Save_InsertConflictWhenRowExists(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := learnerstate.New(pool)
	ctx := context.Background()

	learnerID := newLearnerID()
	first := sampleState(learnerID)
	require.NoError(t, repo.Save(ctx, first))

	// A second fresh state (version 0) for the same learner must not clobber.
	second := domain.NewAdaptiveState(learnerID)
	err := repo.Save(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRepo_Delete(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := learnerstate.New(pool)
	ctx := context.Background()

	state := sampleState(newLearnerID())
	require.NoError(t, repo.Save(ctx, state))

	require.NoError(t, repo.Delete(ctx, state.LearnerID))

	_, err := repo.Get(ctx, state.LearnerID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is not an error.
	require.NoError(t, repo.Delete(ctx, state.LearnerID))
}

func TestRepo_Get_NormalizesLegacyPayload(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := learnerstate.New(pool)
	ctx := context.Background()

	learnerID := newLearnerID()

	// Simulate an older payload: missing parts, out-of-range SM-2 fields,
	// null collections.
	legacy := `{
		"currentDifficulty": "BOGUS",
		"totalQuestionsAnswered": 5,
		"recentAnswers": null,
		"parts": [],
		"records": [
			{"questionId": "q9", "attempts": 2, "correctCount": 1,
			 "lastAttempted": "2026-01-01T00:00:00Z", "lastResult": false,
			 "easeFactor": 9.9, "intervalDays": 0,
			 "nextReviewDate": "2026-01-02T00:00:00Z",
			 "lapses": 0, "stability": 0}
		],
		"lastQuestionIds": null,
		"sessionQuestions": 0,
		"sessionCount": 0
	}`
	_, err := pool.Exec(ctx,
		`INSERT INTO learner_states (learner_id, payload, version, updated_at)
		 VALUES ($1, $2::jsonb, 1, now())`,
		learnerID, legacy,
	)
	require.NoError(t, err)

	got, err := repo.Get(ctx, learnerID)
	require.NoError(t, err)

	assert.Equal(t, domain.DifficultyMedium, got.CurrentDifficulty)
	assert.NotNil(t, got.RecentAnswers)
	assert.NotNil(t, got.LastQuestionIDs)
	assert.Len(t, got.Parts, len(domain.AllParts()))

	rec := got.Records["q9"]
	require.NotNil(t, rec)
	assert.Equal(t, domain.MaxEaseFactor, rec.EaseFactor)
	assert.Equal(t, domain.MinIntervalDays, rec.IntervalDays)
	assert.GreaterOrEqual(t, rec.Stability, domain.MinStability)
}
