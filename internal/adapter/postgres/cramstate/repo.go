// Package cramstate implements the cram scheduler state repository using
// PostgreSQL. One row per learner; the row exists only while a cram plan
// is active.
package cramstate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/examready/backend/internal/adapter/postgres"
	"github.com/examready/backend/internal/domain"
)

// Repo provides cram state persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new cram state repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const getSQL = `
SELECT payload
FROM cram_states
WHERE learner_id = $1`

const upsertSQL = `
INSERT INTO cram_states (learner_id, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (learner_id) DO UPDATE
SET payload = EXCLUDED.payload, updated_at = now()`

const deleteSQL = `DELETE FROM cram_states WHERE learner_id = $1`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Get loads a learner's cram state. Returns domain.ErrNotFound when the
// learner has no active cram plan.
func (r *Repo) Get(ctx context.Context, learnerID string) (*domain.CramState, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var raw []byte
	if err := q.QueryRow(ctx, getSQL, learnerID).Scan(&raw); err != nil {
		return nil, postgres.MapError(err, "cram_state", learnerID)
	}

	var p cramPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("cram_state %s: decode payload: %w", learnerID, err)
	}

	return p.toDomain(learnerID), nil
}

// Save upserts a learner's cram state. Last write wins: cram progress is
// additive within a single device session, so CAS is not needed here.
func (r *Repo) Save(ctx context.Context, state *domain.CramState) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	raw, err := json.Marshal(fromDomain(state))
	if err != nil {
		return fmt.Errorf("cram_state %s: encode payload: %w", state.LearnerID, err)
	}

	if _, err := q.Exec(ctx, upsertSQL, state.LearnerID, raw); err != nil {
		return postgres.MapError(err, "cram_state", state.LearnerID)
	}

	return nil
}

// Delete removes a learner's cram state. Not an error if none exists.
func (r *Repo) Delete(ctx context.Context, learnerID string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, deleteSQL, learnerID); err != nil {
		return postgres.MapError(err, "cram_state", learnerID)
	}

	return nil
}

// ---------------------------------------------------------------------------
// JSONB payload
// ---------------------------------------------------------------------------

type cramPayload struct {
	Part              string    `json:"part"`
	CurrentDay        int       `json:"currentDay"`
	StartDate         time.Time `json:"startDate"`
	CompletedTopics   []string  `json:"completedTopics"`
	FormulasReviewed  []string  `json:"formulasReviewed"`
	QuestionsAnswered int       `json:"questionsAnswered"`
	CorrectAnswers    int       `json:"correctAnswers"`
	IsActive          bool      `json:"isActive"`
}

func fromDomain(s *domain.CramState) cramPayload {
	p := cramPayload{
		Part:              s.Part.String(),
		CurrentDay:        s.CurrentDay,
		StartDate:         s.StartDate,
		CompletedTopics:   make([]string, 0, len(s.CompletedTopics)),
		FormulasReviewed:  make([]string, 0, len(s.FormulasReviewed)),
		QuestionsAnswered: s.QuestionsAnswered,
		CorrectAnswers:    s.CorrectAnswers,
		IsActive:          s.IsActive,
	}
	for id := range s.CompletedTopics {
		p.CompletedTopics = append(p.CompletedTopics, id)
	}
	sort.Strings(p.CompletedTopics)
	for id := range s.FormulasReviewed {
		p.FormulasReviewed = append(p.FormulasReviewed, id)
	}
	sort.Strings(p.FormulasReviewed)
	return p
}

func (p cramPayload) toDomain(learnerID string) *domain.CramState {
	s := &domain.CramState{
		LearnerID:         learnerID,
		Part:              domain.ExamPart(p.Part),
		CurrentDay:        p.CurrentDay,
		StartDate:         p.StartDate,
		CompletedTopics:   make(map[string]struct{}, len(p.CompletedTopics)),
		FormulasReviewed:  make(map[string]struct{}, len(p.FormulasReviewed)),
		QuestionsAnswered: p.QuestionsAnswered,
		CorrectAnswers:    p.CorrectAnswers,
		IsActive:          p.IsActive,
	}
	for _, id := range p.CompletedTopics {
		s.CompletedTopics[id] = struct{}{}
	}
	for _, id := range p.FormulasReviewed {
		s.FormulasReviewed[id] = struct{}{}
	}
	return s
}
