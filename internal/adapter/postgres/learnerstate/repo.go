// Package learnerstate implements the adaptive tracker state repository
// using PostgreSQL. Each learner's full tracker state is stored as a single
// JSONB row with an optimistic-concurrency version column.
package learnerstate

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

// Repo provides adaptive state persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new learner state repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const getSQL = `
SELECT payload, version
FROM learner_states
WHERE learner_id = $1`

const insertSQL = `
INSERT INTO learner_states (learner_id, payload, version, updated_at)
VALUES ($1, $2, 1, now())
ON CONFLICT (learner_id) DO NOTHING`

const updateSQL = `
UPDATE learner_states
SET payload = $2, version = version + 1, updated_at = now()
WHERE learner_id = $1 AND version = $3`

const deleteSQL = `DELETE FROM learner_states WHERE learner_id = $1`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Get loads a learner's state. Returns domain.ErrNotFound when the learner
// has no saved state. The loaded state is normalized before returning.
func (r *Repo) Get(ctx context.Context, learnerID string) (*domain.AdaptiveState, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		raw     []byte
		version int64
	)
	if err := q.QueryRow(ctx, getSQL, learnerID).Scan(&raw, &version); err != nil {
		return nil, postgres.MapError(err, "learner_state", learnerID)
	}

	var p statePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("learner_state %s: decode payload: %w", learnerID, err)
	}

	state := p.toDomain(learnerID)
	state.Version = version
	state.Normalize()

	return state, nil
}

// Save persists a learner's state with optimistic concurrency control.
// A state with Version 0 is inserted; any other version is updated with a
// compare-and-swap on the version column. Returns domain.ErrConflict when
// the row was created or modified concurrently; the caller should reload
// and retry. On success the state's Version is advanced in place.
func (r *Repo) Save(ctx context.Context, state *domain.AdaptiveState) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	raw, err := json.Marshal(fromDomain(state))
	if err != nil {
		return fmt.Errorf("learner_state %s: encode payload: %w", state.LearnerID, err)
	}

	if state.Version == 0 {
		tag, err := q.Exec(ctx, insertSQL, state.LearnerID, raw)
		if err != nil {
			return postgres.MapError(err, "learner_state", state.LearnerID)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("learner_state %s: %w", state.LearnerID, domain.ErrConflict)
		}
		state.Version = 1
		return nil
	}

	tag, err := q.Exec(ctx, updateSQL, state.LearnerID, raw, state.Version)
	if err != nil {
		return postgres.MapError(err, "learner_state", state.LearnerID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("learner_state %s: %w", state.LearnerID, domain.ErrConflict)
	}
	state.Version++

	return nil
}

// Delete removes a learner's state. Not an error if no state exists.
func (r *Repo) Delete(ctx context.Context, learnerID string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, deleteSQL, learnerID); err != nil {
		return postgres.MapError(err, "learner_state", learnerID)
	}

	return nil
}

// ---------------------------------------------------------------------------
// JSONB payload
// ---------------------------------------------------------------------------

// statePayload is the stored shape of an AdaptiveState. Maps are flattened
// into sorted lists so the payload is deterministic and diffable.
type statePayload struct {
	CurrentDifficulty      string          `json:"currentDifficulty"`
	TotalQuestionsAnswered int             `json:"totalQuestionsAnswered"`
	RecentAnswers          []bool          `json:"recentAnswers"`
	Parts                  []partPayload   `json:"parts"`
	Records                []recordPayload `json:"records"`
	LastQuestionIDs        []string        `json:"lastQuestionIds"`
	SessionStart           *time.Time      `json:"sessionStart,omitempty"`
	SessionQuestions       int             `json:"sessionQuestions"`
	SessionCount           int             `json:"sessionCount"`
}

type partPayload struct {
	Part               string              `json:"part"`
	QuestionsAttempted int                 `json:"questionsAttempted"`
	Accuracy           float64             `json:"accuracy"`
	RecentAccuracy     float64             `json:"recentAccuracy"`
	NeedsWork          bool                `json:"needsWork"`
	LastPracticed      *time.Time          `json:"lastPracticed,omitempty"`
	MasteredConcepts   []string            `json:"masteredConcepts"`
	StruggleConcepts   []string            `json:"struggleConcepts"`
	Domains            []domainStatPayload `json:"domains"`
}

type domainStatPayload struct {
	DomainID  string `json:"domainId"`
	Attempted int    `json:"attempted"`
	Correct   int    `json:"correct"`
}

type recordPayload struct {
	QuestionID     string    `json:"questionId"`
	Attempts       int       `json:"attempts"`
	CorrectCount   int       `json:"correctCount"`
	LastAttempted  time.Time `json:"lastAttempted"`
	LastResult     bool      `json:"lastResult"`
	EaseFactor     float64   `json:"easeFactor"`
	IntervalDays   int       `json:"intervalDays"`
	NextReviewDate time.Time `json:"nextReviewDate"`
	Lapses         int       `json:"lapses"`
	Stability      float64   `json:"stability"`
	LastResponseMs int       `json:"lastResponseMs"`
	AvgResponseMs  float64   `json:"avgResponseMs"`
}

// ---------------------------------------------------------------------------
// Mapping helpers: domain <-> payload
// ---------------------------------------------------------------------------

func fromDomain(s *domain.AdaptiveState) statePayload {
	p := statePayload{
		CurrentDifficulty:      s.CurrentDifficulty.String(),
		TotalQuestionsAnswered: s.TotalQuestionsAnswered,
		RecentAnswers:          s.RecentAnswers,
		Parts:                  make([]partPayload, 0, len(s.Parts)),
		Records:                make([]recordPayload, 0, len(s.Records)),
		LastQuestionIDs:        s.LastQuestionIDs,
		SessionStart:           s.SessionStart,
		SessionQuestions:       s.SessionQuestions,
		SessionCount:           s.SessionCount,
	}
	if p.RecentAnswers == nil {
		p.RecentAnswers = []bool{}
	}
	if p.LastQuestionIDs == nil {
		p.LastQuestionIDs = []string{}
	}

	for _, perf := range s.Parts {
		p.Parts = append(p.Parts, fromDomainPart(perf))
	}
	sort.Slice(p.Parts, func(i, j int) bool { return p.Parts[i].Part < p.Parts[j].Part })

	for _, rec := range s.Records {
		p.Records = append(p.Records, recordPayload(*rec))
	}
	sort.Slice(p.Records, func(i, j int) bool { return p.Records[i].QuestionID < p.Records[j].QuestionID })

	return p
}

func fromDomainPart(perf *domain.PartPerformance) partPayload {
	pp := partPayload{
		Part:               perf.Part.String(),
		QuestionsAttempted: perf.QuestionsAttempted,
		Accuracy:           perf.Accuracy,
		RecentAccuracy:     perf.RecentAccuracy,
		NeedsWork:          perf.NeedsWork,
		LastPracticed:      perf.LastPracticed,
		MasteredConcepts:   perf.MasteredConcepts,
		StruggleConcepts:   perf.StruggleConcepts,
		Domains:            make([]domainStatPayload, 0, len(perf.Domains)),
	}
	if pp.MasteredConcepts == nil {
		pp.MasteredConcepts = []string{}
	}
	if pp.StruggleConcepts == nil {
		pp.StruggleConcepts = []string{}
	}
	for _, ds := range perf.Domains {
		pp.Domains = append(pp.Domains, domainStatPayload(ds))
	}
	sort.Slice(pp.Domains, func(i, j int) bool { return pp.Domains[i].DomainID < pp.Domains[j].DomainID })
	return pp
}

func (p statePayload) toDomain(learnerID string) *domain.AdaptiveState {
	s := &domain.AdaptiveState{
		LearnerID:              learnerID,
		CurrentDifficulty:      domain.Difficulty(p.CurrentDifficulty),
		TotalQuestionsAnswered: p.TotalQuestionsAnswered,
		RecentAnswers:          p.RecentAnswers,
		Parts:                  make(map[domain.ExamPart]*domain.PartPerformance, len(p.Parts)),
		Records:                make(map[string]*domain.ReviewRecord, len(p.Records)),
		LastQuestionIDs:        p.LastQuestionIDs,
		SessionStart:           p.SessionStart,
		SessionQuestions:       p.SessionQuestions,
		SessionCount:           p.SessionCount,
	}

	for _, pp := range p.Parts {
		part := domain.ExamPart(pp.Part)
		perf := &domain.PartPerformance{
			Part:               part,
			QuestionsAttempted: pp.QuestionsAttempted,
			Accuracy:           pp.Accuracy,
			RecentAccuracy:     pp.RecentAccuracy,
			NeedsWork:          pp.NeedsWork,
			LastPracticed:      pp.LastPracticed,
			MasteredConcepts:   pp.MasteredConcepts,
			StruggleConcepts:   pp.StruggleConcepts,
			Domains:            make(map[string]domain.DomainStat, len(pp.Domains)),
		}
		for _, ds := range pp.Domains {
			perf.Domains[ds.DomainID] = domain.DomainStat(ds)
		}
		s.Parts[part] = perf
	}

	for _, rp := range p.Records {
		rec := domain.ReviewRecord(rp)
		s.Records[rp.QuestionID] = &rec
	}

	return s
}
