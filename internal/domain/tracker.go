package domain

import (
	"math"
	"time"
)

// SM-2 bounds shared by the tracker and state normalization.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5
	MinIntervalDays   = 1
)

// Window sizes for the bounded history collections.
const (
	RecentAnswersWindow   = 20
	RecentAccuracyWindow  = 10
	AntiRepetitionWindow  = 50
	MinStability          = 0.4
	MaxStability          = 365
)

// ReviewRecord is one question's spaced-repetition schedule.
// Created on the first attempt, updated on every attempt, never deleted.
type ReviewRecord struct {
	QuestionID     string    `json:"questionId"`
	Attempts       int       `json:"attempts"`
	CorrectCount   int       `json:"correctCount"`
	LastAttempted  time.Time `json:"lastAttempted"`
	LastResult     bool      `json:"lastResult"`
	EaseFactor     float64   `json:"easeFactor"` // 1.3-2.5
	IntervalDays   int       `json:"intervalDays"`
	NextReviewDate time.Time `json:"nextReviewDate"`
	Lapses         int       `json:"lapses"`
	Stability      float64   `json:"stability"` // expected days until recall drops to ~90%
	LastResponseMs int       `json:"lastResponseMs"`
	AvgResponseMs  float64   `json:"avgResponseMs"`
}

// IsDue reports whether the record's next review date has passed.
func (r *ReviewRecord) IsDue(now time.Time) bool {
	return !r.NextReviewDate.After(now)
}

// Retrievability estimates the probability of recalling the question at
// the given time, via exponential decay over the record's stability:
// R = exp(-t/S) with t in days since the last attempt.
func (r *ReviewRecord) Retrievability(now time.Time) float64 {
	days := now.Sub(r.LastAttempted).Hours() / 24
	if days < 0 {
		days = 0
	}
	s := r.Stability
	if s <= 0 {
		s = 1
	}
	return math.Exp(-days / s)
}

// DomainStat tracks accuracy within one content domain of a part.
type DomainStat struct {
	DomainID  string `json:"domainId"`
	Attempted int    `json:"attempted"`
	Correct   int    `json:"correct"`
}

// Accuracy returns the domain's percentage accuracy, 0 when untouched.
func (d DomainStat) Accuracy() float64 {
	if d.Attempted == 0 {
		return 0
	}
	return float64(d.Correct) / float64(d.Attempted) * 100
}

// PartPerformance holds rolling stats for one exam part.
type PartPerformance struct {
	Part               ExamPart              `json:"part"`
	QuestionsAttempted int                   `json:"questionsAttempted"`
	Accuracy           float64               `json:"accuracy"`       // all-time, 0-100
	RecentAccuracy     float64               `json:"recentAccuracy"` // last-10 global window, 0-100
	NeedsWork          bool                  `json:"needsWork"`
	LastPracticed      *time.Time            `json:"lastPracticed"`
	MasteredConcepts   []string              `json:"masteredConcepts"`
	StruggleConcepts   []string              `json:"struggleConcepts"`
	Domains            map[string]DomainStat `json:"-"`
}

// AdaptiveState is the aggregate root for one learner's tracker state.
type AdaptiveState struct {
	LearnerID              string                       `json:"learnerId"`
	CurrentDifficulty      Difficulty                   `json:"currentDifficulty"`
	TotalQuestionsAnswered int                          `json:"totalQuestionsAnswered"`
	RecentAnswers          []bool                       `json:"recentAnswers"` // capped at RecentAnswersWindow
	Parts                  map[ExamPart]*PartPerformance `json:"-"`
	Records                map[string]*ReviewRecord      `json:"-"`
	LastQuestionIDs        []string                     `json:"lastQuestionIds"` // capped at AntiRepetitionWindow
	SessionStart           *time.Time                   `json:"sessionStart"`
	SessionQuestions       int                          `json:"sessionQuestions"`
	SessionCount           int                          `json:"sessionCount"`

	// Version is the optimistic-concurrency token managed by the
	// persistence layer. Zero for a state that has never been saved.
	Version int64 `json:"-"`
}

// NewAdaptiveState returns the default state for a learner: medium
// difficulty, zeroed counters, one PartPerformance per known part with
// NeedsWork set.
func NewAdaptiveState(learnerID string) *AdaptiveState {
	parts := make(map[ExamPart]*PartPerformance, len(AllParts()))
	for _, p := range AllParts() {
		parts[p] = NewPartPerformance(p)
	}
	return &AdaptiveState{
		LearnerID:         learnerID,
		CurrentDifficulty: DifficultyMedium,
		RecentAnswers:     []bool{},
		Parts:             parts,
		Records:           make(map[string]*ReviewRecord),
		LastQuestionIDs:   []string{},
	}
}

// NewPartPerformance returns a fresh per-part entry. A part with no
// history always needs work.
func NewPartPerformance(part ExamPart) *PartPerformance {
	return &PartPerformance{
		Part:             part,
		NeedsWork:        true,
		MasteredConcepts: []string{},
		StruggleConcepts: []string{},
		Domains:          make(map[string]DomainStat),
	}
}

// Normalize repairs a state loaded from storage: clamps SM-2 fields to
// their legal ranges, trims oversized windows, and backfills collections
// that older payloads may lack. Safe to call on a fresh state.
func (s *AdaptiveState) Normalize() {
	if !s.CurrentDifficulty.IsValid() {
		s.CurrentDifficulty = DifficultyMedium
	}
	if s.RecentAnswers == nil {
		s.RecentAnswers = []bool{}
	}
	if len(s.RecentAnswers) > RecentAnswersWindow {
		s.RecentAnswers = s.RecentAnswers[len(s.RecentAnswers)-RecentAnswersWindow:]
	}
	if s.LastQuestionIDs == nil {
		s.LastQuestionIDs = []string{}
	}
	if len(s.LastQuestionIDs) > AntiRepetitionWindow {
		s.LastQuestionIDs = s.LastQuestionIDs[len(s.LastQuestionIDs)-AntiRepetitionWindow:]
	}

	if s.Parts == nil {
		s.Parts = make(map[ExamPart]*PartPerformance, len(AllParts()))
	}
	for _, p := range AllParts() {
		perf, ok := s.Parts[p]
		if !ok || perf == nil {
			s.Parts[p] = NewPartPerformance(p)
			continue
		}
		perf.Part = p
		if perf.MasteredConcepts == nil {
			perf.MasteredConcepts = []string{}
		}
		if perf.StruggleConcepts == nil {
			perf.StruggleConcepts = []string{}
		}
		if perf.Domains == nil {
			perf.Domains = make(map[string]DomainStat)
		}
	}

	if s.Records == nil {
		s.Records = make(map[string]*ReviewRecord)
	}
	for id, rec := range s.Records {
		if rec == nil {
			delete(s.Records, id)
			continue
		}
		rec.QuestionID = id
		if rec.EaseFactor < MinEaseFactor {
			rec.EaseFactor = MinEaseFactor
		}
		if rec.EaseFactor > MaxEaseFactor {
			rec.EaseFactor = MaxEaseFactor
		}
		if rec.IntervalDays < MinIntervalDays {
			rec.IntervalDays = MinIntervalDays
		}
		if rec.Stability < MinStability {
			rec.Stability = MinStability
		}
		if rec.Stability > MaxStability {
			rec.Stability = MaxStability
		}
	}
}

// RecentAccuracy returns the percentage of true entries among the last n
// answers of the global window. Returns 0 for an empty window.
func (s *AdaptiveState) RecentAccuracy(n int) float64 {
	window := s.RecentAnswers
	if n > 0 && len(window) > n {
		window = window[len(window)-n:]
	}
	if len(window) == 0 {
		return 0
	}
	correct := 0
	for _, ok := range window {
		if ok {
			correct++
		}
	}
	return float64(correct) / float64(len(window)) * 100
}

// Question is the minimal candidate-pool shape consumed by selection.
// Content fields live with the out-of-scope delivery layer.
type Question struct {
	ID         string     `json:"id"`
	Part       ExamPart   `json:"part"`
	Domain     string     `json:"domain,omitempty"`
	Difficulty Difficulty `json:"difficulty"`
}

// SelectionReason explains which tier picked a question.
type SelectionReason string

const (
	SelectionReasonReviewDue       SelectionReason = "REVIEW_DUE"
	SelectionReasonWeakPart        SelectionReason = "WEAK_PART"
	SelectionReasonDifficultyMatch SelectionReason = "DIFFICULTY_MATCH"
	SelectionReasonBalanced        SelectionReason = "BALANCED"
)

// SelectedQuestion is a pool question annotated with its selection tier.
type SelectedQuestion struct {
	Question
	Reason SelectionReason `json:"reason"`
}

// PartBreakdown is one part's line in the performance summary.
type PartBreakdown struct {
	Part               ExamPart `json:"part"`
	Accuracy           float64  `json:"accuracy"`
	RecentAccuracy     float64  `json:"recentAccuracy"`
	QuestionsAttempted int      `json:"questionsAttempted"`
	NeedsWork          bool     `json:"needsWork"`
}

// PerformanceSummary is the tracker's aggregate view for one learner.
type PerformanceSummary struct {
	TotalQuestions    int             `json:"totalQuestions"`
	OverallAccuracy   float64         `json:"overallAccuracy"` // global recent-window accuracy
	CurrentDifficulty Difficulty      `json:"currentDifficulty"`
	ReadinessScore    float64         `json:"readinessScore"` // 0.6×accuracy + 0.4×coverage
	Parts             []PartBreakdown `json:"parts"`
	WeakParts         []ExamPart      `json:"weakParts"`
	StrongParts       []ExamPart      `json:"strongParts"`
}

// SessionSummary is returned when a practice session ends.
type SessionSummary struct {
	DurationMinutes   int     `json:"durationMinutes"`
	QuestionsAnswered int     `json:"questionsAnswered"`
	RecentAccuracy    float64 `json:"recentAccuracy"`
}
