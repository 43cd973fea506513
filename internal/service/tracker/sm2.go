package tracker

import (
	"math"
	"time"

	"github.com/examready/backend/internal/domain"
)

// firstCorrectInterval is the interval (days) granted when a question is
// answered correctly on the very first attempt.
const firstCorrectInterval = 3

// relearnStabilityFactor halves a record's stability after a miss.
const relearnStabilityFactor = 0.5

// NewReviewRecord builds the schedule record for a question's first attempt.
// A first-try correct answer starts at full ease with a 3-day interval;
// a miss starts at minimum ease and comes back tomorrow.
func NewReviewRecord(questionID string, correct bool, now time.Time) *domain.ReviewRecord {
	rec := &domain.ReviewRecord{
		QuestionID:    questionID,
		Attempts:      1,
		LastAttempted: now,
		LastResult:    correct,
	}

	if correct {
		rec.CorrectCount = 1
		rec.EaseFactor = domain.DefaultEaseFactor
		rec.IntervalDays = firstCorrectInterval
	} else {
		rec.EaseFactor = domain.MinEaseFactor
		rec.IntervalDays = domain.MinIntervalDays
		rec.Lapses = 1
	}

	rec.NextReviewDate = now.AddDate(0, 0, rec.IntervalDays)
	rec.Stability = clampStability(float64(rec.IntervalDays))

	return rec
}

// ApplyReview is a pure function updating an existing record in place for
// one more attempt. No DB, no context, no logger.
//
// Correct: ease rises by 0.1 (capped), the interval multiplies by the new
// ease. Incorrect: ease drops by 0.2 (floored), the interval resets to one
// day and the lapse counter advances.
func ApplyReview(rec *domain.ReviewRecord, correct bool, now time.Time) {
	rec.Attempts++
	rec.LastAttempted = now
	rec.LastResult = correct

	if correct {
		rec.CorrectCount++
		rec.EaseFactor = math.Min(domain.MaxEaseFactor, rec.EaseFactor+0.1)
		rec.IntervalDays = int(math.Round(float64(rec.IntervalDays) * rec.EaseFactor))
		if rec.IntervalDays < domain.MinIntervalDays {
			rec.IntervalDays = domain.MinIntervalDays
		}
		// A longer committed interval means stronger memory.
		rec.Stability = clampStability(math.Max(rec.Stability, float64(rec.IntervalDays)))
	} else {
		rec.EaseFactor = math.Max(domain.MinEaseFactor, rec.EaseFactor-0.2)
		rec.IntervalDays = domain.MinIntervalDays
		rec.Lapses++
		rec.Stability = clampStability(rec.Stability * relearnStabilityFactor)
	}

	rec.NextReviewDate = now.AddDate(0, 0, rec.IntervalDays)
}

// RecordResponseTime folds one response time into the record's running
// average. Non-positive values are ignored.
func RecordResponseTime(rec *domain.ReviewRecord, responseMs int) {
	if responseMs <= 0 {
		return
	}
	rec.LastResponseMs = responseMs
	if rec.AvgResponseMs == 0 {
		rec.AvgResponseMs = float64(responseMs)
		return
	}
	// Running average over attempts; attempts was already advanced.
	n := float64(rec.Attempts)
	rec.AvgResponseMs = rec.AvgResponseMs + (float64(responseMs)-rec.AvgResponseMs)/n
}

func clampStability(s float64) float64 {
	if s < domain.MinStability {
		return domain.MinStability
	}
	if s > domain.MaxStability {
		return domain.MaxStability
	}
	return s
}
