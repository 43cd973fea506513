package tracker

import (
	"github.com/examready/backend/internal/domain"
)

// RecordAnswerInput holds the parameters for recording one answered question.
type RecordAnswerInput struct {
	LearnerID  string
	QuestionID string
	Part       domain.ExamPart
	Domain     string // optional blueprint domain, e.g. "CMA1-A"
	Concept    string // optional concept tag for mastery tracking
	Correct    bool
	ResponseMs int // optional, 0 when unknown
}

// Validate checks all fields and collects all errors.
func (i *RecordAnswerInput) Validate() error {
	var errs []domain.FieldError

	if i.LearnerID == "" {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.QuestionID == "" {
		errs = append(errs, domain.FieldError{Field: "question_id", Message: "required"})
	}
	if !i.Part.IsValid() {
		errs = append(errs, domain.FieldError{Field: "part", Message: "must be CMA1 or CMA2"})
	}
	if i.Domain != "" && i.Part.IsValid() {
		if _, ok := domain.BlueprintWeights[i.Part][i.Domain]; !ok {
			errs = append(errs, domain.FieldError{Field: "domain", Message: "unknown domain for part"})
		}
	}
	if i.ResponseMs < 0 {
		errs = append(errs, domain.FieldError{Field: "response_ms", Message: "must be non-negative"})
	}
	if i.ResponseMs > 3_600_000 {
		errs = append(errs, domain.FieldError{Field: "response_ms", Message: "max 1 hour"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SelectQuestionsInput holds the parameters for adaptive question selection.
type SelectQuestionsInput struct {
	LearnerID string
	Pool      []domain.Question
	Count     int
	FocusPart *domain.ExamPart // nil: spread across weak parts
}

// Validate checks all fields and collects all errors.
func (i *SelectQuestionsInput) Validate() error {
	var errs []domain.FieldError

	if i.LearnerID == "" {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.Count < 1 || i.Count > 100 {
		errs = append(errs, domain.FieldError{Field: "count", Message: "must be between 1 and 100"})
	}
	if i.FocusPart != nil && !i.FocusPart.IsValid() {
		errs = append(errs, domain.FieldError{Field: "focus_part", Message: "must be CMA1 or CMA2"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
