package domain

import "time"

// CramTopic is a high-yield review topic in the static catalog.
// Immutable configuration data.
type CramTopic struct {
	ID               string        `json:"id"`
	Part             ExamPart      `json:"part"`
	Domain           string        `json:"domain"`
	Title            string        `json:"title"`
	Priority         TopicPriority `json:"priority"`
	EstimatedMinutes int           `json:"estimatedMinutes"`
}

// CramFormula is an essential formula in the static catalog.
type CramFormula struct {
	ID      string   `json:"id"`
	Part    ExamPart `json:"part"`
	Name    string   `json:"name"`
	Formula string   `json:"formula"`
}

// CramDayPlan is the static template for one day of the intensive plan.
// Never mutated at runtime.
type CramDayPlan struct {
	Day               int      `json:"day"`
	Title             string   `json:"title"`
	FocusDomains      []string `json:"focusDomains"`
	Topics            []string `json:"topics"`
	Formulas          []string `json:"formulas"`
	PracticeQuestions int      `json:"practiceQuestions"`
	EstimatedHours    float64  `json:"estimatedHours"`
}

// CramState is a learner's progress through a part's day plan.
// Created on cram start, cleared from the store on cram end.
type CramState struct {
	LearnerID         string              `json:"learnerId"`
	Part              ExamPart            `json:"part"`
	CurrentDay        int                 `json:"currentDay"`
	StartDate         time.Time           `json:"startDate"`
	CompletedTopics   map[string]struct{} `json:"-"`
	FormulasReviewed  map[string]struct{} `json:"-"`
	QuestionsAnswered int                 `json:"questionsAnswered"`
	CorrectAnswers    int                 `json:"correctAnswers"`
	IsActive          bool                `json:"isActive"`
}

// NewCramState returns the day-1 state for a learner starting a part plan.
func NewCramState(learnerID string, part ExamPart, now time.Time) *CramState {
	return &CramState{
		LearnerID:        learnerID,
		Part:             part,
		CurrentDay:       1,
		StartDate:        now,
		CompletedTopics:  make(map[string]struct{}),
		FormulasReviewed: make(map[string]struct{}),
		IsActive:         true,
	}
}

// Accuracy returns the cram tally's percentage accuracy, 0 before any
// question is recorded.
func (s *CramState) Accuracy() float64 {
	if s.QuestionsAnswered == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.QuestionsAnswered) * 100
}

// CramResult is returned when cram mode ends.
type CramResult struct {
	Accuracy        float64 `json:"accuracy"`
	TopicsCompleted int     `json:"topicsCompleted"`
}

// CramOverallProgress summarizes progress across the whole plan.
type CramOverallProgress struct {
	DaysCompleted   int     `json:"daysCompleted"`
	TotalDays       int     `json:"totalDays"`
	TopicsCompleted int     `json:"topicsCompleted"`
	TotalTopics     int     `json:"totalTopics"`
	Accuracy        float64 `json:"accuracy"`
	ReadyForExam    bool    `json:"readyForExam"`
}
