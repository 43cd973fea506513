package cram

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/examready/backend/internal/config"
	"github.com/examready/backend/internal/domain"
)

func testCramConfig() config.CramConfig {
	return config.CramConfig{
		TopicCompletionGate: 80,
		AccuracyGate:        72,
	}
}

func newTestService(states stateRepo) *Service {
	return &Service{
		states: states,
		log:    slog.Default(),
		cfg:    testCramConfig(),
	}
}

// startedService returns a service backed by an in-memory repo with an
// active session for the learner.
func startedService(t *testing.T, learnerID string, part domain.ExamPart) *Service {
	t.Helper()
	svc := newTestService(newMemCramRepo())
	if _, err := svc.StartCram(context.Background(), learnerID, part); err != nil {
		t.Fatalf("StartCram: %v", err)
	}
	return svc
}

func TestStartCram(t *testing.T) {
	t.Parallel()

	svc := newTestService(newMemCramRepo())

	state, err := svc.StartCram(context.Background(), "l1", domain.PartCMA1)
	if err != nil {
		t.Fatalf("StartCram: %v", err)
	}
	if !state.IsActive {
		t.Error("IsActive = false after start")
	}
	if state.CurrentDay != 1 {
		t.Errorf("CurrentDay = %d, want 1", state.CurrentDay)
	}
	if state.QuestionsAnswered != 0 || state.CorrectAnswers != 0 {
		t.Error("counters not zeroed on start")
	}
	if len(state.CompletedTopics) != 0 || len(state.FormulasReviewed) != 0 {
		t.Error("completion sets not empty on start")
	}
}

func TestStartCram_ReplacesExistingSession(t *testing.T) {
	t.Parallel()

	svc := startedService(t, "l1", domain.PartCMA1)
	ctx := context.Background()

	if err := svc.RecordQuestion(ctx, "l1", true); err != nil {
		t.Fatalf("RecordQuestion: %v", err)
	}

	state, err := svc.StartCram(ctx, "l1", domain.PartCMA2)
	if err != nil {
		t.Fatalf("StartCram: %v", err)
	}
	if state.Part != domain.PartCMA2 {
		t.Errorf("Part = %v, want CMA2", state.Part)
	}
	if state.QuestionsAnswered != 0 {
		t.Errorf("QuestionsAnswered = %d, want a clean slate", state.QuestionsAnswered)
	}
}

func TestStartCram_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stateRepoMock{})
	if _, err := svc.StartCram(context.Background(), "", domain.PartCMA1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing learner: err = %v, want validation error", err)
	}
	if _, err := svc.StartCram(context.Background(), "l1", "CMA9"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad part: err = %v, want validation error", err)
	}
}

func TestEndCram_ReturnsResultAndClearsState(t *testing.T) {
	t.Parallel()

	svc := startedService(t, "l1", domain.PartCMA1)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := svc.RecordQuestion(ctx, "l1", i < 3); err != nil {
			t.Fatalf("RecordQuestion: %v", err)
		}
	}
	if err := svc.CompleteTopic(ctx, "l1", "cram-cma1-001"); err != nil {
		t.Fatalf("CompleteTopic: %v", err)
	}

	result, err := svc.EndCram(ctx, "l1")
	if err != nil {
		t.Fatalf("EndCram: %v", err)
	}
	if result.Accuracy != 75 {
		t.Errorf("Accuracy = %v, want 75", result.Accuracy)
	}
	if result.TopicsCompleted != 1 {
		t.Errorf("TopicsCompleted = %d, want 1", result.TopicsCompleted)
	}

	// The session is gone: mutations now fail and the plan is nil.
	if err := svc.RecordQuestion(ctx, "l1", true); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("RecordQuestion after end: err = %v, want not found", err)
	}
	plan, err := svc.GetTodaysPlan(ctx, "l1")
	if err != nil || plan != nil {
		t.Errorf("GetTodaysPlan after end = %v, %v; want nil, nil", plan, err)
	}
}

func TestEndCram_NoActiveSession(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stateRepoMock{})

	result, err := svc.EndCram(context.Background(), "l1")
	if err != nil {
		t.Fatalf("EndCram: %v", err)
	}
	if result.Accuracy != 0 || result.TopicsCompleted != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestGetTodaysPlan(t *testing.T) {
	t.Parallel()

	svc := startedService(t, "l1", domain.PartCMA1)

	plan, err := svc.GetTodaysPlan(context.Background(), "l1")
	if err != nil {
		t.Fatalf("GetTodaysPlan: %v", err)
	}
	if plan == nil {
		t.Fatal("plan = nil for an active session")
	}
	if plan.Day != 1 {
		t.Errorf("Day = %d, want 1", plan.Day)
	}
	if plan.Title != "Budgeting & Forecasting" {
		t.Errorf("Title = %q, want the day-1 plan", plan.Title)
	}
}

func TestGetTodaysTopicsAndFormulas(t *testing.T) {
	t.Parallel()

	svc := startedService(t, "l1", domain.PartCMA2)
	ctx := context.Background()

	topics, err := svc.GetTodaysTopics(ctx, "l1")
	if err != nil {
		t.Fatalf("GetTodaysTopics: %v", err)
	}
	if len(topics) != 1 || topics[0].ID != "cram-cma2-001" {
		t.Errorf("topics = %v, want the single day-1 topic", topics)
	}

	formulas, err := svc.GetTodaysFormulas(ctx, "l1")
	if err != nil {
		t.Fatalf("GetTodaysFormulas: %v", err)
	}
	if len(formulas) != 1 || formulas[0].ID != "formula-008" {
		t.Errorf("formulas = %v, want the single day-1 formula", formulas)
	}
}

func TestCompleteTopic_Idempotent(t *testing.T) {
	t.Parallel()

	svc := startedService(t, "l1", domain.PartCMA1)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := svc.CompleteTopic(ctx, "l1", "cram-cma1-001"); err != nil {
			t.Fatalf("CompleteTopic: %v", err)
		}
	}

	progress, err := svc.GetOverallProgress(ctx, "l1")
	if err != nil {
		t.Fatalf("GetOverallProgress: %v", err)
	}
	if progress.TopicsCompleted != 1 {
		t.Errorf("TopicsCompleted = %d, want 1 after repeats", progress.TopicsCompleted)
	}
}

func TestCompleteTopic_NoActiveSession(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stateRepoMock{})
	if err := svc.CompleteTopic(context.Background(), "l1", "cram-cma1-001"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestAdvanceToNextDay_StopsAtFinalDay(t *testing.T) {
	t.Parallel()

	svc := startedService(t, "l1", domain.PartCMA1)
	ctx := context.Background()

	for day := 1; day < 5; day++ {
		ok, err := svc.AdvanceToNextDay(ctx, "l1")
		if err != nil {
			t.Fatalf("AdvanceToNextDay: %v", err)
		}
		if !ok {
			t.Fatalf("advance from day %d refused", day)
		}
	}

	ok, err := svc.AdvanceToNextDay(ctx, "l1")
	if err != nil {
		t.Fatalf("AdvanceToNextDay: %v", err)
	}
	if ok {
		t.Error("advance past the final day reported true")
	}

	plan, err := svc.GetTodaysPlan(ctx, "l1")
	if err != nil {
		t.Fatalf("GetTodaysPlan: %v", err)
	}
	if plan.Day != 5 {
		t.Errorf("Day = %d after refused advance, want 5", plan.Day)
	}
}

func TestGetDayProgress_NothingDone(t *testing.T) {
	t.Parallel()

	// CMA1 day 2 schedules both topics and formulas: an untouched day
	// scores zero.
	svc := startedService(t, "l1", domain.PartCMA1)
	ctx := context.Background()

	if _, err := svc.AdvanceToNextDay(ctx, "l1"); err != nil {
		t.Fatalf("AdvanceToNextDay: %v", err)
	}
	progress, err := svc.GetDayProgress(ctx, "l1")
	if err != nil {
		t.Fatalf("GetDayProgress: %v", err)
	}
	if progress != 0 {
		t.Errorf("progress = %d, want 0 with nothing done", progress)
	}
}

func TestDayProgressFor_ZeroQuestionTargetEarnsFullCredit(t *testing.T) {
	t.Parallel()

	// A day with no practice target cannot divide by it; the question
	// share counts as complete, like any unscheduled category.
	state := domain.NewCramState("l1", domain.PartCMA1, time.Now().UTC())
	plan := &domain.CramDayPlan{
		Day:               1,
		Topics:            []string{"cram-cma1-001"},
		PracticeQuestions: 0,
	}

	if got := dayProgressFor(state, plan); got != 70 {
		t.Errorf("progress = %d, want 70 (formula and question credit only)", got)
	}

	state.CompletedTopics["cram-cma1-001"] = struct{}{}
	if got := dayProgressFor(state, plan); got != 100 {
		t.Errorf("progress = %d, want 100 once the topic is done", got)
	}
}

func TestGetDayProgress_UnscheduledCategoriesEarnFullCredit(t *testing.T) {
	t.Parallel()

	// CMA1 day 1 schedules no formulas, so the formula weight is granted
	// outright.
	svc := startedService(t, "l1", domain.PartCMA1)

	progress, err := svc.GetDayProgress(context.Background(), "l1")
	if err != nil {
		t.Fatalf("GetDayProgress: %v", err)
	}
	if progress != formulasWeight {
		t.Errorf("progress = %d, want just the formula credit %d", progress, formulasWeight)
	}
}

func TestGetDayProgress_WeightsCombine(t *testing.T) {
	t.Parallel()

	svc := startedService(t, "l1", domain.PartCMA1)
	ctx := context.Background()

	// Day 1: two topics, no formulas, 30 questions.
	if err := svc.CompleteTopic(ctx, "l1", "cram-cma1-001"); err != nil {
		t.Fatalf("CompleteTopic: %v", err)
	}
	for i := 0; i < 15; i++ {
		if err := svc.RecordQuestion(ctx, "l1", true); err != nil {
			t.Fatalf("RecordQuestion: %v", err)
		}
	}

	progress, err := svc.GetDayProgress(ctx, "l1")
	if err != nil {
		t.Fatalf("GetDayProgress: %v", err)
	}
	// 30*(1/2) + 20 + 50*(15/30) = 60.
	if progress != 60 {
		t.Errorf("progress = %d, want 60", progress)
	}
}

func TestGetDayProgress_QuestionsCappedAtTarget(t *testing.T) {
	t.Parallel()

	svc := startedService(t, "l1", domain.PartCMA1)
	ctx := context.Background()

	for i := 0; i < 45; i++ {
		if err := svc.RecordQuestion(ctx, "l1", true); err != nil {
			t.Fatalf("RecordQuestion: %v", err)
		}
	}

	progress, err := svc.GetDayProgress(ctx, "l1")
	if err != nil {
		t.Fatalf("GetDayProgress: %v", err)
	}
	// Overshooting the 30-question target still caps the term at 50.
	if progress != formulasWeight+questionsWeight {
		t.Errorf("progress = %d, want %d", progress, formulasWeight+questionsWeight)
	}
}

func TestGetOverallProgress(t *testing.T) {
	t.Parallel()

	svc := startedService(t, "l1", domain.PartCMA1)
	ctx := context.Background()

	if _, err := svc.AdvanceToNextDay(ctx, "l1"); err != nil {
		t.Fatalf("AdvanceToNextDay: %v", err)
	}
	if err := svc.CompleteTopic(ctx, "l1", "cram-cma1-001"); err != nil {
		t.Fatalf("CompleteTopic: %v", err)
	}

	progress, err := svc.GetOverallProgress(ctx, "l1")
	if err != nil {
		t.Fatalf("GetOverallProgress: %v", err)
	}
	if progress.DaysCompleted != 1 {
		t.Errorf("DaysCompleted = %d, want 1", progress.DaysCompleted)
	}
	if progress.TotalDays != 5 {
		t.Errorf("TotalDays = %d, want 5", progress.TotalDays)
	}
	if progress.TopicsCompleted != 1 {
		t.Errorf("TopicsCompleted = %d, want 1", progress.TopicsCompleted)
	}
	if progress.TotalTopics != 7 {
		t.Errorf("TotalTopics = %d, want the full CMA1 catalog of 7", progress.TotalTopics)
	}
	if progress.ReadyForExam {
		t.Error("ReadyForExam = true with one topic and no accuracy")
	}
}

func TestGetOverallProgress_CountsOnlyPartTopics(t *testing.T) {
	t.Parallel()

	svc := startedService(t, "l1", domain.PartCMA1)
	ctx := context.Background()

	// A topic from the other part never counts toward this part's ratio.
	if err := svc.CompleteTopic(ctx, "l1", "cram-cma2-001"); err != nil {
		t.Fatalf("CompleteTopic: %v", err)
	}

	progress, err := svc.GetOverallProgress(ctx, "l1")
	if err != nil {
		t.Fatalf("GetOverallProgress: %v", err)
	}
	if progress.TopicsCompleted != 0 {
		t.Errorf("TopicsCompleted = %d, want 0", progress.TopicsCompleted)
	}
}

func TestGetOverallProgress_ReadyGate(t *testing.T) {
	t.Parallel()

	svc := startedService(t, "l1", domain.PartCMA1)
	ctx := context.Background()

	// Complete 6 of 7 topics (85%) at 80% accuracy: both gates pass.
	for _, id := range []string{
		"cram-cma1-001", "cram-cma1-002", "cram-cma1-003",
		"cram-cma1-004", "cram-cma1-005", "cram-cma1-006",
	} {
		if err := svc.CompleteTopic(ctx, "l1", id); err != nil {
			t.Fatalf("CompleteTopic: %v", err)
		}
	}
	for i := 0; i < 10; i++ {
		if err := svc.RecordQuestion(ctx, "l1", i < 8); err != nil {
			t.Fatalf("RecordQuestion: %v", err)
		}
	}

	progress, err := svc.GetOverallProgress(ctx, "l1")
	if err != nil {
		t.Fatalf("GetOverallProgress: %v", err)
	}
	if !progress.ReadyForExam {
		t.Errorf("ReadyForExam = false at %d/%d topics and %v%% accuracy",
			progress.TopicsCompleted, progress.TotalTopics, progress.Accuracy)
	}

	// Accuracy below the gate flips it back.
	for i := 0; i < 10; i++ {
		if err := svc.RecordQuestion(ctx, "l1", false); err != nil {
			t.Fatalf("RecordQuestion: %v", err)
		}
	}
	progress, err = svc.GetOverallProgress(ctx, "l1")
	if err != nil {
		t.Fatalf("GetOverallProgress: %v", err)
	}
	if progress.ReadyForExam {
		t.Errorf("ReadyForExam = true at %v%% accuracy", progress.Accuracy)
	}
}

func TestGetCriticalTopics(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stateRepoMock{})

	critical, err := svc.GetCriticalTopics(domain.PartCMA1)
	if err != nil {
		t.Fatalf("GetCriticalTopics: %v", err)
	}
	if len(critical) != 3 {
		t.Fatalf("got %d critical CMA1 topics, want 3", len(critical))
	}
	for _, topic := range critical {
		if topic.Priority != domain.TopicPriorityCritical {
			t.Errorf("topic %s priority = %v", topic.ID, topic.Priority)
		}
		if topic.Part != domain.PartCMA1 {
			t.Errorf("topic %s part = %v", topic.ID, topic.Part)
		}
	}
}

func TestFormulasForPart(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stateRepoMock{})

	cma1, err := svc.FormulasForPart(domain.PartCMA1)
	if err != nil {
		t.Fatalf("FormulasForPart: %v", err)
	}
	if len(cma1) != 2 {
		t.Errorf("got %d CMA1 formulas, want 2", len(cma1))
	}
	cma2, err := svc.FormulasForPart(domain.PartCMA2)
	if err != nil {
		t.Fatalf("FormulasForPart: %v", err)
	}
	if len(cma2) != 6 {
		t.Errorf("got %d CMA2 formulas, want 6", len(cma2))
	}
}

func TestSaveFailureDoesNotBlockSession(t *testing.T) {
	t.Parallel()

	stored := domain.NewCramState("l1", domain.PartCMA1, time.Now().UTC())
	svc := newTestService(&stateRepoMock{
		GetFunc: func(_ context.Context, _ string) (*domain.CramState, error) {
			return stored, nil
		},
		SaveFunc: func(_ context.Context, _ *domain.CramState) error {
			return errors.New("disk full")
		},
	})

	if err := svc.RecordQuestion(context.Background(), "l1", true); err != nil {
		t.Errorf("RecordQuestion with failing save: %v, want nil", err)
	}
	if stored.QuestionsAnswered != 1 {
		t.Errorf("QuestionsAnswered = %d, want the in-memory mutation applied", stored.QuestionsAnswered)
	}
}
