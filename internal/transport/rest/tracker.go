package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/examready/backend/internal/domain"
	"github.com/examready/backend/internal/service/tracker"
	"github.com/examready/backend/pkg/ctxutil"
)

// trackerService defines the minimal interface needed by TrackerHandler.
type trackerService interface {
	RecordAnswer(ctx context.Context, input tracker.RecordAnswerInput) (*domain.AdaptiveState, error)
	SelectQuestions(ctx context.Context, input tracker.SelectQuestionsInput) ([]domain.SelectedQuestion, error)
	GetPerformanceSummary(ctx context.Context, learnerID string) (*domain.PerformanceSummary, error)
	DueForReview(ctx context.Context, learnerID string) ([]string, error)
	WeakParts(ctx context.Context, learnerID string) ([]domain.ExamPart, error)
	CurrentDifficulty(ctx context.Context, learnerID string) (domain.Difficulty, error)
	StartSession(ctx context.Context, learnerID string) error
	EndSession(ctx context.Context, learnerID string) (*domain.SessionSummary, error)
	ResetProgress(ctx context.Context, learnerID string) error
}

// TrackerHandler serves the performance tracker endpoints.
type TrackerHandler struct {
	svc trackerService
	log *slog.Logger
}

// NewTrackerHandler creates a TrackerHandler.
func NewTrackerHandler(svc trackerService, logger *slog.Logger) *TrackerHandler {
	return &TrackerHandler{svc: svc, log: logger.With("handler", "tracker")}
}

type recordAnswerRequest struct {
	QuestionID string `json:"questionId"`
	Part       string `json:"part"`
	Domain     string `json:"domain,omitempty"`
	Concept    string `json:"concept,omitempty"`
	Correct    bool   `json:"correct"`
	ResponseMs int    `json:"responseMs,omitempty"`
}

type recordAnswerResponse struct {
	CurrentDifficulty string `json:"currentDifficulty"`
	TotalQuestions    int    `json:"totalQuestions"`
	SessionQuestions  int    `json:"sessionQuestions"`
}

type selectQuestionsRequest struct {
	Pool      []domain.Question `json:"pool"`
	Count     int               `json:"count"`
	FocusPart string            `json:"focusPart,omitempty"`
}

// RecordAnswer handles POST /learners/{learnerID}/answers.
func (h *TrackerHandler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	var req recordAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.svc.RecordAnswer(ctx, tracker.RecordAnswerInput{
		LearnerID:  learnerID,
		QuestionID: req.QuestionID,
		Part:       domain.ExamPart(req.Part),
		Domain:     req.Domain,
		Concept:    req.Concept,
		Correct:    req.Correct,
		ResponseMs: req.ResponseMs,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, recordAnswerResponse{
		CurrentDifficulty: state.CurrentDifficulty.String(),
		TotalQuestions:    state.TotalQuestionsAnswered,
		SessionQuestions:  state.SessionQuestions,
	})
}

// SelectQuestions handles POST /learners/{learnerID}/questions/select.
func (h *TrackerHandler) SelectQuestions(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	var req selectQuestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := tracker.SelectQuestionsInput{
		LearnerID: learnerID,
		Pool:      req.Pool,
		Count:     req.Count,
	}
	if req.FocusPart != "" {
		part := domain.ExamPart(req.FocusPart)
		input.FocusPart = &part
	}

	selected, err := h.svc.SelectQuestions(ctx, input)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"questions": selected})
}

// Summary handles GET /learners/{learnerID}/summary.
func (h *TrackerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	summary, err := h.svc.GetPerformanceSummary(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// DueForReview handles GET /learners/{learnerID}/review/due.
func (h *TrackerHandler) DueForReview(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	due, err := h.svc.DueForReview(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questionIds": due})
}

// WeakParts handles GET /learners/{learnerID}/parts/weak.
func (h *TrackerHandler) WeakParts(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	parts, err := h.svc.WeakParts(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"parts": parts})
}

// Difficulty handles GET /learners/{learnerID}/difficulty.
func (h *TrackerHandler) Difficulty(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	difficulty, err := h.svc.CurrentDifficulty(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"difficulty": difficulty.String()})
}

// StartSession handles POST /learners/{learnerID}/sessions.
func (h *TrackerHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	if err := h.svc.StartSession(ctx, learnerID); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EndSession handles POST /learners/{learnerID}/sessions/end.
func (h *TrackerHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	summary, err := h.svc.EndSession(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ResetProgress handles DELETE /learners/{learnerID}/progress.
func (h *TrackerHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	if err := h.svc.ResetProgress(ctx, learnerID); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
