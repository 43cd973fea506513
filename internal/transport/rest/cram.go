package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/examready/backend/internal/domain"
	"github.com/examready/backend/pkg/ctxutil"
)

// cramService defines the minimal interface needed by CramHandler.
type cramService interface {
	StartCram(ctx context.Context, learnerID string, part domain.ExamPart) (*domain.CramState, error)
	EndCram(ctx context.Context, learnerID string) (domain.CramResult, error)
	GetTodaysPlan(ctx context.Context, learnerID string) (*domain.CramDayPlan, error)
	GetTodaysTopics(ctx context.Context, learnerID string) ([]domain.CramTopic, error)
	GetTodaysFormulas(ctx context.Context, learnerID string) ([]domain.CramFormula, error)
	CompleteTopic(ctx context.Context, learnerID, topicID string) error
	ReviewFormula(ctx context.Context, learnerID, formulaID string) error
	RecordQuestion(ctx context.Context, learnerID string, correct bool) error
	AdvanceToNextDay(ctx context.Context, learnerID string) (bool, error)
	GetDayProgress(ctx context.Context, learnerID string) (int, error)
	GetOverallProgress(ctx context.Context, learnerID string) (domain.CramOverallProgress, error)
	GetCriticalTopics(part domain.ExamPart) ([]domain.CramTopic, error)
	FormulasForPart(part domain.ExamPart) ([]domain.CramFormula, error)
}

// CramHandler serves the final review sprint endpoints.
type CramHandler struct {
	svc cramService
	log *slog.Logger
}

// NewCramHandler creates a CramHandler.
func NewCramHandler(svc cramService, logger *slog.Logger) *CramHandler {
	return &CramHandler{svc: svc, log: logger.With("handler", "cram")}
}

type startCramRequest struct {
	Part string `json:"part"`
}

type recordCramQuestionRequest struct {
	Correct bool `json:"correct"`
}

// StartCram handles POST /learners/{learnerID}/cram.
func (h *CramHandler) StartCram(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	var req startCramRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.svc.StartCram(ctx, learnerID, domain.ExamPart(req.Part))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

// EndCram handles DELETE /learners/{learnerID}/cram.
func (h *CramHandler) EndCram(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	result, err := h.svc.EndCram(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// TodaysPlan handles GET /learners/{learnerID}/cram/today.
func (h *CramHandler) TodaysPlan(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	plan, err := h.svc.GetTodaysPlan(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "no active cram session")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// TodaysTopics handles GET /learners/{learnerID}/cram/today/topics.
func (h *CramHandler) TodaysTopics(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	topics, err := h.svc.GetTodaysTopics(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

// TodaysFormulas handles GET /learners/{learnerID}/cram/today/formulas.
func (h *CramHandler) TodaysFormulas(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	formulas, err := h.svc.GetTodaysFormulas(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"formulas": formulas})
}

// CompleteTopic handles POST /learners/{learnerID}/cram/topics/{topicID}/complete.
func (h *CramHandler) CompleteTopic(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	if err := h.svc.CompleteTopic(ctx, learnerID, r.PathValue("topicID")); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReviewFormula handles POST /learners/{learnerID}/cram/formulas/{formulaID}/review.
func (h *CramHandler) ReviewFormula(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	if err := h.svc.ReviewFormula(ctx, learnerID, r.PathValue("formulaID")); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordQuestion handles POST /learners/{learnerID}/cram/questions.
func (h *CramHandler) RecordQuestion(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	var req recordCramQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.RecordQuestion(ctx, learnerID, req.Correct); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdvanceDay handles POST /learners/{learnerID}/cram/advance.
func (h *CramHandler) AdvanceDay(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	advanced, err := h.svc.AdvanceToNextDay(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"advanced": advanced})
}

// DayProgress handles GET /learners/{learnerID}/cram/progress/day.
func (h *CramHandler) DayProgress(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	progress, err := h.svc.GetDayProgress(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"progress": progress})
}

// OverallProgress handles GET /learners/{learnerID}/cram/progress.
func (h *CramHandler) OverallProgress(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	progress, err := h.svc.GetOverallProgress(ctx, learnerID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// CriticalTopics handles GET /cram/{part}/topics/critical.
func (h *CramHandler) CriticalTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.svc.GetCriticalTopics(domain.ExamPart(r.PathValue("part")))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

// Formulas handles GET /cram/{part}/formulas.
func (h *CramHandler) Formulas(w http.ResponseWriter, r *http.Request) {
	formulas, err := h.svc.FormulasForPart(domain.ExamPart(r.PathValue("part")))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"formulas": formulas})
}
