package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/examready/backend/internal/domain"
	"github.com/examready/backend/internal/service/predictor"
	"github.com/examready/backend/pkg/ctxutil"
)

// predictorService defines the minimal interface needed by PredictorHandler.
type predictorService interface {
	PredictScore(ctx context.Context, input predictor.PredictInput) (domain.Prediction, error)
	PredictAllParts(ctx context.Context, learnerID string, mocks map[domain.ExamPart][]float64) (domain.AllPartsPrediction, error)
	QuickPrediction(ctx context.Context, learnerID string, part domain.ExamPart) (domain.QuickPrediction, error)
	EstimatedReadyDate(ctx context.Context, learnerID string, part domain.ExamPart) (time.Time, error)
}

// PredictorHandler serves the score prediction endpoints.
type PredictorHandler struct {
	svc predictorService
	log *slog.Logger
}

// NewPredictorHandler creates a PredictorHandler.
func NewPredictorHandler(svc predictorService, logger *slog.Logger) *PredictorHandler {
	return &PredictorHandler{svc: svc, log: logger.With("handler", "predictor")}
}

type predictScoreRequest struct {
	MockScores []float64 `json:"mockScores,omitempty"`
}

type predictAllPartsRequest struct {
	MockScores map[string][]float64 `json:"mockScores,omitempty"`
}

// PredictScore handles POST /learners/{learnerID}/predictions/{part}.
func (h *PredictorHandler) PredictScore(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	var req predictScoreRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	pred, err := h.svc.PredictScore(ctx, predictor.PredictInput{
		LearnerID:  learnerID,
		Part:       domain.ExamPart(r.PathValue("part")),
		MockScores: req.MockScores,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// PredictAllParts handles POST /learners/{learnerID}/predictions.
func (h *PredictorHandler) PredictAllParts(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	var req predictAllPartsRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var mocks map[domain.ExamPart][]float64
	if len(req.MockScores) > 0 {
		mocks = make(map[domain.ExamPart][]float64, len(req.MockScores))
		for part, scores := range req.MockScores {
			mocks[domain.ExamPart(part)] = scores
		}
	}

	pred, err := h.svc.PredictAllParts(ctx, learnerID, mocks)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// QuickPrediction handles GET /learners/{learnerID}/predictions/{part}/quick.
func (h *PredictorHandler) QuickPrediction(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	pred, err := h.svc.QuickPrediction(ctx, learnerID, domain.ExamPart(r.PathValue("part")))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// EstimatedReadyDate handles GET /learners/{learnerID}/predictions/{part}/ready-date.
func (h *PredictorHandler) EstimatedReadyDate(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	ctx := ctxutil.WithLearnerID(r.Context(), learnerID)

	date, err := h.svc.EstimatedReadyDate(ctx, learnerID, domain.ExamPart(r.PathValue("part")))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"readyDate": date.Format("2006-01-02")})
}
