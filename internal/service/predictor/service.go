// Package predictor projects a learner's practice history onto the
// certification exam's 0-500 scaled score: weighted domain accuracy, a
// confidence interval, a logistic pass probability, and the advice that
// follows from them.
package predictor

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/examready/backend/internal/config"
	"github.com/examready/backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type stateRepo interface {
	Get(ctx context.Context, learnerID string) (*domain.AdaptiveState, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service computes score predictions from tracker state. Read-only: it
// never writes learner state.
type Service struct {
	states stateRepo
	log    *slog.Logger
	cfg    config.PredictorConfig
	engine config.EngineConfig
}

// NewService creates a new predictor service.
func NewService(log *slog.Logger, states stateRepo, cfg config.PredictorConfig, engine config.EngineConfig) *Service {
	return &Service{
		states: states,
		log:    log.With("service", "predictor"),
		cfg:    cfg,
		engine: engine,
	}
}

// PredictInput carries one part's prediction request.
type PredictInput struct {
	LearnerID  string
	Part       domain.ExamPart
	MockScores []float64 // optional mock exam percentages, 0-100
}

// Validate checks all fields and collects all errors.
func (in *PredictInput) Validate() error {
	var errs []domain.FieldError

	if in.LearnerID == "" {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "is required"})
	}
	if !in.Part.IsValid() {
		errs = append(errs, domain.FieldError{Field: "part", Message: "unknown exam part"})
	}
	for _, m := range in.MockScores {
		if m < 0 || m > 100 {
			errs = append(errs, domain.FieldError{Field: "mock_scores", Message: "scores must be between 0 and 100"})
			break
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// loadState fetches a learner's state for a read-only projection. Missing
// or unreadable state projects as a fresh learner rather than an error.
func (s *Service) loadState(ctx context.Context, learnerID string) *domain.AdaptiveState {
	state, err := s.states.Get(ctx, learnerID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "load state failed, predicting from empty history",
				slog.String("learner_id", learnerID),
				slog.String("error", err.Error()),
			)
		}
		return domain.NewAdaptiveState(learnerID)
	}
	return state
}

// PredictScore produces the full prediction for one exam part.
func (s *Service) PredictScore(ctx context.Context, input PredictInput) (domain.Prediction, error) {
	if err := input.Validate(); err != nil {
		return domain.Prediction{}, err
	}

	state := s.loadState(ctx, input.LearnerID)
	pred := s.predictPart(state, input.Part, input.MockScores)

	s.log.InfoContext(ctx, "score predicted",
		slog.String("learner_id", input.LearnerID),
		slog.String("part", input.Part.String()),
		slog.Float64("scaled_score", pred.PredictedScore),
		slog.String("readiness", pred.ReadinessLevel.String()),
	)
	return pred, nil
}

// PredictAllParts predicts every exam part and aggregates: joint pass
// probability as the product of independent per-part probabilities,
// overall readiness as the worst per-part level, recommendations merged
// and de-duplicated.
func (s *Service) PredictAllParts(ctx context.Context, learnerID string, mocks map[domain.ExamPart][]float64) (domain.AllPartsPrediction, error) {
	if learnerID == "" {
		return domain.AllPartsPrediction{}, domain.NewValidationError("learner_id", "required")
	}

	state := s.loadState(ctx, learnerID)

	all := domain.AllPartsPrediction{
		Parts:            make(map[domain.ExamPart]domain.Prediction, len(domain.AllParts())),
		OverallReadiness: domain.ReadinessConfident,
	}
	jointProb := 1.0
	seen := make(map[string]struct{})

	for _, part := range domain.AllParts() {
		pred := s.predictPart(state, part, mocks[part])
		all.Parts[part] = pred
		all.OverallReadiness = domain.WorseOf(all.OverallReadiness, pred.ReadinessLevel)
		all.EstimatedTotalHours += pred.EstimatedStudyHours
		jointProb *= pred.PassProbability / 100

		for _, rec := range pred.Recommendations {
			if _, ok := seen[rec]; ok {
				continue
			}
			seen[rec] = struct{}{}
			all.Recommendations = append(all.Recommendations, rec)
		}
	}
	all.JointPassProbability = math.Round(jointProb*1000) / 10

	return all, nil
}

// QuickPrediction is the dashboard single-number view. It skips the
// domain decomposition and works from part-level accuracy alone, gated
// behind a minimum number of answered questions.
func (s *Service) QuickPrediction(ctx context.Context, learnerID string, part domain.ExamPart) (domain.QuickPrediction, error) {
	if learnerID == "" {
		return domain.QuickPrediction{}, domain.NewValidationError("learner_id", "required")
	}
	if !part.IsValid() {
		return domain.QuickPrediction{}, domain.NewValidationError("part", "unknown exam part")
	}

	state := s.loadState(ctx, learnerID)
	perf := state.Parts[part]

	quick := domain.QuickPrediction{Part: part, Readiness: domain.ReadinessNotReady.String()}
	if perf == nil || perf.QuestionsAttempted < s.cfg.MinQuestionsForQuick {
		return quick, nil
	}

	scaled := toScaled(perf.Accuracy)
	prob := passProbability(scaled, 0)
	quick.Score = math.Round(scaled)
	quick.PassProbability = prob
	quick.Readiness = readinessLevel(prob, perf.QuestionsAttempted, s.cfg.MinQuestionsForLevel).String()
	quick.HasEnoughData = true
	return quick, nil
}

// EstimatedReadyDate projects when the learner could sit the part, given
// the study-hours estimate and the configured weekly study pace.
func (s *Service) EstimatedReadyDate(ctx context.Context, learnerID string, part domain.ExamPart) (time.Time, error) {
	if learnerID == "" {
		return time.Time{}, domain.NewValidationError("learner_id", "required")
	}
	if !part.IsValid() {
		return time.Time{}, domain.NewValidationError("part", "unknown exam part")
	}

	state := s.loadState(ctx, learnerID)
	pred := s.predictPart(state, part, nil)

	weeks := int(math.Ceil(float64(pred.EstimatedStudyHours) / float64(s.cfg.WeeklyStudyHours)))
	return time.Now().UTC().AddDate(0, 0, weeks*7), nil
}

// predictPart runs the full pipeline over one part's evidence.
func (s *Service) predictPart(state *domain.AdaptiveState, part domain.ExamPart, mocks []float64) domain.Prediction {
	ev := evidenceFromState(state, part)
	ev.MockScores = mocks

	scores := domainScores(ev)
	raw := weightedRaw(part, scores)
	raw = blendMocks(raw, ev.MockScores)
	trend := detectTrend(ev.OverallAccuracy, ev.RecentAccuracy)
	raw = applyTrend(raw, trend)

	scaled := toScaled(raw)
	disp := dispersion(scores)
	prob := passProbability(scaled, disp)
	preds := buildDomainPredictions(part, scores)

	return domain.Prediction{
		Part:                part,
		PredictedScore:      math.Round(scaled),
		ConfidenceInterval:  confidenceInterval(scaled, disp, ev.Attempted, s.cfg.TargetQuestionVolume),
		PassProbability:     prob,
		ReadinessLevel:      readinessLevel(prob, ev.Attempted, s.cfg.MinQuestionsForLevel),
		Trend:               trend,
		Domains:             preds,
		Recommendations:     buildRecommendations(ev, preds, prob, recommendationVolumeFloor, float64(s.engine.TargetResponseSeconds)),
		EstimatedStudyHours: estimateStudyHours(scaled, prob),
	}
}

// evidenceFromState distills one part's tracker state into the evidence
// the prediction math consumes. Domains without attempts are left out so
// the part-level fallback applies to them.
func evidenceFromState(state *domain.AdaptiveState, part domain.ExamPart) partEvidence {
	ev := partEvidence{Part: part}

	perf := state.Parts[part]
	if perf == nil {
		return ev
	}

	ev.Attempted = perf.QuestionsAttempted
	ev.OverallAccuracy = perf.Accuracy
	ev.RecentAccuracy = perf.RecentAccuracy

	ev.DomainAccuracies = make(map[string]float64, len(perf.Domains))
	for id, stat := range perf.Domains {
		if stat.Attempted > 0 {
			ev.DomainAccuracies[id] = stat.Accuracy()
		}
	}

	// Review records are keyed by question, not part, so response pacing
	// is measured over the learner's whole history.
	var msSum float64
	var n int
	for _, rec := range state.Records {
		if rec.AvgResponseMs > 0 {
			msSum += rec.AvgResponseMs
			n++
		}
	}
	if n > 0 {
		ev.AvgResponseSec = msSum / float64(n) / 1000
	}

	return ev
}
