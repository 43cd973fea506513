package rest

import (
	"log/slog"
	"net/http"

	"github.com/examready/backend/internal/config"
	"github.com/examready/backend/internal/transport/middleware"
)

// RouterDeps carries everything the router needs to register routes.
type RouterDeps struct {
	Tracker   *TrackerHandler
	Predictor *PredictorHandler
	Cram      *CramHandler
	Health    *HealthHandler
	Logger    *slog.Logger
	Server    config.ServerConfig
	CORS      config.CORSConfig
	Limiter   *middleware.RateLimiter
}

// NewRouter builds the HTTP handler with all routes and middleware wired.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Probes.
	mux.HandleFunc("GET /livez", deps.Health.Live)
	mux.HandleFunc("GET /readyz", deps.Health.Ready)
	mux.HandleFunc("GET /health", deps.Health.Health)

	// Performance tracker.
	mux.HandleFunc("POST /learners/{learnerID}/answers", deps.Tracker.RecordAnswer)
	mux.HandleFunc("POST /learners/{learnerID}/questions/select", deps.Tracker.SelectQuestions)
	mux.HandleFunc("GET /learners/{learnerID}/summary", deps.Tracker.Summary)
	mux.HandleFunc("GET /learners/{learnerID}/review/due", deps.Tracker.DueForReview)
	mux.HandleFunc("GET /learners/{learnerID}/parts/weak", deps.Tracker.WeakParts)
	mux.HandleFunc("GET /learners/{learnerID}/difficulty", deps.Tracker.Difficulty)
	mux.HandleFunc("POST /learners/{learnerID}/sessions", deps.Tracker.StartSession)
	mux.HandleFunc("POST /learners/{learnerID}/sessions/end", deps.Tracker.EndSession)
	mux.HandleFunc("DELETE /learners/{learnerID}/progress", deps.Tracker.ResetProgress)

	// Score prediction.
	mux.HandleFunc("POST /learners/{learnerID}/predictions", deps.Predictor.PredictAllParts)
	mux.HandleFunc("POST /learners/{learnerID}/predictions/{part}", deps.Predictor.PredictScore)
	mux.HandleFunc("GET /learners/{learnerID}/predictions/{part}/quick", deps.Predictor.QuickPrediction)
	mux.HandleFunc("GET /learners/{learnerID}/predictions/{part}/ready-date", deps.Predictor.EstimatedReadyDate)

	// Final review sprint.
	mux.HandleFunc("POST /learners/{learnerID}/cram", deps.Cram.StartCram)
	mux.HandleFunc("DELETE /learners/{learnerID}/cram", deps.Cram.EndCram)
	mux.HandleFunc("GET /learners/{learnerID}/cram/today", deps.Cram.TodaysPlan)
	mux.HandleFunc("GET /learners/{learnerID}/cram/today/topics", deps.Cram.TodaysTopics)
	mux.HandleFunc("GET /learners/{learnerID}/cram/today/formulas", deps.Cram.TodaysFormulas)
	mux.HandleFunc("POST /learners/{learnerID}/cram/topics/{topicID}/complete", deps.Cram.CompleteTopic)
	mux.HandleFunc("POST /learners/{learnerID}/cram/formulas/{formulaID}/review", deps.Cram.ReviewFormula)
	mux.HandleFunc("POST /learners/{learnerID}/cram/questions", deps.Cram.RecordQuestion)
	mux.HandleFunc("POST /learners/{learnerID}/cram/advance", deps.Cram.AdvanceDay)
	mux.HandleFunc("GET /learners/{learnerID}/cram/progress/day", deps.Cram.DayProgress)
	mux.HandleFunc("GET /learners/{learnerID}/cram/progress", deps.Cram.OverallProgress)

	// Static cram catalog, not tied to a learner.
	mux.HandleFunc("GET /cram/{part}/topics/critical", deps.Cram.CriticalTopics)
	mux.HandleFunc("GET /cram/{part}/formulas", deps.Cram.Formulas)

	mws := []middleware.Middleware{
		middleware.Recovery(deps.Logger),
		middleware.RequestID(),
		middleware.Logger(deps.Logger),
		middleware.CORS(deps.CORS),
	}
	if deps.Limiter != nil && deps.Server.RateLimitPerMinute > 0 {
		mws = append(mws, deps.Limiter.Limit(deps.Server.RateLimitPerMinute))
	}

	return middleware.Chain(mws...)(mux)
}
