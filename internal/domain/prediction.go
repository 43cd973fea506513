package domain

import "sort"

// CMA scoring constants. The exam reports a 0-500 scaled score with 360
// passing (IMA scale).
const (
	MinScaledScore     = 0
	MaxScaledScore     = 500
	PassingScaledScore = 360
)

// BlueprintWeights maps each part's content domains to their official
// percentage weight. Weights per part sum to 100, a caller contract rather than
// enforced by the engine.
var BlueprintWeights = map[ExamPart]map[string]float64{
	PartCMA1: {
		"CMA1-A": 15, // External Financial Reporting Decisions
		"CMA1-B": 20, // Planning, Budgeting, and Forecasting
		"CMA1-C": 20, // Performance Management
		"CMA1-D": 15, // Cost Management
		"CMA1-E": 15, // Internal Controls
		"CMA1-F": 15, // Technology and Analytics
	},
	PartCMA2: {
		"CMA2-A": 20, // Financial Statement Analysis
		"CMA2-B": 20, // Corporate Finance
		"CMA2-C": 25, // Decision Analysis
		"CMA2-D": 10, // Risk Management
		"CMA2-E": 10, // Investment Decisions
		"CMA2-F": 15, // Professional Ethics
	},
}

// PartDomains returns the content domain IDs for a part in sorted order.
func PartDomains(part ExamPart) []string {
	weights := BlueprintWeights[part]
	domains := make([]string, 0, len(weights))
	for d := range weights {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// ConfidenceInterval bounds a predicted scaled score.
type ConfidenceInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DomainPrediction is one content domain's readiness projection.
type DomainPrediction struct {
	DomainID       string       `json:"domainId"`
	PredictedScore float64      `json:"predictedScore"` // domain accuracy, 0-100
	Contribution   float64      `json:"contribution"`   // weighted contribution to the part score
	Status         DomainStatus `json:"status"`
	Weight         float64      `json:"weight"`
}

// Prediction is one part's readiness projection. Computed on demand,
// never persisted.
type Prediction struct {
	Part                ExamPart           `json:"part"`
	PredictedScore      float64            `json:"predictedScore"` // 0-500
	ConfidenceInterval  ConfidenceInterval `json:"confidenceInterval"`
	PassProbability     float64            `json:"passProbability"` // 0-100
	ReadinessLevel      ReadinessLevel     `json:"readinessLevel"`
	Trend               Trend              `json:"trend"`
	Domains             []DomainPrediction `json:"domains"`
	Recommendations     []string           `json:"recommendations"`
	EstimatedStudyHours int                `json:"estimatedStudyHours"`
}

// AllPartsPrediction aggregates per-part predictions.
type AllPartsPrediction struct {
	Parts                map[ExamPart]Prediction `json:"parts"`
	OverallReadiness     ReadinessLevel          `json:"overallReadiness"`
	JointPassProbability float64                 `json:"jointPassProbability"` // product of part probabilities
	Recommendations      []string                `json:"recommendations"`
	EstimatedTotalHours  int                     `json:"estimatedTotalHours"`
}

// QuickPrediction is the lightweight dashboard view.
type QuickPrediction struct {
	Part            ExamPart `json:"part"`
	Score           float64  `json:"score"`
	PassProbability float64  `json:"passProbability"`
	Readiness       string   `json:"readiness"`
	HasEnoughData   bool     `json:"hasEnoughData"`
}
