package predictor

import (
	"fmt"
	"math"
	"sort"

	"github.com/examready/backend/internal/domain"
)

// Blend weights for practice accuracy vs mock exam scores.
const (
	practiceBlend = 0.6
	mockBlend     = 0.4
)

// Trend adjustment factors and the accuracy delta that triggers them.
const (
	improvingFactor = 1.05
	decliningFactor = 0.95
	trendDelta      = 5.0
)

// Logistic curve parameters for pass probability.
const (
	baseSteepness        = 0.03
	dispersionFlattening = 25.0
)

// Confidence interval margins in raw percentage points.
const (
	maxMarginPct = 15.0
	minMarginPct = 5.0
)

// Domain status accuracy cut lines.
const (
	weakCut       = 55.0
	developingCut = 72.0
	proficientCut = 80.0
)

// partEvidence is everything the pure prediction math needs about one part.
// The service assembles it from tracker state; tests build it directly.
type partEvidence struct {
	Part             domain.ExamPart
	Attempted        int                // questions answered in this part
	OverallAccuracy  float64            // all-time, 0-100
	RecentAccuracy   float64            // recent window, 0-100
	DomainAccuracies map[string]float64 // by domain ID, 0-100; missing: no data
	MockScores       []float64          // mock exam percentages, 0-100
	AvgResponseSec   float64            // 0 when unknown
}

// domainScores resolves a 0-100 accuracy for every blueprint domain of the
// part, falling back to the part-level accuracy where a domain has no data.
func domainScores(ev partEvidence) map[string]float64 {
	scores := make(map[string]float64, len(domain.BlueprintWeights[ev.Part]))
	for id := range domain.BlueprintWeights[ev.Part] {
		if acc, ok := ev.DomainAccuracies[id]; ok {
			scores[id] = acc
		} else {
			scores[id] = ev.OverallAccuracy
		}
	}
	return scores
}

// weightedRaw computes the blueprint-weighted raw score, 0-100.
func weightedRaw(part domain.ExamPart, scores map[string]float64) float64 {
	var sum, weights float64
	for id, w := range domain.BlueprintWeights[part] {
		sum += scores[id] * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

// blendMocks folds mock exam scores into the raw practice score.
func blendMocks(raw float64, mocks []float64) float64 {
	if len(mocks) == 0 {
		return raw
	}
	var sum float64
	for _, m := range mocks {
		sum += m
	}
	return practiceBlend*raw + mockBlend*(sum/float64(len(mocks)))
}

// detectTrend compares recent accuracy against the all-time baseline.
func detectTrend(overall, recent float64) domain.Trend {
	switch {
	case recent >= overall+trendDelta:
		return domain.TrendImproving
	case recent <= overall-trendDelta:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

// applyTrend nudges the raw score for momentum, capped at 100.
func applyTrend(raw float64, trend domain.Trend) float64 {
	switch trend {
	case domain.TrendImproving:
		raw *= improvingFactor
	case domain.TrendDeclining:
		raw *= decliningFactor
	}
	return math.Min(100, raw)
}

// toScaled maps a 0-100 raw score linearly onto the 0-500 scaled range.
func toScaled(raw float64) float64 {
	scaled := raw / 100 * float64(domain.MaxScaledScore)
	return math.Max(float64(domain.MinScaledScore), math.Min(float64(domain.MaxScaledScore), scaled))
}

// dispersion is the population standard deviation of the domain scores.
// High dispersion means uneven mastery and an unstable prediction.
func dispersion(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	mean := sum / float64(len(scores))

	var sq float64
	for _, v := range scores {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(scores)))
}

// confidenceInterval widens with dispersion and tightens with volume,
// shrinking as the learner approaches the target question count.
func confidenceInterval(scaled, disp float64, attempted, targetVolume int) domain.ConfidenceInterval {
	progress := math.Min(1, float64(attempted)/float64(targetVolume))
	marginPct := maxMarginPct - (maxMarginPct-minMarginPct)*progress
	marginPct += disp * 0.25

	margin := marginPct / 100 * float64(domain.MaxScaledScore)
	return domain.ConfidenceInterval{
		Low:  math.Max(float64(domain.MinScaledScore), math.Round(scaled-margin)),
		High: math.Min(float64(domain.MaxScaledScore), math.Round(scaled+margin)),
	}
}

// passProbability runs a logistic curve centered on the passing score.
// Dispersion flattens the curve: uneven mastery makes the outcome less
// certain in both directions.
func passProbability(scaled, disp float64) float64 {
	k := baseSteepness / (1 + disp/dispersionFlattening)
	p := 1 / (1 + math.Exp(-k*(scaled-float64(domain.PassingScaledScore))))
	return math.Round(p*1000) / 10 // one decimal, percent
}

// readinessLevel buckets the pass probability. Learners with thin evidence
// are always NOT_READY regardless of how good the thin evidence looks.
func readinessLevel(passProb float64, attempted, minForLevel int) domain.ReadinessLevel {
	if attempted < minForLevel {
		return domain.ReadinessNotReady
	}
	switch {
	case passProb >= 85:
		return domain.ReadinessConfident
	case passProb >= 70:
		return domain.ReadinessLikely
	case passProb >= 50:
		return domain.ReadinessBorderline
	case passProb >= 30:
		return domain.ReadinessAtRisk
	default:
		return domain.ReadinessNotReady
	}
}

// domainStatus buckets one domain's accuracy.
func domainStatus(acc float64) domain.DomainStatus {
	switch {
	case acc < weakCut:
		return domain.DomainStatusWeak
	case acc < developingCut:
		return domain.DomainStatusDeveloping
	case acc < proficientCut:
		return domain.DomainStatusProficient
	default:
		return domain.DomainStatusStrong
	}
}

// buildDomainPredictions scores every blueprint domain, ordered by ID.
func buildDomainPredictions(part domain.ExamPart, scores map[string]float64) []domain.DomainPrediction {
	ids := domain.PartDomains(part)
	preds := make([]domain.DomainPrediction, 0, len(ids))
	for _, id := range ids {
		w := domain.BlueprintWeights[part][id]
		acc := scores[id]
		preds = append(preds, domain.DomainPrediction{
			DomainID:       id,
			PredictedScore: math.Round(acc*10) / 10,
			Contribution:   math.Round(acc*w) / 100,
			Status:         domainStatus(acc),
			Weight:         w,
		})
	}
	return preds
}

// maxRecommendations caps the advice list; more than three action items
// stops being advice.
const maxRecommendations = 3

// recommendationVolumeFloor is the practice volume under which a
// do-more-questions recommendation fires.
const recommendationVolumeFloor = 200

// buildRecommendations ranks the next actions for one part: weakest heavy
// domains first, then volume, then pacing, then a plain warning when the
// pass probability is below even odds.
func buildRecommendations(ev partEvidence, preds []domain.DomainPrediction, passProb float64, volumeFloor int, targetResponseSec float64) []string {
	recs := make([]string, 0, maxRecommendations)

	// Weak domains, most damaging first: low score weighted by blueprint share.
	ranked := make([]domain.DomainPrediction, 0, len(preds))
	for _, p := range preds {
		if p.Status == domain.DomainStatusWeak || p.Status == domain.DomainStatusDeveloping {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		di := (100 - ranked[i].PredictedScore) * ranked[i].Weight
		dj := (100 - ranked[j].PredictedScore) * ranked[j].Weight
		return di > dj
	})
	for _, p := range ranked {
		if len(recs) >= maxRecommendations {
			return recs
		}
		recs = append(recs, fmt.Sprintf("Focus on %s: scoring %.0f%% against a %.0f%% blueprint weight", p.DomainID, p.PredictedScore, p.Weight))
	}

	if len(recs) < maxRecommendations && ev.Attempted < volumeFloor {
		recs = append(recs, fmt.Sprintf("Answer more %s practice questions: %d so far, aim for at least %d", ev.Part, ev.Attempted, volumeFloor))
	}
	if len(recs) < maxRecommendations && targetResponseSec > 0 && ev.AvgResponseSec > targetResponseSec {
		recs = append(recs, fmt.Sprintf("Work on pacing: averaging %.0fs per question against a %.0fs target", ev.AvgResponseSec, targetResponseSec))
	}
	if len(recs) < maxRecommendations && passProb < 50 {
		recs = append(recs, fmt.Sprintf("At the current level the pass probability is %.0f%%; plan a structured review before booking the exam", passProb))
	}

	return recs
}

// Study-hours deficit heuristic: the shortfall against a buffered passing
// score, priced per point. Closing points gets costlier at higher scores.
const (
	studyHoursBuffer   = 25.0
	baseHoursPerPoint  = 0.4
	hoursPerPointSlope = 1.0 / 750.0
)

// estimateStudyHours converts the gap to a passing score into study time.
// Not a calibrated estimate. Learners already likely to pass need nothing.
func estimateStudyHours(scaled, passProb float64) int {
	if passProb >= 85 {
		return 0
	}
	pointsNeeded := float64(domain.PassingScaledScore) + studyHoursBuffer - scaled
	if pointsNeeded <= 0 {
		return 0
	}
	hoursPerPoint := baseHoursPerPoint + scaled*hoursPerPointSlope
	return int(math.Round(pointsNeeded * hoursPerPoint))
}
