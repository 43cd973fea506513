package domain

// ExamPart identifies one part of the CMA exam.
type ExamPart string

const (
	PartCMA1 ExamPart = "CMA1"
	PartCMA2 ExamPart = "CMA2"
)

func (p ExamPart) String() string { return string(p) }

func (p ExamPart) IsValid() bool {
	switch p {
	case PartCMA1, PartCMA2:
		return true
	}
	return false
}

// AllParts returns every exam part in canonical order.
func AllParts() []ExamPart {
	return []ExamPart{PartCMA1, PartCMA2}
}

// Difficulty is the three-level question difficulty ladder.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

func (d Difficulty) String() string { return string(d) }

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// StepUp moves one rung up the ladder. HARD stays HARD.
func (d Difficulty) StepUp() Difficulty {
	switch d {
	case DifficultyEasy:
		return DifficultyMedium
	case DifficultyMedium:
		return DifficultyHard
	default:
		return DifficultyHard
	}
}

// StepDown moves one rung down the ladder. EASY stays EASY.
func (d Difficulty) StepDown() Difficulty {
	switch d {
	case DifficultyHard:
		return DifficultyMedium
	case DifficultyMedium:
		return DifficultyEasy
	default:
		return DifficultyEasy
	}
}

// Trend is the learner's recent accuracy trajectory.
type Trend string

const (
	TrendImproving Trend = "IMPROVING"
	TrendStable    Trend = "STABLE"
	TrendDeclining Trend = "DECLINING"
)

func (t Trend) String() string { return string(t) }

func (t Trend) IsValid() bool {
	switch t {
	case TrendImproving, TrendStable, TrendDeclining:
		return true
	}
	return false
}

// ReadinessLevel is a qualitative bucket over pass probability.
type ReadinessLevel string

const (
	ReadinessNotReady   ReadinessLevel = "NOT_READY"
	ReadinessAtRisk     ReadinessLevel = "AT_RISK"
	ReadinessBorderline ReadinessLevel = "BORDERLINE"
	ReadinessLikely     ReadinessLevel = "LIKELY"
	ReadinessConfident  ReadinessLevel = "CONFIDENT"
)

func (l ReadinessLevel) String() string { return string(l) }

func (l ReadinessLevel) IsValid() bool {
	switch l {
	case ReadinessNotReady, ReadinessAtRisk, ReadinessBorderline, ReadinessLikely, ReadinessConfident:
		return true
	}
	return false
}

// rank orders readiness levels from worst (0) to best (4).
func (l ReadinessLevel) rank() int {
	switch l {
	case ReadinessAtRisk:
		return 1
	case ReadinessBorderline:
		return 2
	case ReadinessLikely:
		return 3
	case ReadinessConfident:
		return 4
	default:
		return 0
	}
}

// WorseOf returns the lower of two readiness levels.
func WorseOf(a, b ReadinessLevel) ReadinessLevel {
	if b.rank() < a.rank() {
		return b
	}
	return a
}

// DomainStatus is the qualitative bucket for a content domain's accuracy.
type DomainStatus string

const (
	DomainStatusWeak       DomainStatus = "WEAK"
	DomainStatusDeveloping DomainStatus = "DEVELOPING"
	DomainStatusProficient DomainStatus = "PROFICIENT"
	DomainStatusStrong     DomainStatus = "STRONG"
)

func (s DomainStatus) String() string { return string(s) }

func (s DomainStatus) IsValid() bool {
	switch s {
	case DomainStatusWeak, DomainStatusDeveloping, DomainStatusProficient, DomainStatusStrong:
		return true
	}
	return false
}

// TopicPriority ranks cram topics by exam yield.
type TopicPriority string

const (
	TopicPriorityCritical TopicPriority = "CRITICAL"
	TopicPriorityHigh     TopicPriority = "HIGH"
	TopicPriorityMedium   TopicPriority = "MEDIUM"
)

func (p TopicPriority) String() string { return string(p) }

func (p TopicPriority) IsValid() bool {
	switch p {
	case TopicPriorityCritical, TopicPriorityHigh, TopicPriorityMedium:
		return true
	}
	return false
}
