package cram

import "github.com/examready/backend/internal/domain"

// Static study content for the intensive review plans, built from the IMA
// CMA Content Specification Outline. Configuration data, never mutated.

// topics is the high-yield topic catalog across both parts.
var topics = []domain.CramTopic{
	{ID: "cram-cma1-001", Part: domain.PartCMA1, Domain: "CMA1-B", Title: "Master Budgeting Process", Priority: domain.TopicPriorityCritical, EstimatedMinutes: 25},
	{ID: "cram-cma1-002", Part: domain.PartCMA1, Domain: "CMA1-B", Title: "Forecasting Techniques", Priority: domain.TopicPriorityHigh, EstimatedMinutes: 20},
	{ID: "cram-cma1-003", Part: domain.PartCMA1, Domain: "CMA1-C", Title: "Variance Analysis", Priority: domain.TopicPriorityCritical, EstimatedMinutes: 30},
	{ID: "cram-cma1-004", Part: domain.PartCMA1, Domain: "CMA1-C", Title: "Balanced Scorecard", Priority: domain.TopicPriorityHigh, EstimatedMinutes: 20},
	{ID: "cram-cma1-005", Part: domain.PartCMA1, Domain: "CMA1-D", Title: "Costing Systems", Priority: domain.TopicPriorityCritical, EstimatedMinutes: 25},
	{ID: "cram-cma1-006", Part: domain.PartCMA1, Domain: "CMA1-D", Title: "Process Costing and Equivalent Units", Priority: domain.TopicPriorityHigh, EstimatedMinutes: 20},
	{ID: "cram-cma1-007", Part: domain.PartCMA1, Domain: "CMA1-E", Title: "COSO Internal Control Framework", Priority: domain.TopicPriorityHigh, EstimatedMinutes: 20},

	{ID: "cram-cma2-001", Part: domain.PartCMA2, Domain: "CMA2-A", Title: "Financial Ratios", Priority: domain.TopicPriorityCritical, EstimatedMinutes: 30},
	{ID: "cram-cma2-002", Part: domain.PartCMA2, Domain: "CMA2-B", Title: "Cost of Capital (WACC)", Priority: domain.TopicPriorityCritical, EstimatedMinutes: 25},
	{ID: "cram-cma2-003", Part: domain.PartCMA2, Domain: "CMA2-B", Title: "Working Capital Management", Priority: domain.TopicPriorityHigh, EstimatedMinutes: 20},
	{ID: "cram-cma2-004", Part: domain.PartCMA2, Domain: "CMA2-C", Title: "Cost-Volume-Profit (CVP) Analysis", Priority: domain.TopicPriorityCritical, EstimatedMinutes: 30},
	{ID: "cram-cma2-005", Part: domain.PartCMA2, Domain: "CMA2-C", Title: "Marginal Analysis (Make/Buy, Special Order)", Priority: domain.TopicPriorityCritical, EstimatedMinutes: 25},
	{ID: "cram-cma2-006", Part: domain.PartCMA2, Domain: "CMA2-E", Title: "Capital Budgeting Methods", Priority: domain.TopicPriorityCritical, EstimatedMinutes: 25},
	{ID: "cram-cma2-007", Part: domain.PartCMA2, Domain: "CMA2-F", Title: "IMA Statement of Ethical Professional Practice", Priority: domain.TopicPriorityCritical, EstimatedMinutes: 20},
}

// formulas is the essential formula catalog.
var formulas = []domain.CramFormula{
	{ID: "formula-001", Part: domain.PartCMA2, Name: "Contribution Margin", Formula: "CM = Sales - Variable Costs"},
	{ID: "formula-002", Part: domain.PartCMA2, Name: "Breakeven Point", Formula: "BE Units = Fixed Costs / CM per Unit; BE $ = FC / CM Ratio"},
	{ID: "formula-003", Part: domain.PartCMA1, Name: "Material Price Variance", Formula: "MPV = (Actual Price - Standard Price) x Actual Quantity"},
	{ID: "formula-004", Part: domain.PartCMA1, Name: "Material Quantity Variance", Formula: "MQV = (Actual Quantity - Standard Quantity) x Standard Price"},
	{ID: "formula-005", Part: domain.PartCMA2, Name: "WACC", Formula: "WACC = (E/V) x Re + (D/V) x Rd x (1-T)"},
	{ID: "formula-006", Part: domain.PartCMA2, Name: "NPV", Formula: "NPV = Sum[CFt / (1+r)^t] - Initial Investment"},
	{ID: "formula-007", Part: domain.PartCMA2, Name: "EOQ", Formula: "EOQ = sqrt(2DS/H)"},
	{ID: "formula-008", Part: domain.PartCMA2, Name: "DuPont Analysis", Formula: "ROE = Profit Margin x Asset Turnover x Equity Multiplier"},
}

// plans holds the five-day schedule per part.
var plans = map[domain.ExamPart][]domain.CramDayPlan{
	domain.PartCMA1: {
		{
			Day:               1,
			Title:             "Budgeting & Forecasting",
			FocusDomains:      []string{"CMA1-B"},
			Topics:            []string{"cram-cma1-001", "cram-cma1-002"},
			Formulas:          []string{},
			PracticeQuestions: 30,
			EstimatedHours:    3,
		},
		{
			Day:               2,
			Title:             "Performance Management & Variances",
			FocusDomains:      []string{"CMA1-C"},
			Topics:            []string{"cram-cma1-003", "cram-cma1-004"},
			Formulas:          []string{"formula-003", "formula-004"},
			PracticeQuestions: 35,
			EstimatedHours:    3.5,
		},
		{
			Day:               3,
			Title:             "Cost Management & Costing Systems",
			FocusDomains:      []string{"CMA1-D"},
			Topics:            []string{"cram-cma1-005", "cram-cma1-006"},
			Formulas:          []string{},
			PracticeQuestions: 30,
			EstimatedHours:    3,
		},
		{
			Day:               4,
			Title:             "Internal Controls & Full Simulation",
			FocusDomains:      []string{"CMA1-E", "CMA1-A", "CMA1-F"},
			Topics:            []string{"cram-cma1-007"},
			Formulas:          []string{},
			PracticeQuestions: 100,
			EstimatedHours:    4,
		},
		{
			Day:               5,
			Title:             "Weak Area Review & Final Prep",
			FocusDomains:      []string{},
			Topics:            []string{},
			Formulas:          []string{"formula-003", "formula-004"},
			PracticeQuestions: 50,
			EstimatedHours:    2.5,
		},
	},
	domain.PartCMA2: {
		{
			Day:               1,
			Title:             "Financial Statement Analysis",
			FocusDomains:      []string{"CMA2-A"},
			Topics:            []string{"cram-cma2-001"},
			Formulas:          []string{"formula-008"},
			PracticeQuestions: 30,
			EstimatedHours:    3,
		},
		{
			Day:               2,
			Title:             "Corporate Finance & WACC",
			FocusDomains:      []string{"CMA2-B"},
			Topics:            []string{"cram-cma2-002", "cram-cma2-003"},
			Formulas:          []string{"formula-005", "formula-007"},
			PracticeQuestions: 35,
			EstimatedHours:    3.5,
		},
		{
			Day:               3,
			Title:             "CVP & Marginal Analysis",
			FocusDomains:      []string{"CMA2-C"},
			Topics:            []string{"cram-cma2-004", "cram-cma2-005"},
			Formulas:          []string{"formula-001", "formula-002"},
			PracticeQuestions: 40,
			EstimatedHours:    4,
		},
		{
			Day:               4,
			Title:             "Capital Budgeting & Ethics",
			FocusDomains:      []string{"CMA2-E", "CMA2-F", "CMA2-D"},
			Topics:            []string{"cram-cma2-006", "cram-cma2-007"},
			Formulas:          []string{"formula-006"},
			PracticeQuestions: 100,
			EstimatedHours:    4,
		},
		{
			Day:               5,
			Title:             "Decision Analysis Review & Final Prep",
			FocusDomains:      []string{"CMA2-C"},
			Topics:            []string{"cram-cma2-004", "cram-cma2-005"},
			Formulas:          []string{"formula-001", "formula-002", "formula-005", "formula-006"},
			PracticeQuestions: 50,
			EstimatedHours:    2.5,
		},
	},
}

// planFor returns a part's day plans.
func planFor(part domain.ExamPart) []domain.CramDayPlan {
	return plans[part]
}

// topicsByID resolves catalog topics for a set of IDs, preserving catalog
// order.
func topicsByID(ids []string) []domain.CramTopic {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]domain.CramTopic, 0, len(ids))
	for _, t := range topics {
		if _, ok := want[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}

// formulasByID resolves catalog formulas for a set of IDs, preserving
// catalog order.
func formulasByID(ids []string) []domain.CramFormula {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]domain.CramFormula, 0, len(ids))
	for _, f := range formulas {
		if _, ok := want[f.ID]; ok {
			out = append(out, f)
		}
	}
	return out
}

// topicsForPart returns every catalog topic tagged to a part.
func topicsForPart(part domain.ExamPart) []domain.CramTopic {
	out := make([]domain.CramTopic, 0, len(topics))
	for _, t := range topics {
		if t.Part == part {
			out = append(out, t)
		}
	}
	return out
}

// formulasForPart returns every catalog formula tagged to a part.
func formulasForPart(part domain.ExamPart) []domain.CramFormula {
	out := make([]domain.CramFormula, 0, len(formulas))
	for _, f := range formulas {
		if f.Part == part {
			out = append(out, f)
		}
	}
	return out
}
