package predict

import (
	"fmt"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

// DefaultOverridePriority is the normalized priority tier that is always
// predicted as a violation. It must match the Priority vocabulary of the
// trained encoders; nothing enforces that coupling.
const DefaultOverridePriority = "1 - critical"

// Day thresholds for the due-date risk factors.
const (
	ShortDueDays = 3
	LongDueDays  = 10
)

// Verdict texts.
const (
	VerdictViolated     = "Yes"
	VerdictRuleViolated = "Yes (business rule)"
	VerdictCompliant    = "No"
)

// Recommendation templates.
const (
	RecommendEscalate = "Escalate to the responsible team or monitor this ticket proactively."
	RecommendStandard = "Ticket can be processed through the standard workflow."
)

// Policy turns a violation probability into the final verdict.
type Policy struct {
	OverridePriority string
	Threshold        float64
}

// Decide applies the threshold, then the business override, and assembles
// the result. The override takes precedence over the model decision.
func (p Policy) Decide(probability float64, features model.TicketFeatures) *model.PredictionResult {
	violated := probability >= p.Threshold
	confidence := probability * 100
	verdict := VerdictCompliant
	if violated {
		verdict = VerdictViolated
	}

	override := p.OverridePriority != "" && Normalize(features.Priority) == p.OverridePriority
	if override {
		violated = true
		confidence = 100
		verdict = VerdictRuleViolated
	}

	result := &model.PredictionResult{
		Violated:    violated,
		Confidence:  confidence,
		Probability: probability,
		VerdictText: verdict,
		DaysToDue:   features.DaysToDue,
		OpenHour:    features.CreationHour,
		RuleApplied: override,
	}

	if violated {
		result.RiskFactors = append(result.RiskFactors, fmt.Sprintf("Violation probability: %.2f%%", confidence))
		if features.DaysToDue <= ShortDueDays {
			result.RiskFactors = append(result.RiskFactors, "Short time until due date (Days to Due)")
		}
		if override {
			result.RiskFactors = append(result.RiskFactors, "Business rule: critical ticket")
		}
		result.Recommendation = RecommendEscalate
	} else {
		result.RiskFactors = append(result.RiskFactors, fmt.Sprintf("Low violation risk (%.2f%%)", confidence))
		if features.DaysToDue > LongDueDays {
			result.RiskFactors = append(result.RiskFactors, "Long time until due date (Days to Due)")
		}
		result.Recommendation = RecommendStandard
	}

	return result
}
