package models

// Intent is one of the five query categories used to pick a prompt strategy.
type Intent string

const (
	IntentTechnicalGuidance    Intent = "technical_guidance"
	IntentDecisionSupport      Intent = "decision_support"
	IntentMeetingSpecific      Intent = "meeting_specific"
	IntentGeneralKnowledge     Intent = "general_knowledge"
	IntentHypotheticalScenario Intent = "hypothetical_scenario"
)

// IntentAnalysis is the classifier output. The zero value marshals to {}.
type IntentAnalysis struct {
	PrimaryIntent Intent         `json:"primary_intent,omitempty"`
	Confidence    float64        `json:"confidence,omitempty"`
	AllWeights    map[Intent]int `json:"all_weights,omitempty"`
}

// AssistanceType tags which prompt branch produced an answer.
type AssistanceType string

const (
	AssistanceTechnical    AssistanceType = "technical_guidance"
	AssistanceDecision     AssistanceType = "decision_support"
	AssistanceHypothetical AssistanceType = "hypothetical_analysis"
	AssistanceContextAware AssistanceType = "context_aware"
	AssistanceError        AssistanceType = "error"
)

// Verdict is the label a verification pass assigned to an answer.
type Verdict string

const (
	VerdictAccurate   Verdict = "ACCURATE"
	VerdictPartial    Verdict = "PARTIAL"
	VerdictUncertain  Verdict = "UNCERTAIN"
	VerdictInaccurate Verdict = "INACCURATE"
	VerdictUnknown    Verdict = "UNKNOWN"
	VerdictWaived     Verdict = "WAIVED"
)
