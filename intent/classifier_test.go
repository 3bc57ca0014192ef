package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github/itish2003/meetassist/models"
)

func TestClassify(t *testing.T) {
	c := NewDefaultClassifier()

	tests := []struct {
		name       string
		query      string
		want       models.Intent
		confidence float64
	}{
		{name: "technical", query: "How to build a REST API", want: models.IntentTechnicalGuidance, confidence: 1},
		{name: "hypothetical", query: "What if our vendor doubles prices?", want: models.IntentHypotheticalScenario, confidence: 1},
		{name: "no triggers", query: "What did Alice decide?", want: models.IntentGeneralKnowledge, confidence: 1},
		{name: "meeting beats decision", query: "We discussed the decision in the meeting", want: models.IntentMeetingSpecific, confidence: 0.75},
		{name: "decision with substring hit", query: "Should I choose between Postgres and MySQL?", want: models.IntentDecisionSupport, confidence: 2.0 / 3.0},
		{name: "case insensitive", query: "DEPLOY THE DOCKER IMAGE", want: models.IntentTechnicalGuidance, confidence: 1},
		{name: "empty", query: "", want: models.IntentGeneralKnowledge, confidence: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.query)
			assert.Equal(t, tt.want, got.PrimaryIntent)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Len(t, got.AllWeights, 5)
		})
	}
}

func TestClassify_TiesFollowPriority(t *testing.T) {
	c := NewDefaultClassifier()

	// technical 2 (fix, api) vs hypothetical 2 (what if, if we)
	got := c.Classify("what if we fix the api")
	assert.Equal(t, models.IntentTechnicalGuidance, got.PrimaryIntent)
	assert.Equal(t, 2, got.AllWeights[models.IntentHypotheticalScenario])
	assert.InDelta(t, 0.5, got.Confidence, 1e-9)

	// "decision" is in both the decision and meeting tables
	got = c.Classify("any decision?")
	assert.Equal(t, models.IntentDecisionSupport, got.PrimaryIntent)
	assert.Equal(t, 1, got.AllWeights[models.IntentMeetingSpecific])
}

func TestClassify_ZeroTriggersForceGeneral(t *testing.T) {
	got := NewDefaultClassifier().Classify("Tell me a joke about penguins")
	assert.Equal(t, models.IntentGeneralKnowledge, got.PrimaryIntent)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Equal(t, 1, got.AllWeights[models.IntentGeneralKnowledge])
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewDefaultClassifier()
	q := "Should we deploy before the meeting, what if it fails?"
	first := c.Classify(q)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, c.Classify(q))
	}
}

func TestNewClassifier_CustomTables(t *testing.T) {
	c := NewClassifier(Tables{
		models.IntentHypotheticalScenario: {"Imagine"},
		models.IntentTechnicalGuidance:    {"kubernetes"},
	}, []models.Intent{models.IntentHypotheticalScenario, models.IntentTechnicalGuidance})

	got := c.Classify("imagine kubernetes")
	assert.Equal(t, models.IntentHypotheticalScenario, got.PrimaryIntent, "custom priority breaks the tie")

	got = c.Classify("nothing matches")
	assert.Equal(t, models.IntentGeneralKnowledge, got.PrimaryIntent)
}
