package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github/itish2003/meetassist/models"
)

func hit(meetingID int64, idx int, snippet string) models.QueryResult {
	return models.QueryResult{ID: idx, Metadata: models.ChunkRecord{MeetingID: meetingID, ChunkIndex: idx, TextSnippet: snippet}}
}

func analysis(i models.Intent) models.IntentAnalysis {
	return models.IntentAnalysis{PrimaryIntent: i, Confidence: 1}
}

func TestBuild_EmptyRetrievalInEveryBranch(t *testing.T) {
	tests := []struct {
		intent   models.Intent
		wantType models.AssistanceType
		system   string
		fallback string
	}{
		{models.IntentTechnicalGuidance, models.AssistanceTechnical, SystemTechnical, "No specific technical context available."},
		{models.IntentDecisionSupport, models.AssistanceDecision, SystemDecisionAnalysis, "No specific decision history available."},
		{models.IntentHypotheticalScenario, models.AssistanceHypothetical, SystemContextAware, "No specific context for this hypothetical scenario."},
		{models.IntentMeetingSpecific, models.AssistanceContextAware, SystemContextAware, "No specific context available."},
		{models.IntentGeneralKnowledge, models.AssistanceContextAware, SystemContextAware, "No specific context available."},
		{"", models.AssistanceContextAware, SystemContextAware, "No specific context available."},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			p := Build("the question", analysis(tt.intent), nil)
			assert.Equal(t, tt.wantType, p.AssistanceType)
			assert.Equal(t, tt.system, p.System)
			assert.Contains(t, p.Text, tt.fallback)
			assert.Contains(t, p.Text, "the question")
		})
	}
}

func TestBuild_TechnicalFiltersAndCaps(t *testing.T) {
	long := "We will build the ingestion system " + strings.Repeat("x", 400)
	chunks := []models.QueryResult{
		hit(1, 0, "Lunch plans for Friday"),
		hit(1, 1, long),
		hit(1, 2, "The CODE review is Tuesday"),
		hit(1, 3, "develop a plan"),
		hit(1, 4, "technical debt backlog"),
	}

	p := Build("How to build a REST API", analysis(models.IntentTechnicalGuidance), chunks)

	assert.True(t, strings.HasPrefix(p.Text, "TECHNICAL QUERY: How to build a REST API\n"))
	assert.NotContains(t, p.Text, "Lunch plans")
	assert.Contains(t, p.Text, Truncate(long, 300)+"\n\nThe CODE review is Tuesday\n\ndevelop a plan")
	assert.NotContains(t, p.Text, Truncate(long, 301))
	assert.NotContains(t, p.Text, "technical debt backlog", "at most three snippets")
	assert.Contains(t, p.Text, "7. Acknowledge limitations or areas needing more information")
	assert.Contains(t, p.Text, "Focus on accuracy and practical implementation.")
}

func TestBuild_DecisionJoinsWithSeparators(t *testing.T) {
	chunks := []models.QueryResult{
		hit(2, 0, "We should pick vendor A"),
		hit(2, 1, "Weather was nice"),
		hit(2, 2, "Option B is better on cost"),
	}

	p := Build("What should we choose?", analysis(models.IntentDecisionSupport), chunks)

	assert.Contains(t, p.Text, "HISTORICAL CONTEXT (Previous discussions/decisions):\nWe should pick vendor A\n\n---\n\nOption B is better on cost\n")
	assert.NotContains(t, p.Text, "Weather")
	assert.Contains(t, p.Text, "6. **Confidence Level**")
}

func TestBuild_HypotheticalTakesFirstThree(t *testing.T) {
	chunks := []models.QueryResult{
		hit(3, 0, strings.Repeat("a", 250)),
		hit(3, 1, "second"),
		hit(3, 2, "third"),
		hit(3, 3, "fourth"),
	}

	p := Build("What if our vendor doubles prices?", analysis(models.IntentHypotheticalScenario), chunks)

	assert.Contains(t, p.Text, strings.Repeat("a", 200)+"\n\nsecond\n\nthird")
	assert.NotContains(t, p.Text, strings.Repeat("a", 201))
	assert.NotContains(t, p.Text, "fourth")
	assert.Contains(t, p.Text, "- Short-term vs long-term impacts")
}

func TestBuild_ContextAwareCitations(t *testing.T) {
	chunks := []models.QueryResult{
		hit(7, 0, "Alice: we should ship Friday. Bob: agreed."),
		hit(0, 3, "general note"),
	}

	p := Build("What did Alice decide?", analysis(models.IntentGeneralKnowledge), chunks)

	assert.Contains(t, p.Text, "[meeting:7 chunk:0]\nAlice: we should ship Friday. Bob: agreed.\n\n---\n\n[general]\ngeneral note")
	assert.Contains(t, p.Text, "- Maintain professional tone")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "éé", Truncate("ééé", 2))
	assert.Equal(t, "", Truncate("abc", -1))
}
