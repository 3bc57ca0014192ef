// Package prompts turns a query, its intent and the retrieved chunks into the
// prompt text and system instructions for generation.
package prompts

import (
	"fmt"
	"strings"

	"github/itish2003/meetassist/models"
)

// Prompt is what the generation client receives for one answer.
type Prompt struct {
	Text           string
	System         string
	AssistanceType models.AssistanceType
}

var (
	technicalTerms = []string{"technical", "code", "system", "develop", "build"}
	decisionTerms  = []string{"decide", "choose", "option", "recommend", "should", "better"}
)

// Build picks the branch for analysis.PrimaryIntent. Every branch produces a
// usable prompt even when chunks is empty.
func Build(query string, analysis models.IntentAnalysis, chunks []models.QueryResult) Prompt {
	switch analysis.PrimaryIntent {
	case models.IntentTechnicalGuidance:
		return Prompt{Text: technicalPrompt(query, chunks), System: SystemTechnical, AssistanceType: models.AssistanceTechnical}
	case models.IntentDecisionSupport:
		return Prompt{Text: decisionPrompt(query, chunks), System: SystemDecisionAnalysis, AssistanceType: models.AssistanceDecision}
	case models.IntentHypotheticalScenario:
		return Prompt{Text: hypotheticalPrompt(query, chunks), System: SystemContextAware, AssistanceType: models.AssistanceHypothetical}
	default:
		return Prompt{Text: contextAwarePrompt(query, chunks), System: SystemContextAware, AssistanceType: models.AssistanceContextAware}
	}
}

func technicalPrompt(query string, chunks []models.QueryResult) string {
	var picked []string
	for _, c := range chunks {
		snippet := Truncate(c.Metadata.TextSnippet, 300)
		if containsAny(snippet, technicalTerms) {
			picked = append(picked, snippet)
		}
	}
	block := "No specific technical context available."
	if len(picked) > 0 {
		block = strings.Join(picked[:min(3, len(picked))], "\n\n")
	}

	return fmt.Sprintf(`TECHNICAL QUERY: %s

AVAILABLE CONTEXT:
%s

REQUIREMENTS:
1. Provide step-by-step, actionable guidance
2. Include specific examples or code snippets where relevant
3. Explain the "why" behind recommendations
4. Mention alternatives and trade-offs
5. Highlight potential pitfalls and how to avoid them
6. If context exists, reference it appropriately
7. Acknowledge limitations or areas needing more information

Focus on accuracy and practical implementation.
`, query, block)
}

func decisionPrompt(query string, chunks []models.QueryResult) string {
	var picked []string
	for _, c := range chunks {
		if containsAny(c.Metadata.TextSnippet, decisionTerms) {
			picked = append(picked, c.Metadata.TextSnippet)
		}
	}
	block := "No specific decision history available."
	if len(picked) > 0 {
		block = strings.Join(picked[:min(5, len(picked))], "\n\n---\n\n")
	}

	return fmt.Sprintf(`DECISION QUERY: %s

HISTORICAL CONTEXT (Previous discussions/decisions):
%s

ANALYTICAL FRAMEWORK:
1. **Problem Definition**: Clearly state the decision to be made
2. **Key Factors**: Identify critical decision criteria
3. **Options Analysis**: Evaluate available choices
4. **Risk Assessment**: Identify potential risks and mitigations
5. **Recommendation**: Provide clear, reasoned recommendation
6. **Confidence Level**: Indicate confidence based on available information

Base your analysis on available context where possible.
Acknowledge information gaps explicitly.
`, query, block)
}

func hypotheticalPrompt(query string, chunks []models.QueryResult) string {
	block := "No specific context for this hypothetical scenario."
	if len(chunks) > 0 {
		snippets := make([]string, 0, 3)
		for _, c := range chunks[:min(3, len(chunks))] {
			snippets = append(snippets, Truncate(c.Metadata.TextSnippet, 200))
		}
		block = strings.Join(snippets, "\n\n")
	}

	return fmt.Sprintf(`HYPOTHETICAL SCENARIO: %s

RELEVANT CONTEXT:
%s

ANALYSIS REQUIREMENTS:
1. **Scenario Understanding**: Restate the hypothetical clearly
2. **Key Variables**: Identify what factors would change
3. **Impact Analysis**: What would be the consequences?
4. **Probability Assessment**: How likely is this scenario?
5. **Preparedness Recommendations**: How to prepare or respond
6. **Alternative Scenarios**: Related possibilities to consider

Differentiate between:
- High probability vs speculative scenarios
- Direct vs indirect consequences
- Short-term vs long-term impacts
`, query, block)
}

func contextAwarePrompt(query string, chunks []models.QueryResult) string {
	block := "No specific context available."
	if len(chunks) > 0 {
		blocks := make([]string, 0, len(chunks))
		for _, c := range chunks {
			blocks = append(blocks, CitationHeader(c.Metadata)+"\n"+c.Metadata.TextSnippet)
		}
		block = strings.Join(blocks, "\n\n---\n\n")
	}

	return fmt.Sprintf(`QUERY: %s

AVAILABLE CONTEXT:
%s

RESPONSE REQUIREMENTS:
- Address the query directly and accurately
- Use context when relevant, cite sources
- Acknowledge limitations and uncertainties
- Be helpful and informative
- Maintain professional tone
`, query, block)
}

// CitationHeader labels a chunk as [meeting:ID chunk:N], or [general] when it
// has no meeting id.
func CitationHeader(r models.ChunkRecord) string {
	if r.MeetingID == 0 {
		return "[general]"
	}
	return fmt.Sprintf("[meeting:%d chunk:%d]", r.MeetingID, r.ChunkIndex)
}

// Truncate returns at most n characters of s.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func containsAny(s string, terms []string) bool {
	lower := strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
