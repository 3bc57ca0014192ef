// Package verify runs a fact-checking pass over a generated answer and, when
// the check flags a problem, one corrective regeneration.
package verify

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github/itish2003/meetassist/llm"
	"github/itish2003/meetassist/models"
	"github/itish2003/meetassist/prompts"
)

// WaivedStatus replaces the verification feedback for hypothetical answers.
const WaivedStatus = "Hypothetical scenario - accuracy check waived"

const (
	verifySystem  = "You are a strict fact-checker. Be brutally honest about accuracy."
	correctSystem = "Provide a more accurate and carefully qualified version of the previous answer."
)

var (
	verdictLine = regexp.MustCompile(`(?i)VERDICT:\s*\**\s*(ACCURATE|PARTIAL|UNCERTAIN|INACCURATE)\b`)
	anyLabel    = regexp.MustCompile(`\b(ACCURATE|PARTIAL|UNCERTAIN|INACCURATE)\b`)
)

// Generator is the part of the generation client the verifier needs.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) string
}

// Result is the outcome of one verification pass.
type Result struct {
	Feedback        string
	Verdict         models.Verdict
	NeedsCorrection bool
}

type Verifier struct {
	gen Generator
}

func New(gen Generator) *Verifier {
	return &Verifier{gen: gen}
}

// Verify asks the model to grade answer against the first three chunks.
func (v *Verifier) Verify(ctx context.Context, query, answer string, chunks []models.QueryResult) Result {
	snippets := make([]string, 0, 3)
	for _, c := range chunks[:min(3, len(chunks))] {
		snippets = append(snippets, prompts.Truncate(c.Metadata.TextSnippet, 200))
	}

	prompt := fmt.Sprintf(`QUERY: %s

PROPOSED ANSWER: %s

AVAILABLE CONTEXT:
%s

VERIFICATION TASKS:
1. Does the answer directly address the query?
2. Are any factual claims supported by the context?
3. Are there any unsupported assumptions or hallucinations?
4. Is the answer technically accurate (if technical)?
5. Are limitations properly acknowledged?

Provide verification result as:
- ACCURATE: Fully supported and appropriate
- PARTIAL: Some parts need qualification
- UNCERTAIN: Significant unsupported claims
- INACCURATE: Contradicts context or facts

Begin your reply with a line of the form "VERDICT: <LABEL>".
`, query, answer, strings.Join(snippets, "\n"))

	feedback := v.gen.Generate(ctx, llm.Request{Prompt: prompt, System: verifySystem, MaxTokens: 300, Temperature: 0.1})
	return Evaluate(feedback)
}

// Evaluate classifies verifier output. An explicit "VERDICT: X" line decides
// on its own; otherwise the first label found is reported and correction is
// requested whenever INACCURATE or UNCERTAIN appears anywhere.
//
// The verdict line overrides the substring rule: "VERDICT: ACCURATE" followed
// by prose that mentions UNCERTAIN or INACCURATE does not request a
// correction, whereas the same prose without a verdict line does.
func Evaluate(feedback string) Result {
	res := Result{Feedback: feedback, Verdict: models.VerdictUnknown}

	if m := verdictLine.FindStringSubmatch(feedback); m != nil {
		res.Verdict = models.Verdict(strings.ToUpper(m[1]))
		res.NeedsCorrection = res.Verdict == models.VerdictInaccurate || res.Verdict == models.VerdictUncertain
		return res
	}

	if m := anyLabel.FindStringSubmatch(feedback); m != nil {
		res.Verdict = models.Verdict(m[1])
	}
	res.NeedsCorrection = strings.Contains(feedback, "INACCURATE") || strings.Contains(feedback, "UNCERTAIN")
	return res
}

// Correct regenerates answer with the verifier's feedback in view.
func (v *Verifier) Correct(ctx context.Context, query, answer, feedback string) string {
	prompt := fmt.Sprintf(`ORIGINAL QUERY: %s

INITIAL ANSWER: %s

ACCURACY FEEDBACK: %s

Please provide a corrected answer that addresses the accuracy concerns while still being helpful.
`, query, answer, feedback)

	return v.gen.Generate(ctx, llm.Request{Prompt: prompt, System: correctSystem, MaxTokens: 800, Temperature: 0.2})
}
