package llm

import (
	"context"
	"fmt"
)

// DummyProvider answers locally with a canned simulation notice so the chain
// always produces text.
type DummyProvider struct{}

func (DummyProvider) Name() string { return "dummy" }

func (DummyProvider) Generate(_ context.Context, req Request) (string, error) {
	return fmt.Sprintf("[LLM Simulation] Response to: %s...\n\n"+
		"I understand you need assistance. This is a simulated response since the LLM service is currently unavailable. "+
		"In a production environment, this would be a real AI response.", firstRunes(req.Prompt, 100)), nil
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
