// Package llm generates text through an ordered chain of providers. A
// provider that errors, times out, panics or returns nothing hands over to
// the next one; a local simulation provider always closes the chain.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github/itish2003/meetassist/config"
)

const (
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.2

	// FallbackResponse is returned only if even the simulation provider fails.
	FallbackResponse = "Sorry, I couldn't generate a response at this time."
)

var ErrEmptyResponse = errors.New("empty response")

// Request is one generation call. Use NewRequest for the default sampling
// parameters.
type Request struct {
	Prompt      string
	System      string
	MaxTokens   int
	Temperature float64
}

func NewRequest(prompt, system string) Request {
	return Request{Prompt: prompt, System: system, MaxTokens: DefaultMaxTokens, Temperature: DefaultTemperature}
}

// Provider is a single text-generation backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Client tries its providers strictly in order, one at a time.
type Client struct {
	providers []Provider
}

// NewClient returns a client over providers with the simulation provider
// appended as the last resort.
func NewClient(providers ...Provider) *Client {
	chain := make([]Provider, 0, len(providers)+1)
	for _, p := range providers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	chain = append(chain, DummyProvider{})
	return &Client{providers: chain}
}

// NewClientFromConfig builds the chain gemini, openai, ollama, groq, keeping
// only the providers whose credential or endpoint is configured.
func NewClientFromConfig(ctx context.Context, cfg config.LLMConfig, hc *http.Client) *Client {
	var providers []Provider

	if cfg.Gemini.APIKey != "" {
		p, err := NewGeminiProvider(ctx, cfg.Gemini, hc)
		if err != nil {
			log.Printf("LLM WARN: gemini disabled: %v", err)
		} else {
			providers = append(providers, p)
		}
	}
	if cfg.OpenAI.APIKey != "" {
		providers = append(providers, NewOpenAIProvider(cfg.OpenAI, hc))
	}
	if cfg.Ollama.BaseURL != "" {
		providers = append(providers, NewOllamaProvider(cfg.Ollama, hc))
	}
	if cfg.Groq.APIKey != "" {
		providers = append(providers, NewGroqProvider(cfg.Groq, hc))
	}

	c := NewClient(providers...)
	log.Printf("LLM: Provider chain: %s", strings.Join(c.ProviderNames(), " -> "))
	return c
}

func (c *Client) ProviderNames() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate returns the first non-empty completion. It never returns an empty
// string and never panics.
func (c *Client) Generate(ctx context.Context, req Request) string {
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	for _, p := range c.providers {
		text, err := safeGenerate(ctx, p, req)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyResponse
		}
		if err != nil {
			log.Printf("LLM: %s failed: %v", p.Name(), err)
			continue
		}
		log.Printf("LLM: Response from %s", p.Name())
		return text
	}
	return FallbackResponse
}

func safeGenerate(ctx context.Context, p Provider, req Request) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("provider panicked: %v", r)
		}
	}()
	return p.Generate(ctx, req)
}

// joinSystem prefixes the system instructions for providers that take a
// single prompt string.
func joinSystem(system, prompt string) string {
	return system + "\n\n" + prompt
}
