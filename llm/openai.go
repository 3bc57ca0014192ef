package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github/itish2003/meetassist/config"
)

const (
	openRouterBaseURL      = "https://openrouter.ai/api/v1"
	openRouterDefaultModel = "meta-llama/llama-3.1-8b-instruct:free"
	openAIDefaultModel     = "gpt-3.5-turbo"
)

// Free OpenRouter models suggested when the configured one does not exist.
var suggestedModels = []string{
	"meta-llama/llama-3.1-8b-instruct:free",
	"anthropic/claude-3.5-sonnet:free",
	"microsoft/wizardlm-2-8x22b:free",
}

// ChatProvider talks to any OpenAI-compatible chat completions endpoint.
// It backs the openai (and OpenRouter) and groq slots of the chain.
type ChatProvider struct {
	name    string
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIProvider configures the openai slot. A base URL mentioning
// openrouter switches to the OpenRouter endpoint with its attribution headers.
func NewOpenAIProvider(cfg config.OpenAIConfig, hc *http.Client) *ChatProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}

	if IsOpenRouter(baseURL) {
		baseURL = openRouterBaseURL
		if model == "" {
			model = openRouterDefaultModel
		}
		siteURL, appName := cfg.SiteURL, cfg.AppName
		if siteURL == "" {
			siteURL = "https://localhost:5000"
		}
		if appName == "" {
			appName = "AutoMeet"
		}
		opts = append(opts,
			option.WithHeader("HTTP-Referer", siteURL),
			option.WithHeader("X-Title", appName),
		)
	} else if model == "" {
		model = openAIDefaultModel
	}
	opts = append(opts, option.WithBaseURL(baseURL))

	return newChatProvider("openai", model, seconds(cfg.TimeoutSecs, 45), hc, opts)
}

func NewGroqProvider(cfg config.GroqConfig, hc *http.Client) *ChatProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3-8b-8192"
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithBaseURL(baseURL)}
	return newChatProvider("groq", model, seconds(cfg.TimeoutSecs, 30), hc, opts)
}

func newChatProvider(name, model string, timeout time.Duration, hc *http.Client, opts []option.RequestOption) *ChatProvider {
	// the fallback chain is the retry policy
	opts = append(opts, option.WithMaxRetries(0))
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}
	return &ChatProvider{
		name:    name,
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
	}
}

// IsOpenRouter reports whether baseURL points at OpenRouter.
func IsOpenRouter(baseURL string) bool {
	return strings.Contains(strings.ToLower(baseURL), "openrouter")
}

func (p *ChatProvider) Name() string { return p.name }

func (p *ChatProvider) Model() string { return p.model }

func (p *ChatProvider) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", p.describeError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("unexpected response format: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *ChatProvider) describeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("API timeout")
	}
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("API error: %w", err)
	}
	switch apiErr.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("model '%s' not found. Try: %s", p.model, strings.Join(suggestedModels, ", "))
	case http.StatusUnauthorized:
		return fmt.Errorf("invalid API key")
	default:
		body := apiErr.RawJSON()
		if body == "" {
			body = apiErr.Message
		}
		return fmt.Errorf("HTTP %d: %s", apiErr.StatusCode, firstRunes(body, 100))
	}
}
