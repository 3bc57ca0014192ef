package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github/itish2003/meetassist/config"
	"github/itish2003/meetassist/models"
)

// OllamaProvider calls a local Ollama server's /api/generate endpoint.
type OllamaProvider struct {
	httpClient *http.Client
	baseURL    string
	model      string
	timeout    time.Duration
}

func NewOllamaProvider(cfg config.OllamaConfig, hc *http.Client) *OllamaProvider {
	if hc == nil {
		hc = http.DefaultClient
	}
	model := cfg.Model
	if model == "" {
		model = "llama2"
	}
	return &OllamaProvider{
		httpClient: hc,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      model,
		timeout:    seconds(cfg.TimeoutSecs, 60),
	}
}

func (o *OllamaProvider) Name() string { return "ollama" }

func (o *OllamaProvider) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	reqBody, err := json.Marshal(models.OllamaGenerateRequest{
		Model:  o.model,
		Prompt: joinSystem(req.System, req.Prompt),
		Stream: false,
		Options: models.OllamaGenerateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create ollama http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama not available: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var out models.OllamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}
	return out.Response, nil
}
