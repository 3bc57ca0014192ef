package models

// OllamaGenerateRequest is the body of a non-streaming /api/generate call.
type OllamaGenerateRequest struct {
	Model   string                `json:"model"`
	Prompt  string                `json:"prompt"`
	Stream  bool                  `json:"stream"`
	Options OllamaGenerateOptions `json:"options"`
}

// OllamaGenerateOptions carries the sampling parameters Ollama understands.
type OllamaGenerateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// OllamaGenerateResponse is used to parse the completion from the Ollama API response.
type OllamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
