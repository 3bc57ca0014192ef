package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file picked up from the working directory when
// no explicit path is given.
const DefaultPath = "config.yaml"

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
	Watch     WatchConfig     `yaml:"watch,omitempty"`
	Chroma    ChromaConfig    `yaml:"chroma,omitempty"`
	PDF       PDFConfig       `yaml:"pdf,omitempty"`
}

type ServerConfig struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode,omitempty"` // "debug" | "release" | "test"
}

// StorageConfig holds the on-disk locations for the index and transcript DB.
type StorageConfig struct {
	VectorDir    string `yaml:"vector_dir"`    // holds index.bin + metadata.json
	DatabasePath string `yaml:"database_path"` // SQLite transcript store
	UploadDir    string `yaml:"upload_dir"`
}

type ChunkingConfig struct {
	Size     int    `yaml:"size"`
	Overlap  *int   `yaml:"overlap,omitempty"` // nil means unset; 0 is a valid overlap
	Strategy string `yaml:"strategy,omitempty"` // "window" | "recursive"
}

// EmbeddingConfig selects and configures the text embedder.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // "ollama" | "openai" | "hash"
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	Dimensions int    `yaml:"dimensions,omitempty"` // hash provider only
	BatchSize  int    `yaml:"batch_size,omitempty"`
}

type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// LLMConfig holds per-provider generation settings. A provider takes part in
// the fallback chain only when its credential (or, for Ollama, its base URL)
// is set.
type LLMConfig struct {
	Gemini GeminiConfig `yaml:"gemini"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Ollama OllamaConfig `yaml:"ollama"`
	Groq   GroqConfig   `yaml:"groq"`
}

type GeminiConfig struct {
	APIKey      string `yaml:"api_key,omitempty"`
	Model       string `yaml:"model,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty"`
}

type OpenAIConfig struct {
	APIKey      string `yaml:"api_key,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Model       string `yaml:"model,omitempty"`
	SiteURL     string `yaml:"site_url,omitempty"` // OpenRouter HTTP-Referer
	AppName     string `yaml:"app_name,omitempty"` // OpenRouter X-Title
	TimeoutSecs int    `yaml:"timeout_secs,omitempty"`
}

type OllamaConfig struct {
	BaseURL     string `yaml:"base_url,omitempty"`
	Model       string `yaml:"model,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty"`
}

type GroqConfig struct {
	APIKey      string `yaml:"api_key,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Model       string `yaml:"model,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty"`
}

// WatchConfig configures the transcript drop folder.
type WatchConfig struct {
	Dir      string   `yaml:"dir,omitempty"`
	Patterns []string `yaml:"patterns,omitempty"` // doublestar globs relative to Dir
}

// ChromaConfig enables mirroring appended chunks into a Chroma collection.
type ChromaConfig struct {
	URL        string `yaml:"url,omitempty"`
	Collection string `yaml:"collection,omitempty"`
}

type PDFConfig struct {
	UnidocLicenseKey string `yaml:"unidoc_license_key,omitempty"`
}

// NotFoundError is returned when an explicitly requested config file is missing.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Load builds the configuration from .env, an optional YAML file and the
// process environment, in that order of increasing precedence. An empty path
// means ./config.yaml if it exists, defaults otherwise.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg := &Config{}
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no file, defaults + environment only
	case errors.Is(err, os.ErrNotExist):
		return nil, &NotFoundError{Path: path}
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Default returns a configuration with every default applied and nothing
// read from disk or the environment.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("PORT", &c.Server.Port)
	str("GIN_MODE", &c.Server.GinMode)

	str("VECTOR_STORE_PATH", &c.Storage.VectorDir)
	str("DATABASE_PATH", &c.Storage.DatabasePath)
	str("UPLOAD_DIR", &c.Storage.UploadDir)

	str("RAG_CHUNK_STRATEGY", &c.Chunking.Strategy)
	str("EMBEDDING_PROVIDER", &c.Embedding.Provider)
	str("EMBEDDING_MODEL", &c.Embedding.Model)
	str("EMBEDDING_BASE_URL", &c.Embedding.BaseURL)
	str("EMBEDDING_API_KEY", &c.Embedding.APIKey)

	str("GEMINI_API_KEY", &c.LLM.Gemini.APIKey)
	str("GEMINI_MODEL", &c.LLM.Gemini.Model)
	str("GEMINI_BASE_URL", &c.LLM.Gemini.BaseURL)

	str("OPENAI_API_KEY", &c.LLM.OpenAI.APIKey)
	str("OPENAI_BASE_URL", &c.LLM.OpenAI.BaseURL)
	str("OPENAI_MODEL", &c.LLM.OpenAI.Model)
	str("SITE_URL", &c.LLM.OpenAI.SiteURL)
	str("APP_NAME", &c.LLM.OpenAI.AppName)

	str("OLLAMA_BASE_URL", &c.LLM.Ollama.BaseURL)
	str("OLLAMA_MODEL", &c.LLM.Ollama.Model)

	str("GROQ_API_KEY", &c.LLM.Groq.APIKey)
	str("GROQ_BASE_URL", &c.LLM.Groq.BaseURL)
	str("GROQ_MODEL", &c.LLM.Groq.Model)

	str("WATCH_DIR", &c.Watch.Dir)
	str("CHROMA_URL", &c.Chroma.URL)
	str("CHROMA_COLLECTION", &c.Chroma.Collection)
	str("UNIDOC_LICENSE_KEY", &c.PDF.UnidocLicenseKey)

	if v, ok := lookup("RAG_CHUNK_OVERLAP"); ok && v != "" {
		var overlap int
		if err := num("RAG_CHUNK_OVERLAP", &overlap); err != nil {
			return err
		}
		c.Chunking.Overlap = &overlap
	}
	for key, dst := range map[string]*int{
		"RAG_CHUNK_SIZE":       &c.Chunking.Size,
		"TOP_K":                &c.Retrieval.TopK,
		"EMBEDDING_DIMENSIONS": &c.Embedding.Dimensions,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	if c.Storage.VectorDir == "" {
		c.Storage.VectorDir = "./vector_index"
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "./data/meetings.db"
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "./data/uploads"
	}

	if c.Chunking.Size == 0 {
		c.Chunking.Size = 1000
	}
	if c.Chunking.Overlap == nil {
		overlap := 200
		c.Chunking.Overlap = &overlap
	}
	if c.Chunking.Strategy == "" {
		c.Chunking.Strategy = "window"
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "ollama"
	}
	switch c.Embedding.Provider {
	case "ollama":
		if c.Embedding.Model == "" {
			c.Embedding.Model = "all-minilm"
		}
		if c.Embedding.BaseURL == "" {
			c.Embedding.BaseURL = "http://localhost:11434"
		}
	case "openai":
		if c.Embedding.Model == "" {
			c.Embedding.Model = "text-embedding-3-small"
		}
	case "hash":
		if c.Embedding.Dimensions == 0 {
			c.Embedding.Dimensions = 384
		}
		if c.Embedding.Model == "" {
			c.Embedding.Model = fmt.Sprintf("hash-%d", c.Embedding.Dimensions)
		}
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 32
	}

	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 5
	}

	g := &c.LLM.Gemini
	if g.Model == "" {
		g.Model = "gemini-2.5-flash"
	}
	if g.TimeoutSecs == 0 {
		g.TimeoutSecs = 30
	}
	o := &c.LLM.OpenAI
	if o.BaseURL == "" {
		o.BaseURL = "https://api.openai.com/v1"
	}
	if o.SiteURL == "" {
		o.SiteURL = "https://localhost:5000"
	}
	if o.AppName == "" {
		o.AppName = "AutoMeet"
	}
	if o.TimeoutSecs == 0 {
		o.TimeoutSecs = 45
	}
	// Ollama's base URL stays empty on purpose: it is the switch that puts
	// the local server into the fallback chain.
	if c.LLM.Ollama.Model == "" {
		c.LLM.Ollama.Model = "llama2"
	}
	if c.LLM.Ollama.TimeoutSecs == 0 {
		c.LLM.Ollama.TimeoutSecs = 60
	}
	q := &c.LLM.Groq
	if q.BaseURL == "" {
		q.BaseURL = "https://api.groq.com/openai/v1"
	}
	if q.Model == "" {
		q.Model = "llama3-8b-8192"
	}
	if q.TimeoutSecs == 0 {
		q.TimeoutSecs = 30
	}

	if len(c.Watch.Patterns) == 0 {
		c.Watch.Patterns = []string{"**/*.txt", "**/*.md", "**/*.vtt", "**/*.srt", "**/*.pdf", "**/*.json"}
	}
	if c.Chroma.Collection == "" {
		c.Chroma.Collection = "meeting-transcripts"
	}
}

// Validate checks the configuration for values the services cannot work with.
func (c *Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	switch {
	case c.Chunking.Overlap == nil:
		return fmt.Errorf("chunking.overlap is not set")
	case *c.Chunking.Overlap < 0:
		return fmt.Errorf("chunking.overlap must not be negative, got %d", *c.Chunking.Overlap)
	}
	switch c.Chunking.Strategy {
	case "window", "recursive":
	default:
		return fmt.Errorf("unknown chunking.strategy %q", c.Chunking.Strategy)
	}

	switch c.Embedding.Provider {
	case "ollama", "hash":
	case "openai":
		if c.Embedding.APIKey == "" && c.LLM.OpenAI.APIKey == "" {
			return fmt.Errorf("embedding.provider openai requires embedding.api_key or OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown embedding.provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Provider == "hash" && c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive for the hash provider")
	}

	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Storage.VectorDir == "" {
		return fmt.Errorf("storage.vector_dir is required")
	}
	return nil
}
