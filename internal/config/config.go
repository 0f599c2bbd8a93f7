// Package config provides configuration loading and structs for the NutriGen server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvAPIKey is the environment variable holding the Google API key.
const EnvAPIKey = "GOOGLE_API_KEY"

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chat      ChatConfig      `yaml:"chat"`
	Inbox     InboxConfig     `yaml:"inbox"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for database and indices.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	BleveIndexPath  string `yaml:"bleve_index_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
}

// LLMConfig holds language-model settings. The API key is never stored in the
// config file; it is read from the GOOGLE_API_KEY environment variable.
type LLMConfig struct {
	// Provider selects the backend: "gemini" (default) or "mock" for offline runs.
	Provider        string `yaml:"provider"`
	ExtractionModel string `yaml:"extraction_model"`
	AnswerModel     string `yaml:"answer_model"`
}

// EmbeddingConfig holds embedder settings.
type EmbeddingConfig struct {
	// Provider selects the backend: "gemini" (default), "onnx" (local model,
	// requires CGO), or "mock".
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// ChatConfig holds retrieval and chunking settings for grounded chat.
type ChatConfig struct {
	ChunkSize      int     `yaml:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap"`
	TopK           int     `yaml:"top_k"`
	TopKCandidates int     `yaml:"top_k_candidates"`
	KeywordWeight  float64 `yaml:"keyword_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`
}

// InboxConfig holds the watched drop directory. Files placed there are
// processed into the named session automatically.
type InboxConfig struct {
	Directory  string `yaml:"directory"`
	Session    string `yaml:"session"`
	DebounceMs int    `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	if cfg.Inbox.Directory != "" {
		cfg.Inbox.Directory = expandPath(cfg.Inbox.Directory, configDir)
	}

	return &cfg, nil
}

// Validate checks settings that cannot be defaulted. The Gemini providers
// require GOOGLE_API_KEY in the environment; failing fast here beats a broken
// first request.
func (c *Config) Validate() error {
	needsKey := c.LLM.Provider == "gemini" || c.Embedding.Provider == "gemini"
	if needsKey && os.Getenv(EnvAPIKey) == "" {
		return fmt.Errorf("%s not set; required when the llm or embedding provider is gemini", EnvAPIKey)
	}
	switch c.LLM.Provider {
	case "gemini", "mock":
	default:
		return fmt.Errorf("unknown llm provider %q (supported: gemini, mock)", c.LLM.Provider)
	}
	switch c.Embedding.Provider {
	case "gemini", "onnx", "mock":
	default:
		return fmt.Errorf("unknown embedding provider %q (supported: gemini, onnx, mock)", c.Embedding.Provider)
	}
	if c.Embedding.Provider == "onnx" && c.Embedding.ModelPath == "" {
		return fmt.Errorf("embedding.model_path is required for the onnx provider")
	}
	return nil
}

// APIKey returns the Google API key from the environment.
func (c *Config) APIKey() string {
	return os.Getenv(EnvAPIKey)
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
