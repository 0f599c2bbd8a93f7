package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./data/db/nutrigen.db"
inbox:
  directory: "./inbox"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "nutrigen.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	wantInbox := filepath.Join(dir, "inbox")
	if cfg.Inbox.Directory != wantInbox {
		t.Errorf("inbox directory = %s, want %s", cfg.Inbox.Directory, wantInbox)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("default llm provider: got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.ExtractionModel != "gemini-1.5-flash" || cfg.LLM.AnswerModel != "gemini-2.5-flash" {
		t.Errorf("default llm models: %+v", cfg.LLM)
	}
	if cfg.Embedding.Provider != "gemini" || cfg.Embedding.Dimensions != 768 {
		t.Errorf("default embedding config: %+v", cfg.Embedding)
	}
	if cfg.Chat.TopK != 4 {
		t.Errorf("default top_k: got %d", cfg.Chat.TopK)
	}
	if cfg.Chat.KeywordWeight != 0.5 || cfg.Chat.SemanticWeight != 0.5 {
		t.Errorf("default weights: %+v", cfg.Chat)
	}
	if cfg.Inbox.Session != "inbox" || cfg.Inbox.DebounceMs != 500 {
		t.Errorf("default inbox config: %+v", cfg.Inbox)
	}
}

func TestApplyDefaults_ONNXDimensions(t *testing.T) {
	cfg := &Config{Embedding: EmbeddingConfig{Provider: "onnx"}}
	ApplyDefaults(cfg)
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("onnx default dimensions: got %d, want 384", cfg.Embedding.Dimensions)
	}
}

func TestValidate_RequiresAPIKeyForGemini(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	cfg := &Config{}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when GOOGLE_API_KEY is unset and provider is gemini")
	}

	t.Setenv(EnvAPIKey, "test-key")
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate with key set: %v", err)
	}
	if cfg.APIKey() != "test-key" {
		t.Errorf("APIKey() = %q", cfg.APIKey())
	}
}

func TestValidate_MockProvidersNeedNoKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	cfg := &Config{
		LLM:       LLMConfig{Provider: "mock"},
		Embedding: EmbeddingConfig{Provider: "mock"},
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		t.Errorf("mock providers should not require a key: %v", err)
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	t.Setenv(EnvAPIKey, "k")
	cfg := &Config{LLM: LLMConfig{Provider: "openai"}}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown llm provider")
	}
}

func TestValidate_ONNXRequiresModelPath(t *testing.T) {
	t.Setenv(EnvAPIKey, "k")
	cfg := &Config{Embedding: EmbeddingConfig{Provider: "onnx"}}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when onnx provider has no model_path")
	}
}
