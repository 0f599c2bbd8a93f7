package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/nutrigen/data/db/nutrigen.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/nutrigen/data/indices/bleve"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/nutrigen/data/indices/vectors.bin"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
	}
	if cfg.LLM.ExtractionModel == "" {
		cfg.LLM.ExtractionModel = "gemini-1.5-flash"
	}
	if cfg.LLM.AnswerModel == "" {
		cfg.LLM.AnswerModel = "gemini-2.5-flash"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "gemini"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "embedding-001"
	}
	if cfg.Embedding.Dimensions == 0 {
		switch cfg.Embedding.Provider {
		case "gemini":
			cfg.Embedding.Dimensions = 768
		default:
			cfg.Embedding.Dimensions = 384
		}
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Chat.ChunkSize == 0 {
		cfg.Chat.ChunkSize = 200
	}
	if cfg.Chat.ChunkOverlap == 0 {
		cfg.Chat.ChunkOverlap = 40
	}
	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = 4
	}
	if cfg.Chat.TopKCandidates == 0 {
		cfg.Chat.TopKCandidates = 50
	}
	if cfg.Chat.KeywordWeight == 0 && cfg.Chat.SemanticWeight == 0 {
		cfg.Chat.KeywordWeight = 0.5
		cfg.Chat.SemanticWeight = 0.5
	}
	if cfg.Inbox.Session == "" {
		cfg.Inbox.Session = "inbox"
	}
	if cfg.Inbox.DebounceMs == 0 {
		cfg.Inbox.DebounceMs = 500
	}
}
