// Package main is the nutrigen CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nutrigen/nutrigen/internal/chat"
	"github.com/nutrigen/nutrigen/internal/cli"
	"github.com/nutrigen/nutrigen/internal/config"
	"github.com/nutrigen/nutrigen/internal/embedding"
	"github.com/nutrigen/nutrigen/internal/indexer"
	"github.com/nutrigen/nutrigen/internal/keyword"
	"github.com/nutrigen/nutrigen/internal/llm"
	"github.com/nutrigen/nutrigen/internal/models"
	"github.com/nutrigen/nutrigen/internal/pipeline"
	"github.com/nutrigen/nutrigen/internal/search"
	"github.com/nutrigen/nutrigen/internal/server"
	"github.com/nutrigen/nutrigen/internal/session"
	"github.com/nutrigen/nutrigen/internal/storage"
	"github.com/nutrigen/nutrigen/internal/vector"
	"github.com/nutrigen/nutrigen/internal/watcher"
	"github.com/nutrigen/nutrigen/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/nutrigen/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml in
// the current directory wins, so running from the project dir picks up the
// project's config. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// The API key may live in a .env next to the binary during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "process":
		runProcess()
	case "ask":
		runAsk()
	case "sessions":
		runSessions()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("nutrigen version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if err := restoreVectorIndex(ctx, components, cfg.Storage.VectorIndexPath, logger); err != nil {
		logger.Fatal("Failed to restore vector index", zap.Error(err))
	}

	inboxOpts := []watcher.InboxOption{}
	if debugMode {
		inboxOpts = append(inboxOpts, watcher.WithLogger(logger))
	}
	inbox := watcher.NewInbox(&cfg.Inbox, components.Processor, components.Sessions, inboxOpts...)
	inboxCtx, inboxCancel := context.WithCancel(ctx)
	defer inboxCancel()
	if cfg.Inbox.Directory != "" {
		if err := inbox.Start(inboxCtx); err != nil {
			logger.Fatal("Failed to start inbox watcher", zap.Error(err))
		}
		inbox.SyncExistingFiles(inboxCtx)
	}

	srv := server.NewServer(
		components.Sessions,
		components.Processor,
		components.Answerer,
		components.Engine,
		components.Indexer,
		components.Storage,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	inbox.Stop()
	inboxCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
	if err := components.vectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
		logger.Warn("vector index save failed",
			zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
	}
}

// restoreVectorIndex brings the in-memory vector index back from its on-disk
// snapshot so sessions are not re-embedded on every start. When the snapshot
// is missing, unreadable, or out of step with the chunks in storage, the index
// is rebuilt by re-embedding every session.
func restoreVectorIndex(ctx context.Context, components *Components, path string, logger *zap.Logger) error {
	if err := components.vectorIndex.Load(path); err != nil {
		logger.Warn("vector index snapshot unreadable",
			zap.String("path", path), zap.Error(err))
	}
	chunks, err := components.Storage.CountChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}
	if int64(components.vectorIndex.Size()) == chunks {
		logger.Info("vector index restored",
			zap.String("path", path), zap.Int("vectors", components.vectorIndex.Size()))
		return nil
	}

	components.vectorIndex.Clear()
	sessions, err := components.Storage.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, sess := range sessions {
		if err := components.Indexer.ReindexSession(ctx, sess.ID); err != nil {
			logger.Warn("session reindex failed",
				zap.String("session_id", sess.ID), zap.Error(err))
		}
	}
	logger.Info("sessions re-embedded", zap.Int("sessions", len(sessions)))
	return nil
}

func runProcess() {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	sessionFlag := fs.String("session", "", "session name or ID (created when missing)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: nutrigen process --session <name> <file>...")
		os.Exit(1)
	}
	format, err := parseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	components, _ := mustInitialize(*configPath)
	defer components.Close()

	ctx := context.Background()
	sess, err := resolveSession(ctx, components.Sessions, *sessionFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Session failed: %v\n", err)
		os.Exit(1)
	}

	data, err := components.Processor.ProcessPaths(ctx, sess.ID, fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Processing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Processed %d file(s) into session %s (%s)\n", fs.NArg(), sess.Name, sess.ID)
	if err := cli.WriteStructuredData(os.Stdout, data, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	sessionFlag := fs.String("session", "", "session name or ID")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	question := joinArgs(fs.Args())
	if question == "" {
		fmt.Println("Usage: nutrigen ask --session <name> <question>")
		os.Exit(1)
	}
	format, err := parseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	components, _ := mustInitialize(*configPath)
	defer components.Close()

	ctx := context.Background()
	sess, err := findSession(ctx, components.Sessions, *sessionFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Session failed: %v\n", err)
		os.Exit(1)
	}
	if err := components.Indexer.ReindexSession(ctx, sess.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Reindex failed: %v\n", err)
		os.Exit(1)
	}

	answer, err := components.Answerer.Ask(ctx, sess.ID, question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, question, answer, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runSessions() {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := parseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	components, _ := mustInitialize(*configPath)
	defer components.Close()

	sessions, err := components.Sessions.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSessions(os.Stdout, sessions, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	components, cfg := mustInitialize(*configPath)
	defer components.Close()

	ctx := context.Background()
	sessionCount, err := components.Storage.CountSessions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count sessions failed: %v\n", err)
		os.Exit(1)
	}
	docCount, err := components.Storage.CountDocuments(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
		os.Exit(1)
	}
	chunkCount, err := components.Storage.CountChunks(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count chunks failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("sessions:           %d\n", sessionCount)
	fmt.Printf("documents:          %d\n", docCount)
	fmt.Printf("chunks:             %d\n", chunkCount)
	fmt.Printf("llm_provider:       %s\n", cfg.LLM.Provider)
	fmt.Printf("embedding_provider: %s\n", cfg.Embedding.Provider)
	if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath); err == nil {
		fmt.Printf("disk_usage_bytes:   %d\n", diskBytes)
	}
}

// joinArgs joins positional args with spaces so multi-word questions work with
// or without shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func parseFormat(s string) (cli.OutputFormat, error) {
	switch s {
	case "text":
		return cli.OutputText, nil
	case "json":
		return cli.OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// resolveSession finds a session by ID or name, creating it when missing. An
// empty selector creates a session with a generated name.
func resolveSession(ctx context.Context, sessions *session.Manager, selector string) (*models.Session, error) {
	if selector != "" {
		if sess, err := findSession(ctx, sessions, selector); err == nil {
			return sess, nil
		}
	}
	return sessions.Create(ctx, selector)
}

// findSession finds a session by ID first, then by name.
func findSession(ctx context.Context, sessions *session.Manager, selector string) (*models.Session, error) {
	if selector == "" {
		return nil, fmt.Errorf("session is required (use --session)")
	}
	if sess, err := sessions.Get(ctx, selector); err == nil {
		return sess, nil
	}
	all, err := sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.Name == selector {
			return sessions.Get(ctx, s.ID)
		}
	}
	return nil, fmt.Errorf("session %q not found", selector)
}

func mustInitialize(configPath string) (*Components, *config.Config) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(context.Background(), cfg, logger, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, cfg
}

// Components holds initialized services.
type Components struct {
	Storage   storage.Storage
	Embedder  embedding.Embedder
	LLM       llm.Client
	Engine    *search.Engine
	Indexer   *indexer.Indexer
	Sessions  *session.Manager
	Processor *pipeline.Processor
	Answerer  *chat.Answerer

	keywordIndex keyword.KeywordIndex
	vectorIndex  vector.VectorIndex
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.LLM != nil {
		_ = c.LLM.Close()
	}
	if c.vectorIndex != nil {
		_ = c.vectorIndex.Close()
	}
	if c.keywordIndex != nil {
		_ = c.keywordIndex.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var embedder embedding.Embedder
	switch cfg.Embedding.Provider {
	case "gemini":
		embedder, err = embedding.NewGeminiEmbedder(ctx, cfg.APIKey(), cfg.Embedding.Model, cfg.Embedding.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
	case "onnx":
		embedder, err = embedding.NewONNXEmbedder(
			cfg.Embedding.ModelPath,
			cfg.Embedding.Dimensions,
			cfg.Embedding.MaxTokens,
			cfg.Embedding.CacheSize,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
	default:
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	}

	var client llm.Client
	if cfg.LLM.Provider == "gemini" {
		llmOpts := []llm.GeminiOption{
			llm.WithExtractionModel(cfg.LLM.ExtractionModel),
			llm.WithAnswerModel(cfg.LLM.AnswerModel),
		}
		if debug {
			llmOpts = append(llmOpts, llm.WithLogger(logger))
		}
		client, err = llm.NewGeminiClient(ctx, cfg.APIKey(), llmOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize llm client: %w", err)
		}
	} else {
		client = &llm.MockClient{}
	}

	vectorIndex, err := vector.NewMemoryIndex(embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	idxOpts := []indexer.IndexerOption{}
	if debug {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
	}
	idx := indexer.NewIndexer(store, embedder, vectorIndex, keywordIndex, &cfg.Chat, idxOpts...)
	engine := search.NewEngine(store, embedder, vectorIndex, keywordIndex, &cfg.Chat)
	sessions := session.NewManager(store, idx, session.WithLogger(logger))
	processor := pipeline.NewProcessor(store, client, idx, pipeline.WithLogger(logger))
	answerer := chat.NewAnswerer(store, engine, client, chat.WithLogger(logger))

	return &Components{
		Storage:      store,
		Embedder:     embedder,
		LLM:          client,
		Engine:       engine,
		Indexer:      idx,
		Sessions:     sessions,
		Processor:    processor,
		Answerer:     answerer,
		keywordIndex: keywordIndex,
		vectorIndex:  vectorIndex,
	}, nil
}

func printUsage() {
	fmt.Println(`nutrigen - nutrition document analysis and chat

Usage:
  nutrigen server [flags]                     Start the HTTP server
  nutrigen process [flags] <file>...          Process documents into a session
  nutrigen ask [flags] <question>             Ask about a session's documents
  nutrigen sessions [flags]                   List sessions
  nutrigen status [flags]                     Show storage and index status
  nutrigen version                            Show version
  nutrigen help                               Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/nutrigen/config.yaml)
  --debug            Enable debug logging

Process Flags:
  --config string    Config file path
  --session string   Session name or ID (created when missing)
  --output string    Output format: text or json (default: text)

Ask Flags:
  --config string    Config file path
  --session string   Session name or ID
  --output string    Output format: text or json (default: text)

The Gemini API key is read from the GOOGLE_API_KEY environment variable
(a .env file in the working directory is loaded automatically).

Examples:
  nutrigen server
  nutrigen process --session "Avaliações 2024" avaliacao_junho.pdf
  nutrigen ask --session "Avaliações 2024" Qual é o meu peso mais recente?
  nutrigen sessions
  nutrigen status`)
}
