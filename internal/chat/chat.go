// Package chat answers questions about a session's documents using retrieved
// chunks as grounding context.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nutrigen/nutrigen/internal/llm"
	"github.com/nutrigen/nutrigen/internal/models"
	"github.com/nutrigen/nutrigen/internal/storage"
)

// maxHistoryMessages bounds how many past turns are replayed into the prompt.
const maxHistoryMessages = 20

// Retriever fetches the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query *models.SearchQuery) ([]*models.SearchResult, error)
}

// Answerer runs one question-answer turn: retrieve, prompt, persist.
type Answerer struct {
	storage   storage.Storage
	retriever Retriever
	llm       llm.Client
	logger    *zap.Logger
}

// AnswererOption configures an Answerer.
type AnswererOption func(*Answerer)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) AnswererOption {
	return func(a *Answerer) { a.logger = l }
}

// NewAnswerer creates an Answerer with the given dependencies.
func NewAnswerer(store storage.Storage, retriever Retriever, client llm.Client, opts ...AnswererOption) *Answerer {
	a := &Answerer{
		storage:   store,
		retriever: retriever,
		llm:       client,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask answers a question against the session's documents and appends both the
// question and the answer to the session's chat history.
func (a *Answerer) Ask(ctx context.Context, sessionID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question cannot be empty")
	}
	if _, err := a.storage.GetSession(ctx, sessionID); err != nil {
		return "", fmt.Errorf("session lookup failed: %w", err)
	}

	history, err := a.storage.GetChatMessages(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load chat history: %w", err)
	}
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}

	results, err := a.retriever.Retrieve(ctx, &models.SearchQuery{
		SessionID: sessionID,
		Query:     question,
	})
	if err != nil {
		return "", fmt.Errorf("retrieval failed: %w", err)
	}

	answer, err := a.llm.Answer(ctx, question, buildContext(results), history)
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}

	now := time.Now().UTC()
	userMsg := &models.ChatMessage{Role: models.RoleUser, Content: question, CreatedAt: now}
	if err := a.storage.AppendChatMessage(ctx, sessionID, userMsg); err != nil {
		return "", fmt.Errorf("failed to store question: %w", err)
	}
	assistantMsg := &models.ChatMessage{Role: models.RoleAssistant, Content: answer, CreatedAt: now}
	if err := a.storage.AppendChatMessage(ctx, sessionID, assistantMsg); err != nil {
		return "", fmt.Errorf("failed to store answer: %w", err)
	}

	a.logger.Debug("question answered",
		zap.String("session_id", sessionID),
		zap.Int("context_chunks", len(results)))
	return answer, nil
}

// buildContext joins retrieved chunks into the grounding context block. Each
// chunk is prefixed with its source document so the model can cite it.
func buildContext(results []*models.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Documento: ")
		b.WriteString(r.Title)
		b.WriteString("\n")
		b.WriteString(r.Content)
	}
	return b.String()
}
