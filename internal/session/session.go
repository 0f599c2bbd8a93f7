// Package session manages analysis sessions: creation, lookup, renaming, and
// teardown of a session together with its indexed documents.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nutrigen/nutrigen/internal/models"
	"github.com/nutrigen/nutrigen/internal/storage"
)

// DocumentRemover tears down a session's documents across all indices.
type DocumentRemover interface {
	DeleteSession(ctx context.Context, sessionID string) error
}

// Manager coordinates session lifecycle across storage and the indices.
type Manager struct {
	storage storage.Storage
	remover DocumentRemover
	logger  *zap.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a session manager.
func NewManager(store storage.Storage, remover DocumentRemover, opts ...ManagerOption) *Manager {
	m := &Manager{
		storage: store,
		remover: remover,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates a new session. An empty name defaults to the generated ID.
func (m *Manager) Create(ctx context.Context, name string) (*models.Session, error) {
	sess := &models.Session{
		ID:   uuid.New().String(),
		Name: strings.TrimSpace(name),
	}
	if sess.Name == "" {
		sess.Name = sess.ID
	}
	if err := m.storage.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	m.logger.Debug("session created", zap.String("id", sess.ID), zap.String("name", sess.Name))
	return sess, nil
}

// Get returns a session with its chat history loaded.
func (m *Manager) Get(ctx context.Context, id string) (*models.Session, error) {
	sess, err := m.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	msgs, err := m.storage.GetChatMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	sess.Messages = msgs
	return sess, nil
}

// List returns all sessions, newest first, without chat history.
func (m *Manager) List(ctx context.Context) ([]*models.Session, error) {
	return m.storage.ListSessions(ctx)
}

// ReplaceData overwrites the session's structured extraction result.
func (m *Manager) ReplaceData(ctx context.Context, id string, data *models.StructuredData) error {
	return m.storage.UpdateSessionData(ctx, id, data)
}

// Rename changes the session's display name.
func (m *Manager) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	return m.storage.RenameSession(ctx, id, name)
}

// Delete removes the session, its chat history, and its indexed documents.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if _, err := m.storage.GetSession(ctx, id); err != nil {
		return err
	}
	if err := m.remover.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to remove session documents: %w", err)
	}
	// Chat messages cascade with the session row.
	if err := m.storage.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	m.logger.Debug("session deleted", zap.String("id", id))
	return nil
}
