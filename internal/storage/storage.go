// Package storage defines the persistence interface for sessions, documents,
// chunks, and chat history.
package storage

import (
	"context"

	"github.com/nutrigen/nutrigen/internal/models"
)

// Storage defines persistence operations.
type Storage interface {
	// Session operations
	CreateSession(ctx context.Context, sess *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListSessions(ctx context.Context) ([]*models.Session, error)
	UpdateSessionData(ctx context.Context, id string, data *models.StructuredData) error
	RenameSession(ctx context.Context, id, name string) error
	DeleteSession(ctx context.Context, id string) error

	// Chat operations
	AppendChatMessage(ctx context.Context, sessionID string, msg *models.ChatMessage) error
	GetChatMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	ClearChatMessages(ctx context.Context, sessionID string) error

	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocumentsBySession(ctx context.Context, sessionID string) ([]*models.Document, error)

	// Chunk operations
	CreateChunk(ctx context.Context, chunk *models.DocumentChunk) error
	GetChunk(ctx context.Context, id string) (*models.DocumentChunk, error)
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.DocumentChunk, error)
	DeleteChunksByDocumentID(ctx context.Context, docID string) error
	BatchCreateChunks(ctx context.Context, chunks []*models.DocumentChunk) error

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)
	CountSessions(ctx context.Context) (int64, error)

	Close() error
}
