// Package llm provides the language-model client used for structured data
// extraction from assessment text and for grounded question answering.
package llm

import (
	"context"

	"github.com/nutrigen/nutrigen/internal/models"
)

// Client is implemented by language-model backends.
type Client interface {
	// ExtractStructuredData turns raw assessment text into structured
	// assessments and a meal plan. A response the model fails to produce as
	// valid JSON yields empty data, not an error: extraction is best effort
	// and callers fall back to regex parsing.
	ExtractStructuredData(ctx context.Context, text string) (*models.StructuredData, error)

	// Answer responds to a question grounded on the given document context.
	// History carries prior turns of the conversation, oldest first.
	Answer(ctx context.Context, question, docContext string, history []models.ChatMessage) (string, error)

	// Close releases the underlying connection.
	Close() error
}
