package llm

import (
	"context"

	"github.com/nutrigen/nutrigen/internal/models"
)

// MockClient is a Client for tests and offline runs. Responses are canned and
// calls are recorded.
type MockClient struct {
	// ExtractResponse is returned by ExtractStructuredData; when nil, the raw
	// ExtractJSON string is decoded instead, exercising the same fence and
	// error tolerance as the real client.
	ExtractResponse *models.StructuredData
	ExtractJSON     string
	ExtractErr      error

	AnswerResponse string
	AnswerErr      error

	// ExtractCalls and AnswerCalls record the inputs of each invocation.
	ExtractCalls []string
	AnswerCalls  []AnswerCall
}

// AnswerCall records one Answer invocation.
type AnswerCall struct {
	Question   string
	DocContext string
	History    []models.ChatMessage
}

// ExtractStructuredData returns the configured response or decodes ExtractJSON.
func (m *MockClient) ExtractStructuredData(_ context.Context, text string) (*models.StructuredData, error) {
	m.ExtractCalls = append(m.ExtractCalls, text)
	if m.ExtractErr != nil {
		return nil, m.ExtractErr
	}
	if m.ExtractResponse != nil {
		return m.ExtractResponse, nil
	}
	return decodeStructuredData(m.ExtractJSON), nil
}

// Answer returns the configured answer.
func (m *MockClient) Answer(_ context.Context, question, docContext string, history []models.ChatMessage) (string, error) {
	m.AnswerCalls = append(m.AnswerCalls, AnswerCall{Question: question, DocContext: docContext, History: history})
	if m.AnswerErr != nil {
		return "", m.AnswerErr
	}
	return m.AnswerResponse, nil
}

// Close is a no-op.
func (m *MockClient) Close() error { return nil }
