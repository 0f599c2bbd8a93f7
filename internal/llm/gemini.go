package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/nutrigen/nutrigen/internal/models"
)

const (
	// DefaultExtractionModel handles structured JSON extraction.
	DefaultExtractionModel = "gemini-1.5-flash"
	// DefaultAnswerModel handles conversational question answering.
	DefaultAnswerModel = "gemini-2.5-flash"

	answerTemperature = 0.3
)

// GeminiClient implements Client on top of the Google Gemini API.
type GeminiClient struct {
	client          *genai.Client
	extractionModel string
	answerModel     string
	logger          *zap.Logger
}

// GeminiOption configures a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) GeminiOption {
	return func(c *GeminiClient) {
		c.logger = logger
	}
}

// WithExtractionModel overrides the model used for structured extraction.
func WithExtractionModel(name string) GeminiOption {
	return func(c *GeminiClient) {
		if name != "" {
			c.extractionModel = name
		}
	}
}

// WithAnswerModel overrides the model used for question answering.
func WithAnswerModel(name string) GeminiOption {
	return func(c *GeminiClient) {
		if name != "" {
			c.answerModel = name
		}
	}
}

// NewGeminiClient creates a Gemini-backed client. apiKey must be non-empty.
func NewGeminiClient(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c := &GeminiClient{
		client:          client,
		extractionModel: DefaultExtractionModel,
		answerModel:     DefaultAnswerModel,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ExtractStructuredData asks the model for the JSON contract at temperature
// zero with a JSON response MIME type. A syntactically invalid response is
// logged and returned as empty data so the caller can fall back to regex
// parsing.
func (c *GeminiClient) ExtractStructuredData(ctx context.Context, text string) (*models.StructuredData, error) {
	model := c.client.GenerativeModel(c.extractionModel)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	prompt := buildExtractionPrompt(text)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini: extract structured data: %w", err)
	}
	raw := responseText(resp)
	data := decodeStructuredData(raw)
	if data.IsEmpty() && raw != "" {
		c.logger.Warn("structured extraction returned unparseable JSON",
			zap.String("model", c.extractionModel),
			zap.Int("response_len", len(raw)))
	}
	return data, nil
}

// Answer generates a grounded response to the question using the retrieved
// document context and prior conversation turns.
func (c *GeminiClient) Answer(ctx context.Context, question, docContext string, history []models.ChatMessage) (string, error) {
	model := c.client.GenerativeModel(c.answerModel)
	model.SetTemperature(answerTemperature)

	prompt := buildAnswerPrompt(question, docContext, history)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: answer: %w", err)
	}
	answer := strings.TrimSpace(responseText(resp))
	if answer == "" {
		return "", fmt.Errorf("gemini: empty response from %s", c.answerModel)
	}
	return answer, nil
}

// Close releases the underlying API connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
