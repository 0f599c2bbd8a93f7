package llm

import (
	"encoding/json"
	"strings"

	"github.com/nutrigen/nutrigen/internal/models"
)

// stripJSONFence removes markdown code fences the model sometimes wraps its
// JSON answer in, with or without the "json" language tag.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// decodeStructuredData parses a model response into structured data. Malformed
// JSON is not an error: extraction is best effort, so the caller gets empty
// data and decides whether to fall back.
func decodeStructuredData(raw string) *models.StructuredData {
	cleaned := stripJSONFence(raw)
	var data models.StructuredData
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return &models.StructuredData{}
	}
	return &data
}
