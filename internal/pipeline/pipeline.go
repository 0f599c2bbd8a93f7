// Package pipeline runs the document processing flow: extract text, pull
// structured data out of it, persist the result on the session, and index the
// documents for retrieval.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nutrigen/nutrigen/internal/extract"
	"github.com/nutrigen/nutrigen/internal/fileid"
	"github.com/nutrigen/nutrigen/internal/indexer"
	"github.com/nutrigen/nutrigen/internal/llm"
	"github.com/nutrigen/nutrigen/internal/models"
	"github.com/nutrigen/nutrigen/internal/parse"
	"github.com/nutrigen/nutrigen/internal/storage"
)

// InputFile is one uploaded document: its original name and raw bytes. ID is
// optional; when set, an existing document with that ID is replaced.
type InputFile struct {
	ID   string
	Name string
	Data []byte
}

// Processor turns raw documents into a session's structured data and RAG index.
type Processor struct {
	extractor *extract.Extractor
	llm       llm.Client
	indexer   *indexer.Indexer
	storage   storage.Storage
	logger    *zap.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = l }
}

// NewProcessor creates a processor with the given dependencies.
func NewProcessor(store storage.Storage, client llm.Client, idx *indexer.Indexer, opts ...ProcessorOption) *Processor {
	p := &Processor{
		extractor: extract.NewExtractor(),
		llm:       client,
		indexer:   idx,
		storage:   store,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process extracts text from the given files, derives structured data from the
// combined text, replaces the session's data with it, and indexes every file
// for chat retrieval. The model output wins; when the model returns nothing
// usable the regex extractors fill in.
func (p *Processor) Process(ctx context.Context, sessionID string, files []InputFile) (*models.StructuredData, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no documents to process")
	}
	if _, err := p.storage.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}

	texts := make([]string, 0, len(files))
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Name))
		text, err := p.extractor.ExtractBytes(f.Data, ext)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
		texts = append(texts, text)
	}
	combined := strings.Join(texts, "\n\n")

	data := p.extractStructured(ctx, combined)
	if err := p.storage.UpdateSessionData(ctx, sessionID, data); err != nil {
		return nil, fmt.Errorf("failed to store session data: %w", err)
	}
	// New documents change the grounding, so the old conversation no longer applies.
	if err := p.storage.ClearChatMessages(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to reset chat history: %w", err)
	}

	for i, f := range files {
		if f.ID != "" {
			// Replace any earlier version of the same document.
			if err := p.indexer.DeleteDocument(ctx, f.ID); err != nil {
				return nil, fmt.Errorf("failed to replace %s: %w", f.Name, err)
			}
		}
		input := &models.DocumentInput{
			ID:        f.ID,
			SessionID: sessionID,
			Title:     f.Name,
			Content:   texts[i],
		}
		if err := p.indexer.IndexDocument(ctx, input); err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", f.Name, err)
		}
	}

	p.logger.Info("documents processed",
		zap.String("session_id", sessionID),
		zap.Int("files", len(files)),
		zap.Int("assessments", len(data.Assessments)),
		zap.Bool("meal_plan", data.MealPlan != nil))
	return data, nil
}

// ProcessPaths is Process for files already on disk. Each document gets a
// path-derived ID so re-processing the same file replaces it.
func (p *Processor) ProcessPaths(ctx context.Context, sessionID string, paths []string) (*models.StructuredData, error) {
	files := make([]InputFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		files = append(files, InputFile{
			ID:   fileid.FileDocID(abs),
			Name: filepath.Base(path),
			Data: data,
		})
	}
	return p.Process(ctx, sessionID, files)
}

// extractStructured asks the model first and falls back to the regex
// extractors when the model yields nothing usable.
func (p *Processor) extractStructured(ctx context.Context, text string) *models.StructuredData {
	data, err := p.llm.ExtractStructuredData(ctx, text)
	if err != nil {
		p.logger.Warn("model extraction failed, falling back to regex", zap.Error(err))
		data = nil
	}
	if !data.IsEmpty() {
		return data
	}

	table := parse.ParseMeasureTable(text)
	fallback := table.ToStructuredData()
	if plan := mealPlanFromSections(parse.ParseMealPlan(text)); plan != nil {
		if len(table.Dates) > 0 {
			plan.LastUpdateDate = table.Dates[len(table.Dates)-1]
		}
		fallback.MealPlan = plan
	}
	p.logger.Debug("regex extraction used",
		zap.Int("assessments", len(fallback.Assessments)),
		zap.Bool("meal_plan", fallback.MealPlan != nil))
	return fallback
}

// mealOrder is the customary display order of plan sections.
var mealOrder = []string{"CAFÉ DA MANHÃ", "LANCHE I", "ALMOÇO", "PRÉ-TREINO", "PRÉ TREINO", "TREINO", "JANTAR"}

// mealPlanFromSections converts the regex extractor's section map into the
// structured contract, in customary meal order. Returns nil for an empty map.
func mealPlanFromSections(sections map[string][]parse.MealEntry) *models.MealPlan {
	if len(sections) == 0 {
		return nil
	}
	ordered := make([]string, 0, len(sections))
	seen := make(map[string]bool)
	for _, name := range mealOrder {
		if _, ok := sections[name]; ok && !seen[name] {
			ordered = append(ordered, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range sections {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	ordered = append(ordered, rest...)

	plan := &models.MealPlan{}
	for _, name := range ordered {
		meal := models.Meal{Name: name}
		for _, e := range sections[name] {
			meal.Items = append(meal.Items, models.MealItem{
				Food:     e.Food,
				Quantity: e.Quantity,
			})
		}
		plan.Meals = append(plan.Meals, meal)
	}
	return plan
}
