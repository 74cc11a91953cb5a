package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sureup/worker-api/internal/domain"
	"github.com/sureup/worker-api/internal/task"
)

// Variant count bounds for question generation.
const (
	defaultVariantCount = 3
	maxVariantCount     = 10
)

// QuestionGenerator produces variant practice questions for a source
// question via the LLM and writes them to the question bank.
type QuestionGenerator struct {
	store  RecordStore
	model  ChatModel
	logger *slog.Logger
}

// NewQuestionGeneratorFactory returns a factory producing a fresh
// generator per task execution.
func NewQuestionGeneratorFactory(deps Deps) task.HandlerFactory {
	return func() task.Handler {
		return &QuestionGenerator{
			store:  deps.Store,
			model:  deps.Model,
			logger: slog.Default().With("worker", TaskTypeQuestionGenerator),
		}
	}
}

// Process expects a payload of the form
//
//	{"source_question_id": "<uuid>", "count": 3}
//
// count is optional and capped at maxVariantCount. Variants that fail
// validation individually are dropped; the task fails only when no variant
// could be saved.
func (w *QuestionGenerator) Process(ctx context.Context, payload map[string]any) (any, error) {
	sourceID, err := payloadUUID(payload, "source_question_id")
	if err != nil {
		return nil, err
	}

	count := payloadInt(payload, "count", defaultVariantCount)
	if count < 1 {
		count = defaultVariantCount
	}
	if count > maxVariantCount {
		count = maxVariantCount
	}

	source, err := w.store.GetQuestion(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load source question: %w", err)
	}

	variants, err := w.generateVariants(ctx, source, count)
	if err != nil {
		return nil, err
	}

	var savedIDs []string
	for _, content := range variants {
		question, err := domain.NewQuestion(source.UserID, source.Subject, content)
		if err != nil {
			w.logger.Warn("dropping invalid generated variant",
				"source_question_id", sourceID, "error", err)
			continue
		}
		question.SourceID = &source.ID

		if err := w.store.SaveQuestion(ctx, question); err != nil {
			return nil, fmt.Errorf("failed to save generated question: %w", err)
		}
		savedIDs = append(savedIDs, question.ID.String())
	}

	if len(savedIDs) == 0 {
		return nil, fmt.Errorf("model produced no usable variants for question %s", sourceID)
	}

	w.logger.Info("question variants generated",
		"source_question_id", sourceID,
		"requested", count,
		"saved", len(savedIDs))

	return map[string]any{
		"source_question_id": sourceID.String(),
		"generated":          len(savedIDs),
		"question_ids":       savedIDs,
	}, nil
}

// generateVariants runs the LLM call and parses the variant list.
func (w *QuestionGenerator) generateVariants(
	ctx context.Context,
	source *domain.Question,
	count int,
) ([]map[string]any, error) {
	content, err := json.Marshal(source.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode source question: %w", err)
	}

	prompt, err := renderPrompt(questionVariantPrompt, struct {
		Subject string
		Content string
		Count   int
	}{
		Subject: source.Subject,
		Content: string(content),
		Count:   count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render variant prompt: %w", err)
	}

	response, err := w.model.Chat(ctx, questionVariantSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("variant model call failed: %w", err)
	}

	variants, err := parseJSONArray(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse variants: %w", err)
	}
	return variants, nil
}
