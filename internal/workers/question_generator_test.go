package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sureup/worker-api/internal/domain"
)

func sourceQuestion(t *testing.T, store *mockStore) *domain.Question {
	t.Helper()
	question, err := domain.NewQuestion(uuid.New(), "math", map[string]any{
		"question": "What is 7*8?",
		"answer":   "56",
	})
	require.NoError(t, err)
	store.questions[question.ID] = question
	return question
}

func TestQuestionGeneratorSuccess(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	source := sourceQuestion(t, store)
	model := &mockModel{response: `[
		{"question": "What is 6*8?", "answer": "48"},
		{"question": "What is 9*8?", "answer": "72"}
	]`}

	generator := NewQuestionGeneratorFactory(Deps{Store: store, Model: model})()
	result, err := generator.Process(context.Background(), map[string]any{
		"source_question_id": source.ID.String(),
		"count":              float64(2), // JSON numbers decode as float64
	})
	require.NoError(t, err)

	resultMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, resultMap["generated"])

	require.Len(t, store.savedQuestions, 2)
	for _, q := range store.savedQuestions {
		assert.Equal(t, source.UserID, q.UserID)
		assert.Equal(t, source.Subject, q.Subject)
		require.NotNil(t, q.SourceID)
		assert.Equal(t, source.ID, *q.SourceID)
	}
}

func TestQuestionGeneratorCountBounds(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	source := sourceQuestion(t, store)
	model := &mockModel{response: `[{"question": "variant", "answer": "x"}]`}

	generator := NewQuestionGeneratorFactory(Deps{Store: store, Model: model})()

	// count is optional, and silly values are clamped rather than rejected
	for _, payload := range []map[string]any{
		{"source_question_id": source.ID.String()},
		{"source_question_id": source.ID.String(), "count": float64(-1)},
		{"source_question_id": source.ID.String(), "count": float64(500)},
	} {
		_, err := generator.Process(context.Background(), payload)
		assert.NoError(t, err)
	}
}

func TestQuestionGeneratorDropsInvalidVariants(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	source := sourceQuestion(t, store)

	// Second variant is empty and fails domain validation; it is dropped
	// while the first is kept.
	model := &mockModel{response: `[
		{"question": "What is 6*8?", "answer": "48"},
		{}
	]`}

	generator := NewQuestionGeneratorFactory(Deps{Store: store, Model: model})()
	result, err := generator.Process(context.Background(), map[string]any{
		"source_question_id": source.ID.String(),
	})
	require.NoError(t, err)

	resultMap := result.(map[string]any)
	assert.Equal(t, 1, resultMap["generated"])
	assert.Len(t, store.savedQuestions, 1)
}

func TestQuestionGeneratorNoUsableVariants(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	source := sourceQuestion(t, store)
	model := &mockModel{response: `[{}, {}]`}

	generator := NewQuestionGeneratorFactory(Deps{Store: store, Model: model})()
	_, err := generator.Process(context.Background(), map[string]any{
		"source_question_id": source.ID.String(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable variants")
	assert.Empty(t, store.savedQuestions)
}

func TestQuestionGeneratorMalformedResponse(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	source := sourceQuestion(t, store)
	model := &mockModel{response: "not json at all"}

	generator := NewQuestionGeneratorFactory(Deps{Store: store, Model: model})()
	_, err := generator.Process(context.Background(), map[string]any{
		"source_question_id": source.ID.String(),
	})
	assert.Error(t, err)
}

func TestQuestionGeneratorUnknownSource(t *testing.T) {
	t.Parallel()

	generator := NewQuestionGeneratorFactory(Deps{Store: newMockStore(), Model: &mockModel{}})()
	_, err := generator.Process(context.Background(), map[string]any{
		"source_question_id": uuid.New().String(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreMiss)
}

func TestQuestionGeneratorSaveFailure(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	source := sourceQuestion(t, store)
	store.saveQuestionErr = errors.New("database down")
	model := &mockModel{response: `[{"question": "v", "answer": "a"}]`}

	generator := NewQuestionGeneratorFactory(Deps{Store: store, Model: model})()
	_, err := generator.Process(context.Background(), map[string]any{
		"source_question_id": source.ID.String(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database down")
}
