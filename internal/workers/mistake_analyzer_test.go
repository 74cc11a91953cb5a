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

func analyzerPayload(recordID uuid.UUID) map[string]any {
	return map[string]any{
		"record_data": map[string]any{"id": recordID.String()},
	}
}

func pendingMistake(t *testing.T, store *mockStore) *domain.MistakeRecord {
	t.Helper()
	record, err := domain.NewMistakeRecord(uuid.New(), "math", "2+2=5?")
	require.NoError(t, err)
	store.mistakes[record.ID] = record
	return record
}

func TestMistakeAnalyzerSuccess(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	record := pendingMistake(t, store)
	model := &mockModel{response: `{
		"knowledge_points": ["addition"],
		"error_analysis": "basic arithmetic slip",
		"suggestion": "practice sums under 10"
	}`}

	analyzer := NewMistakeAnalyzerFactory(Deps{Store: store, Model: model})()
	result, err := analyzer.Process(context.Background(), analyzerPayload(record.ID))
	require.NoError(t, err)

	resultMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, record.ID.String(), resultMap["record_id"])

	// processing then completed, with the analysis attached at the end
	require.Len(t, store.analysisUpdates, 2)
	assert.Equal(t, domain.AnalysisStatusProcessing, store.analysisUpdates[0].status)
	assert.Equal(t, domain.AnalysisStatusCompleted, store.analysisUpdates[1].status)
	assert.Equal(t, "basic arithmetic slip", store.analysisUpdates[1].analysis["error_analysis"])

	assert.Equal(t, domain.AnalysisStatusCompleted, record.AnalysisStatus)
}

func TestMistakeAnalyzerHandlesFencedResponse(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	record := pendingMistake(t, store)
	model := &mockModel{response: "```json\n{\"suggestion\": \"review\"}\n```"}

	analyzer := NewMistakeAnalyzerFactory(Deps{Store: store, Model: model})()
	_, err := analyzer.Process(context.Background(), analyzerPayload(record.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisStatusCompleted, record.AnalysisStatus)
}

func TestMistakeAnalyzerSkipsNonPending(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	record := pendingMistake(t, store)
	record.AnalysisStatus = domain.AnalysisStatusCompleted
	model := &mockModel{response: `{}`}

	analyzer := NewMistakeAnalyzerFactory(Deps{Store: store, Model: model})()
	result, err := analyzer.Process(context.Background(), analyzerPayload(record.ID))
	require.NoError(t, err)

	resultMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, resultMap["skipped"])

	// Skipped records are never touched: no model call, no status write.
	assert.Empty(t, model.prompts)
	assert.Empty(t, store.analysisUpdates)
}

func TestMistakeAnalyzerModelFailureMarksRecordFailed(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	record := pendingMistake(t, store)
	model := &mockModel{err: errors.New("model unavailable")}

	analyzer := NewMistakeAnalyzerFactory(Deps{Store: store, Model: model})()
	_, err := analyzer.Process(context.Background(), analyzerPayload(record.ID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")

	require.Len(t, store.analysisUpdates, 2)
	assert.Equal(t, domain.AnalysisStatusProcessing, store.analysisUpdates[0].status)
	assert.Equal(t, domain.AnalysisStatusFailed, store.analysisUpdates[1].status)
}

func TestMistakeAnalyzerMalformedAnalysis(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	record := pendingMistake(t, store)
	model := &mockModel{response: "I cannot answer in JSON, sorry"}

	analyzer := NewMistakeAnalyzerFactory(Deps{Store: store, Model: model})()
	_, err := analyzer.Process(context.Background(), analyzerPayload(record.ID))
	require.Error(t, err)
	assert.Equal(t, domain.AnalysisStatusFailed, record.AnalysisStatus)
}

func TestMistakeAnalyzerPayloadErrors(t *testing.T) {
	t.Parallel()

	analyzer := NewMistakeAnalyzerFactory(Deps{Store: newMockStore(), Model: &mockModel{}})()

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"missing record_data", map[string]any{}},
		{"record_data not an object", map[string]any{"record_data": "oops"}},
		{"missing id", map[string]any{"record_data": map[string]any{}}},
		{"malformed id", map[string]any{"record_data": map[string]any{"id": "nope"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := analyzer.Process(context.Background(), tc.payload)
			assert.Error(t, err)
		})
	}
}

func TestMistakeAnalyzerUnknownRecord(t *testing.T) {
	t.Parallel()

	analyzer := NewMistakeAnalyzerFactory(Deps{Store: newMockStore(), Model: &mockModel{}})()
	_, err := analyzer.Process(context.Background(), analyzerPayload(uuid.New()))
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreMiss)
}
