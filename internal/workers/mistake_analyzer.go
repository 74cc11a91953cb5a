package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sureup/worker-api/internal/domain"
	"github.com/sureup/worker-api/internal/task"
)

// MistakeAnalyzer analyzes one pending mistake record with the LLM and
// persists the structured verdict on the record.
type MistakeAnalyzer struct {
	store  RecordStore
	model  ChatModel
	logger *slog.Logger
}

// NewMistakeAnalyzerFactory returns a factory producing a fresh analyzer
// per task execution.
func NewMistakeAnalyzerFactory(deps Deps) task.HandlerFactory {
	return func() task.Handler {
		return &MistakeAnalyzer{
			store:  deps.Store,
			model:  deps.Model,
			logger: slog.Default().With("worker", TaskTypeMistakeAnalyzer),
		}
	}
}

// Process expects a payload of the form
//
//	{"record_data": {"id": "<uuid>", ...}}
//
// It re-reads the record from the store before analyzing: the payload is a
// notification, the store is authoritative. Records that are no longer
// pending are skipped, not failed, so re-enqueued notifications are harmless.
func (w *MistakeAnalyzer) Process(ctx context.Context, payload map[string]any) (any, error) {
	recordData, err := payloadMap(payload, "record_data")
	if err != nil {
		return nil, err
	}
	recordID, err := payloadUUID(recordData, "id")
	if err != nil {
		return nil, err
	}

	record, err := w.store.GetMistakeRecord(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mistake record: %w", err)
	}

	if record.AnalysisStatus != domain.AnalysisStatusPending {
		w.logger.Info("skipping analysis, record is not pending",
			"record_id", recordID,
			"analysis_status", record.AnalysisStatus)
		return map[string]any{
			"skipped": true,
			"reason":  fmt.Sprintf("analysis status is %s, not pending", record.AnalysisStatus),
		}, nil
	}

	if err := w.store.UpdateMistakeAnalysis(ctx, recordID, domain.AnalysisStatusProcessing, nil); err != nil {
		return nil, fmt.Errorf("failed to mark record processing: %w", err)
	}

	analysis, err := w.analyze(ctx, record)
	if err != nil {
		// Best effort: record the failure on the mistake record as well as
		// on the task, so the app can offer a retry.
		if updateErr := w.store.UpdateMistakeAnalysis(
			ctx, recordID, domain.AnalysisStatusFailed, nil,
		); updateErr != nil {
			w.logger.Error("failed to mark record failed",
				"record_id", recordID, "error", updateErr)
		}
		return nil, err
	}

	if err := w.store.UpdateMistakeAnalysis(ctx, recordID, domain.AnalysisStatusCompleted, analysis); err != nil {
		return nil, fmt.Errorf("failed to store analysis: %w", err)
	}

	w.logger.Info("mistake analyzed", "record_id", recordID, "subject", record.Subject)

	return map[string]any{
		"record_id": recordID.String(),
		"analysis":  analysis,
	}, nil
}

// analyze runs the LLM call and parses its verdict.
func (w *MistakeAnalyzer) analyze(ctx context.Context, record *domain.MistakeRecord) (map[string]any, error) {
	prompt, err := renderPrompt(mistakeAnalysisPrompt, record)
	if err != nil {
		return nil, fmt.Errorf("failed to render analysis prompt: %w", err)
	}

	response, err := w.model.Chat(ctx, mistakeAnalysisSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("analysis model call failed: %w", err)
	}

	analysis, err := parseJSONObject(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}
	return analysis, nil
}
