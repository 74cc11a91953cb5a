package workers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sureup/worker-api/internal/domain"
)

// errStoreMiss is what the mock store returns for unknown ids.
var errStoreMiss = errors.New("not found")

// mockStore is an in-memory RecordStore for handler tests.
type mockStore struct {
	mistakes   map[uuid.UUID]*domain.MistakeRecord
	questions  map[uuid.UUID]*domain.Question
	dailyTasks []*domain.DailyTask

	// savedQuestions records SaveQuestion calls in order.
	savedQuestions []*domain.Question

	// analysisUpdates records UpdateMistakeAnalysis calls in order.
	analysisUpdates []analysisUpdate

	// forced errors per method
	getMistakeErr    error
	updateErr        error
	saveQuestionErr  error
	saveDailyTaskErr error
	listMistakesErr  error
}

type analysisUpdate struct {
	id       uuid.UUID
	status   domain.AnalysisStatus
	analysis map[string]any
}

func newMockStore() *mockStore {
	return &mockStore{
		mistakes:  make(map[uuid.UUID]*domain.MistakeRecord),
		questions: make(map[uuid.UUID]*domain.Question),
	}
}

func (s *mockStore) GetMistakeRecord(ctx context.Context, id uuid.UUID) (*domain.MistakeRecord, error) {
	if s.getMistakeErr != nil {
		return nil, s.getMistakeErr
	}
	record, ok := s.mistakes[id]
	if !ok {
		return nil, errStoreMiss
	}
	return record, nil
}

func (s *mockStore) UpdateMistakeAnalysis(
	ctx context.Context,
	id uuid.UUID,
	status domain.AnalysisStatus,
	analysis map[string]any,
) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.analysisUpdates = append(s.analysisUpdates, analysisUpdate{id, status, analysis})
	if record, ok := s.mistakes[id]; ok {
		record.AnalysisStatus = status
		if analysis != nil {
			record.Analysis = analysis
		}
	}
	return nil
}

func (s *mockStore) ListRecentMistakes(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.MistakeRecord, error) {
	if s.listMistakesErr != nil {
		return nil, s.listMistakesErr
	}
	var out []*domain.MistakeRecord
	for _, m := range s.mistakes {
		if m.UserID == userID && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *mockStore) ListActiveUsers(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var users []uuid.UUID
	for _, m := range s.mistakes {
		if !m.CreatedAt.Before(since) && !seen[m.UserID] {
			seen[m.UserID] = true
			users = append(users, m.UserID)
		}
	}
	return users, nil
}

func (s *mockStore) GetQuestion(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	question, ok := s.questions[id]
	if !ok {
		return nil, errStoreMiss
	}
	return question, nil
}

func (s *mockStore) ListUserQuestions(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Question, error) {
	var out []*domain.Question
	for _, q := range s.questions {
		if q.UserID == userID && len(out) < limit {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *mockStore) SaveQuestion(ctx context.Context, question *domain.Question) error {
	if s.saveQuestionErr != nil {
		return s.saveQuestionErr
	}
	s.questions[question.ID] = question
	s.savedQuestions = append(s.savedQuestions, question)
	return nil
}

func (s *mockStore) SaveDailyTask(ctx context.Context, dailyTask *domain.DailyTask) error {
	if s.saveDailyTaskErr != nil {
		return s.saveDailyTaskErr
	}
	s.dailyTasks = append(s.dailyTasks, dailyTask)
	return nil
}

// Compile-time interface check
var _ RecordStore = (*mockStore)(nil)

// mockModel returns a canned response, or an error.
type mockModel struct {
	response string
	err      error

	// prompts records every Chat call's user prompt.
	prompts []string
}

func (m *mockModel) Chat(ctx context.Context, system, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

var _ ChatModel = (*mockModel)(nil)
