package workers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sureup/worker-api/internal/domain"
	"github.com/sureup/worker-api/internal/task"
)

// Task type names the handlers in this package register under.
const (
	TaskTypeMistakeAnalyzer    = "mistake_analyzer"
	TaskTypeDailyTaskGenerator = "daily_task_generator"
	TaskTypeQuestionGenerator  = "question_generator"
)

// RecordStore is the document-store capability the handlers depend on.
type RecordStore interface {
	GetMistakeRecord(ctx context.Context, id uuid.UUID) (*domain.MistakeRecord, error)
	UpdateMistakeAnalysis(ctx context.Context, id uuid.UUID, status domain.AnalysisStatus, analysis map[string]any) error
	ListRecentMistakes(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.MistakeRecord, error)
	ListActiveUsers(ctx context.Context, since time.Time) ([]uuid.UUID, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	ListUserQuestions(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Question, error)
	SaveQuestion(ctx context.Context, question *domain.Question) error
	SaveDailyTask(ctx context.Context, dailyTask *domain.DailyTask) error
}

// ChatModel is the LLM chat-completion capability. Retries and timeouts
// for the provider are handled inside the implementation.
type ChatModel interface {
	Chat(ctx context.Context, system, prompt string) (string, error)
}

// Deps bundles the shared dependencies injected into every handler factory.
type Deps struct {
	Store RecordStore
	Model ChatModel
}

// RegisterAll registers every handler in this package on the registry.
// Called once at process startup.
func RegisterAll(registry *task.Registry, deps Deps) {
	registry.Register(TaskTypeMistakeAnalyzer, NewMistakeAnalyzerFactory(deps))
	registry.Register(TaskTypeDailyTaskGenerator, NewDailyTaskGeneratorFactory(deps))
	registry.Register(TaskTypeQuestionGenerator, NewQuestionGeneratorFactory(deps))
}
