package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sureup/worker-api/internal/domain"
)

// fixedNow pins generation to a known date.
var fixedNow = time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC)

func newDailyGenerator(store *mockStore) *DailyTaskGenerator {
	return &DailyTaskGenerator{
		store:  store,
		logger: slog.Default(),
		now:    func() time.Time { return fixedNow },
	}
}

func addMistake(t *testing.T, store *mockStore, userID uuid.UUID, subject string, age time.Duration) {
	t.Helper()
	record, err := domain.NewMistakeRecord(userID, subject, "some question")
	require.NoError(t, err)
	record.CreatedAt = fixedNow.Add(-age)
	store.mistakes[record.ID] = record
}

func addQuestion(t *testing.T, store *mockStore, userID uuid.UUID, subject string) uuid.UUID {
	t.Helper()
	question, err := domain.NewQuestion(userID, subject, map[string]any{"question": "q"})
	require.NoError(t, err)
	store.questions[question.ID] = question
	return question.ID
}

func TestDailyTaskGeneratorNoActiveUsers(t *testing.T) {
	t.Parallel()

	generator := newDailyGenerator(newMockStore())
	result, err := generator.Process(context.Background(), map[string]any{})
	require.NoError(t, err)

	resultMap := result.(map[string]any)
	assert.Equal(t, 0, resultMap["generated"])
}

func TestDailyTaskGeneratorIgnoresStaleActivity(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	userID := uuid.New()
	addMistake(t, store, userID, "math", 30*24*time.Hour)

	generator := newDailyGenerator(store)
	result, err := generator.Process(context.Background(), map[string]any{})
	require.NoError(t, err)

	resultMap := result.(map[string]any)
	assert.Equal(t, 0, resultMap["generated"])
	assert.Empty(t, store.dailyTasks)
}

func TestDailyTaskGeneratorBuildsPracticeSet(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	userID := uuid.New()
	addMistake(t, store, userID, "math", time.Hour)
	addMistake(t, store, userID, "math", 2*time.Hour)
	addMistake(t, store, userID, "physics", 3*time.Hour)
	for i := 0; i < 8; i++ {
		subject := "math"
		if i%2 == 0 {
			subject = "physics"
		}
		addQuestion(t, store, userID, subject)
	}

	generator := newDailyGenerator(store)
	result, err := generator.Process(context.Background(), map[string]any{
		"trigger_type": "scheduled",
	})
	require.NoError(t, err)

	resultMap := result.(map[string]any)
	assert.Equal(t, 1, resultMap["generated"])
	assert.Equal(t, "2025-06-15", resultMap["task_date"])

	require.Len(t, store.dailyTasks, 1)
	dailyTask := store.dailyTasks[0]
	assert.Equal(t, userID, dailyTask.UserID)
	assert.Equal(t, "2025-06-15", dailyTask.TaskDate)
	assert.Equal(t, "scheduled", dailyTask.TriggerType)
	assert.Len(t, dailyTask.QuestionIDs, dailyQuestionCount)
}

func TestDailyTaskGeneratorSkipsUserWithoutQuestions(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	withQuestions := uuid.New()
	withoutQuestions := uuid.New()
	addMistake(t, store, withQuestions, "math", time.Hour)
	addMistake(t, store, withoutQuestions, "math", time.Hour)
	addQuestion(t, store, withQuestions, "math")

	generator := newDailyGenerator(store)
	result, err := generator.Process(context.Background(), map[string]any{})
	require.NoError(t, err)

	resultMap := result.(map[string]any)
	assert.Equal(t, 2, resultMap["users"])
	assert.Equal(t, 1, resultMap["generated"])
	assert.Equal(t, 1, resultMap["skipped"])

	require.Len(t, store.dailyTasks, 1)
	assert.Equal(t, withQuestions, store.dailyTasks[0].UserID)
}

func TestDailyTaskGeneratorOneBadUserDoesNotSinkBatch(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	userID := uuid.New()
	addMistake(t, store, userID, "math", time.Hour)
	addQuestion(t, store, userID, "math")
	store.listMistakesErr = assert.AnError

	generator := newDailyGenerator(store)
	result, err := generator.Process(context.Background(), map[string]any{})
	require.NoError(t, err)

	resultMap := result.(map[string]any)
	assert.Equal(t, 0, resultMap["generated"])
	assert.Equal(t, 1, resultMap["skipped"])
}

func TestSubjectWeakness(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var mistakes []*domain.MistakeRecord
	for _, subject := range []string{"math", "math", "math", "physics"} {
		record, err := domain.NewMistakeRecord(userID, subject, "q")
		require.NoError(t, err)
		mistakes = append(mistakes, record)
	}

	weakness := subjectWeakness(mistakes)
	assert.Equal(t, map[string]int{"math": 3, "physics": 1}, weakness)
}

func TestSelectQuestionsPrefersWeakSubjects(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var questions []*domain.Question
	var mathIDs []uuid.UUID
	for i := 0; i < 3; i++ {
		q, err := domain.NewQuestion(userID, "physics", map[string]any{"question": "p"})
		require.NoError(t, err)
		questions = append(questions, q)
	}
	for i := 0; i < 3; i++ {
		q, err := domain.NewQuestion(userID, "math", map[string]any{"question": "m"})
		require.NoError(t, err)
		questions = append(questions, q)
		mathIDs = append(mathIDs, q.ID)
	}

	selected := selectQuestions(questions, map[string]int{"math": 5, "physics": 1}, 3)
	assert.Equal(t, mathIDs, selected)
}

func TestSelectQuestionsShortList(t *testing.T) {
	t.Parallel()

	q, err := domain.NewQuestion(uuid.New(), "math", map[string]any{"question": "m"})
	require.NoError(t, err)

	selected := selectQuestions([]*domain.Question{q}, nil, 5)
	assert.Equal(t, []uuid.UUID{q.ID}, selected)
}
