package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMistakeRecord(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	record, err := NewMistakeRecord(userID, "math", "2+2=5?")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, AnalysisStatusPending, record.AnalysisStatus)
	assert.False(t, record.CreatedAt.IsZero())

	_, err = NewMistakeRecord(uuid.Nil, "math", "q")
	assert.ErrorIs(t, err, ErrMistakeRecordUserIDEmpty)

	_, err = NewMistakeRecord(userID, "", "q")
	assert.ErrorIs(t, err, ErrMistakeRecordSubjectEmpty)
}

func TestNewDailyTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	questionIDs := []uuid.UUID{uuid.New(), uuid.New()}

	dailyTask, err := NewDailyTask(userID, "2025-06-15", "scheduled", questionIDs)
	require.NoError(t, err)
	assert.Equal(t, questionIDs, dailyTask.QuestionIDs)
	assert.Equal(t, "scheduled", dailyTask.TriggerType)

	_, err = NewDailyTask(uuid.Nil, "2025-06-15", "manual", questionIDs)
	assert.ErrorIs(t, err, ErrDailyTaskUserIDEmpty)

	_, err = NewDailyTask(userID, "", "manual", questionIDs)
	assert.ErrorIs(t, err, ErrDailyTaskDateEmpty)

	_, err = NewDailyTask(userID, "2025-06-15", "manual", nil)
	assert.ErrorIs(t, err, ErrDailyTaskNoQuestions)
}

func TestNewQuestion(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	question, err := NewQuestion(userID, "math", map[string]any{"question": "q"})
	require.NoError(t, err)
	assert.Nil(t, question.SourceID)

	_, err = NewQuestion(userID, "", map[string]any{"question": "q"})
	assert.ErrorIs(t, err, ErrQuestionSubjectEmpty)

	_, err = NewQuestion(userID, "math", map[string]any{})
	assert.ErrorIs(t, err, ErrQuestionContentEmpty)
}
