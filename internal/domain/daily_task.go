package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Validation errors for daily tasks
var (
	ErrDailyTaskUserIDEmpty  = errors.New("daily task user ID cannot be empty")
	ErrDailyTaskNoQuestions  = errors.New("daily task must contain at least one question")
	ErrDailyTaskDateEmpty    = errors.New("daily task date cannot be empty")
	ErrQuestionContentEmpty  = errors.New("question content cannot be empty")
	ErrQuestionSubjectEmpty  = errors.New("question subject cannot be empty")
)

// DailyTask is one day's practice set generated for a user, built from
// their recent mistakes.
type DailyTask struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	TaskDate string    `json:"task_date"` // YYYY-MM-DD

	// QuestionIDs references the selected practice questions, in order.
	QuestionIDs []uuid.UUID `json:"question_ids"`

	// TriggerType records how generation was initiated: "scheduled" or "manual".
	TriggerType string    `json:"trigger_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDailyTask creates a daily task for a user.
func NewDailyTask(userID uuid.UUID, taskDate, triggerType string, questionIDs []uuid.UUID) (*DailyTask, error) {
	t := &DailyTask{
		ID:          uuid.New(),
		UserID:      userID,
		TaskDate:    taskDate,
		QuestionIDs: questionIDs,
		TriggerType: triggerType,
		CreatedAt:   time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the task's invariants.
func (t *DailyTask) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrDailyTaskUserIDEmpty
	}
	if t.TaskDate == "" {
		return ErrDailyTaskDateEmpty
	}
	if len(t.QuestionIDs) == 0 {
		return ErrDailyTaskNoQuestions
	}
	return nil
}

// Question is a practice question, either captured from a mistake or
// generated as a variant by the question_generator handler.
type Question struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Subject string    `json:"subject"`

	// SourceID links a generated variant back to the question it was
	// derived from; nil for originals.
	SourceID *uuid.UUID `json:"source_id,omitempty"`

	// Content holds the question body, options, answer and explanation.
	Content   map[string]any `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewQuestion creates a question owned by a user.
func NewQuestion(userID uuid.UUID, subject string, content map[string]any) (*Question, error) {
	q := &Question{
		ID:        uuid.New(),
		UserID:    userID,
		Subject:   subject,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks the question's invariants.
func (q *Question) Validate() error {
	if q.Subject == "" {
		return ErrQuestionSubjectEmpty
	}
	if len(q.Content) == 0 {
		return ErrQuestionContentEmpty
	}
	return nil
}
