package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sureup/worker-api/internal/domain"
	"github.com/sureup/worker-api/internal/task"
)

// Selection parameters for daily task generation.
const (
	// activeUserWindow bounds how far back mistake activity counts as
	// "active".
	activeUserWindow = 7 * 24 * time.Hour

	// recentMistakeLimit caps how many mistakes inform the weakness scoring.
	recentMistakeLimit = 20

	// dailyQuestionCount is the target size of one day's practice set.
	dailyQuestionCount = 5
)

// DailyTaskGenerator builds one practice set per active user, weighted
// toward the subjects the user recently got wrong.
type DailyTaskGenerator struct {
	store  RecordStore
	logger *slog.Logger

	// now is injectable for tests
	now func() time.Time
}

// NewDailyTaskGeneratorFactory returns a factory producing a fresh
// generator per task execution.
func NewDailyTaskGeneratorFactory(deps Deps) task.HandlerFactory {
	return func() task.Handler {
		return &DailyTaskGenerator{
			store:  deps.Store,
			logger: slog.Default().With("worker", TaskTypeDailyTaskGenerator),
			now:    time.Now,
		}
	}
}

// Process expects a payload of the form
//
//	{"trigger_time": "<RFC3339>", "trigger_type": "scheduled"|"manual"}
//
// Both fields are optional; generation runs for "now" / "manual" when
// absent. A user with no questions or no recent mistakes is skipped, not
// an error.
func (w *DailyTaskGenerator) Process(ctx context.Context, payload map[string]any) (any, error) {
	now := w.now().UTC()

	triggerType := payloadString(payload, "trigger_type", "manual")
	triggerTime := payloadString(payload, "trigger_time", now.Format(time.RFC3339))
	taskDate := now.Format("2006-01-02")

	w.logger.Info("generating daily tasks",
		"trigger_time", triggerTime,
		"trigger_type", triggerType,
		"task_date", taskDate)

	users, err := w.store.ListActiveUsers(ctx, now.Add(-activeUserWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	if len(users) == 0 {
		return map[string]any{
			"generated": 0,
			"message":   "no active users",
		}, nil
	}

	generated := 0
	skipped := 0
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ok, err := w.generateForUser(ctx, userID, taskDate, triggerType)
		if err != nil {
			// One user's bad data must not sink the whole batch.
			w.logger.Error("daily task generation failed for user",
				"user_id", userID, "error", err)
			skipped++
			continue
		}
		if ok {
			generated++
		} else {
			skipped++
		}
	}

	w.logger.Info("daily task generation finished",
		"users", len(users),
		"generated", generated,
		"skipped", skipped)

	return map[string]any{
		"users":     len(users),
		"generated": generated,
		"skipped":   skipped,
		"task_date": taskDate,
	}, nil
}

// generateForUser builds and saves one user's practice set. Returns false
// when the user has nothing to practice.
func (w *DailyTaskGenerator) generateForUser(
	ctx context.Context,
	userID uuid.UUID,
	taskDate, triggerType string,
) (bool, error) {
	mistakes, err := w.store.ListRecentMistakes(ctx, userID, recentMistakeLimit)
	if err != nil {
		return false, fmt.Errorf("failed to list recent mistakes: %w", err)
	}
	if len(mistakes) == 0 {
		return false, nil
	}

	questions, err := w.store.ListUserQuestions(ctx, userID, recentMistakeLimit*2)
	if err != nil {
		return false, fmt.Errorf("failed to list questions: %w", err)
	}
	if len(questions) == 0 {
		return false, nil
	}

	selected := selectQuestions(questions, subjectWeakness(mistakes), dailyQuestionCount)

	dailyTask, err := domain.NewDailyTask(userID, taskDate, triggerType, selected)
	if err != nil {
		return false, err
	}
	if err := w.store.SaveDailyTask(ctx, dailyTask); err != nil {
		return false, fmt.Errorf("failed to save daily task: %w", err)
	}
	return true, nil
}

// subjectWeakness counts recent mistakes per subject. Higher count means
// the subject needs more practice.
func subjectWeakness(mistakes []*domain.MistakeRecord) map[string]int {
	weakness := make(map[string]int)
	for _, m := range mistakes {
		weakness[m.Subject]++
	}
	return weakness
}

// selectQuestions picks up to count question ids, preferring subjects with
// higher weakness scores and newer questions within the same score.
func selectQuestions(questions []*domain.Question, weakness map[string]int, count int) []uuid.UUID {
	ranked := make([]*domain.Question, len(questions))
	copy(ranked, questions)

	// questions arrive newest-first; a stable sort keeps that order within
	// equal weakness scores
	sort.SliceStable(ranked, func(i, j int) bool {
		return weakness[ranked[i].Subject] > weakness[ranked[j].Subject]
	})

	if len(ranked) > count {
		ranked = ranked[:count]
	}

	ids := make([]uuid.UUID, len(ranked))
	for i, q := range ranked {
		ids[i] = q.ID
	}
	return ids
}
