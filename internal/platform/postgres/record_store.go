// Package postgres implements the document-store capability the task
// handlers depend on, backed by PostgreSQL with jsonb payload columns.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sureup/worker-api/internal/domain"
)

// RecordStore provides access to mistake records, questions and daily
// tasks. It is safe for concurrent use; pgxpool manages the connections.
type RecordStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRecordStore creates a store over an initialized connection pool.
func NewRecordStore(pool *pgxpool.Pool, logger *slog.Logger) *RecordStore {
	if pool == nil {
		panic("pool cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{
		pool:   pool,
		logger: logger.With(slog.String("component", "record_store")),
	}
}

// GetMistakeRecord returns the mistake record with the given id.
// Returns ErrNotFound when no such record exists.
func (s *RecordStore) GetMistakeRecord(ctx context.Context, id uuid.UUID) (*domain.MistakeRecord, error) {
	query := `
		SELECT id, user_id, subject, image_id, question, answer,
		       analysis_status, analysis, created_at
		FROM mistake_records
		WHERE id = $1
	`

	var record domain.MistakeRecord
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.UserID,
		&record.Subject,
		&record.ImageID,
		&record.Question,
		&record.Answer,
		&record.AnalysisStatus,
		&record.Analysis,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, MapError(err)
	}
	return &record, nil
}

// CreateMistakeRecord inserts a new mistake record.
func (s *RecordStore) CreateMistakeRecord(ctx context.Context, record *domain.MistakeRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO mistake_records
			(id, user_id, subject, image_id, question, answer,
			 analysis_status, analysis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.pool.Exec(ctx, query,
		record.ID,
		record.UserID,
		record.Subject,
		record.ImageID,
		record.Question,
		record.Answer,
		record.AnalysisStatus,
		record.Analysis,
		record.CreatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// UpdateMistakeAnalysis stores the analysis verdict and status for a record.
func (s *RecordStore) UpdateMistakeAnalysis(
	ctx context.Context,
	id uuid.UUID,
	status domain.AnalysisStatus,
	analysis map[string]any,
) error {
	query := `
		UPDATE mistake_records
		SET analysis_status = $2, analysis = $3
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, id, status, analysis)
	if err != nil {
		return MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: mistake record %s", ErrNotFound, id)
	}

	s.logger.Debug("mistake analysis updated", "record_id", id, "status", status)
	return nil
}

// ListRecentMistakes returns the user's most recent mistake records,
// newest first, capped at limit.
func (s *RecordStore) ListRecentMistakes(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.MistakeRecord, error) {
	query := `
		SELECT id, user_id, subject, image_id, question, answer,
		       analysis_status, analysis, created_at
		FROM mistake_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var records []*domain.MistakeRecord
	for rows.Next() {
		var record domain.MistakeRecord
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Subject,
			&record.ImageID,
			&record.Question,
			&record.Answer,
			&record.AnalysisStatus,
			&record.Analysis,
			&record.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return records, nil
}

// ListActiveUsers returns ids of users with mistake activity since the
// given time. Daily task generation targets exactly these users.
func (s *RecordStore) ListActiveUsers(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT user_id
		FROM mistake_records
		WHERE created_at >= $1
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var users []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return users, nil
}

// GetQuestion returns the question with the given id.
// Returns ErrNotFound when no such question exists.
func (s *RecordStore) GetQuestion(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	query := `
		SELECT id, user_id, subject, source_id, content, created_at
		FROM questions
		WHERE id = $1
	`

	var question domain.Question
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&question.ID,
		&question.UserID,
		&question.Subject,
		&question.SourceID,
		&question.Content,
		&question.CreatedAt,
	)
	if err != nil {
		return nil, MapError(err)
	}
	return &question, nil
}

// ListUserQuestions returns the user's question bank, newest first,
// capped at limit.
func (s *RecordStore) ListUserQuestions(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.Question, error) {
	query := `
		SELECT id, user_id, subject, source_id, content, created_at
		FROM questions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var questions []*domain.Question
	for rows.Next() {
		var question domain.Question
		if err := rows.Scan(
			&question.ID,
			&question.UserID,
			&question.Subject,
			&question.SourceID,
			&question.Content,
			&question.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		questions = append(questions, &question)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return questions, nil
}

// SaveQuestion inserts a question.
func (s *RecordStore) SaveQuestion(ctx context.Context, question *domain.Question) error {
	if err := question.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO questions (id, user_id, subject, source_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.pool.Exec(ctx, query,
		question.ID,
		question.UserID,
		question.Subject,
		question.SourceID,
		question.Content,
		question.CreatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// SaveDailyTask inserts a generated daily task.
func (s *RecordStore) SaveDailyTask(ctx context.Context, dailyTask *domain.DailyTask) error {
	if err := dailyTask.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO daily_tasks
			(id, user_id, task_date, question_ids, trigger_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.pool.Exec(ctx, query,
		dailyTask.ID,
		dailyTask.UserID,
		dailyTask.TaskDate,
		dailyTask.QuestionIDs,
		dailyTask.TriggerType,
		dailyTask.CreatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return nil
}
