package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus tracks the lifecycle of a mistake record's AI analysis.
type AnalysisStatus string

// Possible analysis status values
const (
	AnalysisStatusPending    AnalysisStatus = "pending"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// Validation errors for mistake records
var (
	ErrMistakeRecordUserIDEmpty  = errors.New("mistake record user ID cannot be empty")
	ErrMistakeRecordSubjectEmpty = errors.New("mistake record subject cannot be empty")
)

// MistakeRecord is one wrongly-answered question a user captured, together
// with the AI analysis produced for it.
type MistakeRecord struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Subject   string    `json:"subject"`
	ImageID   string    `json:"image_id,omitempty"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// AnalysisStatus gates the mistake_analyzer handler: only pending
	// records are analyzed.
	AnalysisStatus AnalysisStatus `json:"analysis_status"`

	// Analysis is the structured verdict produced by the LLM.
	Analysis map[string]any `json:"analysis,omitempty"`
}

// NewMistakeRecord creates a pending record for a captured mistake.
func NewMistakeRecord(userID uuid.UUID, subject, question string) (*MistakeRecord, error) {
	record := &MistakeRecord{
		ID:             uuid.New(),
		UserID:         userID,
		Subject:        subject,
		Question:       question,
		CreatedAt:      time.Now().UTC(),
		AnalysisStatus: AnalysisStatusPending,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

// Validate checks the record's invariants.
func (r *MistakeRecord) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrMistakeRecordUserIDEmpty
	}
	if r.Subject == "" {
		return ErrMistakeRecordSubjectEmpty
	}
	return nil
}
