package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionStatusStarted   = "started"
	SessionStatusCompleted = "completed"
)

type TranscriptEntry struct {
	Role    string `json:"role"` // "assistant" | "user"
	Content string `json:"content"`
}

// InterviewSession is one user's attempt record for one interview pack.
// There is at most one row per (user, interview); repeats bump Attempts.
type InterviewSession struct {
	UserID      string    `gorm:"type:varchar(128);primaryKey" json:"user_id"`
	InterviewID uuid.UUID `gorm:"type:uuid;primaryKey" json:"interview_id"`
	Attempts    int       `gorm:"default:1" json:"attempts"`
	Status      string    `gorm:"type:varchar(20)" json:"status"` // "started" | "completed"

	// Snapshot of the pack at start time so later catalog edits don't
	// rewrite history.
	Title      string `gorm:"type:varchar(255)" json:"title"`
	Category   string `gorm:"type:varchar(100)" json:"category"`
	Difficulty string `gorm:"type:varchar(20)" json:"difficulty"`

	StartedAt  time.Time         `json:"started_at"`
	EndedAt    *time.Time        `json:"ended_at,omitempty"`
	Transcript []TranscriptEntry `gorm:"type:jsonb;serializer:json" json:"transcript"`

	// Feedback fields: either all set or none set.
	Score           *int       `json:"score,omitempty"`
	Feedback        string     `gorm:"type:text" json:"feedback,omitempty"`
	GoodParts       []string   `gorm:"type:jsonb;serializer:json" json:"good_parts,omitempty"`
	Improvements    []string   `gorm:"type:jsonb;serializer:json" json:"improvements,omitempty"`
	Motivation      string     `gorm:"type:text" json:"motivation,omitempty"`
	FeedbackSavedAt *time.Time `json:"feedback_saved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *InterviewSession) TableName() string {
	return "interview_sessions"
}

// HasFeedback reports whether the feedback fields were persisted.
func (s *InterviewSession) HasFeedback() bool {
	return s.Score != nil && s.Feedback != ""
}
