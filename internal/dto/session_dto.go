package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/fahrezy/interview-pilot/internal/model"
)

type SessionDTO struct {
	InterviewID     uuid.UUID               `json:"interview_id"`
	Attempts        int                     `json:"attempts"`
	Status          string                  `json:"status"`
	Title           string                  `json:"title"`
	Category        string                  `json:"category"`
	Difficulty      string                  `json:"difficulty"`
	StartedAt       time.Time               `json:"started_at"`
	EndedAt         *time.Time              `json:"ended_at,omitempty"`
	Transcript      []model.TranscriptEntry `json:"transcript,omitempty"`
	Score           *int                    `json:"score,omitempty"`
	Feedback        string                  `json:"feedback,omitempty"`
	GoodParts       []string                `json:"good_parts,omitempty"`
	Improvements    []string                `json:"improvements,omitempty"`
	Motivation      string                  `json:"motivation,omitempty"`
	FeedbackSavedAt *time.Time              `json:"feedback_saved_at,omitempty"`
}

type SaveFeedbackRequest struct {
	Score        int      `json:"score"`
	Feedback     string   `json:"feedback"`
	GoodParts    []string `json:"good_parts"`
	Improvements []string `json:"improvements"`
	Motivation   string   `json:"motivation"`
}

func NewSessionDTO(s *model.InterviewSession) SessionDTO {
	return SessionDTO{
		InterviewID:     s.InterviewID,
		Attempts:        s.Attempts,
		Status:          s.Status,
		Title:           s.Title,
		Category:        s.Category,
		Difficulty:      s.Difficulty,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		Transcript:      s.Transcript,
		Score:           s.Score,
		Feedback:        s.Feedback,
		GoodParts:       s.GoodParts,
		Improvements:    s.Improvements,
		Motivation:      s.Motivation,
		FeedbackSavedAt: s.FeedbackSavedAt,
	}
}
