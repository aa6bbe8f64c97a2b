package dto

import (
	"time"

	"github.com/google/uuid"
)

type InterviewDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Type        string    `json:"type"`
	Difficulty  string    `json:"difficulty"`
	Duration    string    `json:"duration"`
	Syllabus    []string  `json:"syllabus"`
	UsageCount  int       `json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateInterviewRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Difficulty  string   `json:"difficulty"`
	Duration    string   `json:"duration"`
	Syllabus    []string `json:"syllabus"`
}

type UpdateInterviewRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Type        *string   `json:"type"`
	Difficulty  *string   `json:"difficulty"`
	Duration    *string   `json:"duration"`
	Syllabus    *[]string `json:"syllabus"`
}

type CatalogStatsDTO struct {
	Total  int64            `json:"total"`
	ByType map[string]int64 `json:"by_type"`
	Recent []InterviewDTO   `json:"recent"`
}
