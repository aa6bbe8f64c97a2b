package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

const (
	InterviewTypeRole  = "role"
	InterviewTypeSkill = "skill"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

type Interview struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string          `gorm:"type:varchar(255)" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"type:varchar(100)" json:"category"`
	Type        string          `gorm:"type:varchar(20)" json:"type"`       // "role" | "skill"
	Difficulty  string          `gorm:"type:varchar(20)" json:"difficulty"` // Easy | Medium | Hard
	Duration    string          `gorm:"type:varchar(50)" json:"duration"`
	Syllabus    []string        `gorm:"type:jsonb;serializer:json" json:"syllabus"`
	UsageCount  int             `gorm:"default:0" json:"usage_count"`
	Embedding   pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (i *Interview) TableName() string {
	return "interviews"
}
