package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/fahrezy/interview-pilot/internal/dto"
	"github.com/fahrezy/interview-pilot/internal/model"
	"github.com/fahrezy/interview-pilot/internal/service"
)

var ErrInvalidInterview = errors.New("invalid interview definition")

type CatalogRepository interface {
	CatalogStore
	CreateInterview(interview *model.Interview) error
	UpdateInterview(interview *model.Interview) error
	DeleteInterview(id string) error
	GetInterviews(offset, limit int) ([]model.Interview, int64, error)
	CountInterviews() (int64, error)
	CountByType() (map[string]int64, error)
	RecentInterviews(limit int) ([]model.Interview, error)
	SearchRelated(embedding pgvector.Vector, excludeID string, topK int) ([]model.Interview, error)
}

// CatalogUsecase manages the administrator-authored interview packs.
type CatalogUsecase struct {
	interviews CatalogRepository
	gemini     service.GeminiServiceInterface
}

func NewCatalogUsecase(interviews CatalogRepository, gemini service.GeminiServiceInterface) *CatalogUsecase {
	return &CatalogUsecase{interviews: interviews, gemini: gemini}
}

func (uc *CatalogUsecase) List(page, pageSize int) ([]model.Interview, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return uc.interviews.GetInterviews((page-1)*pageSize, pageSize)
}

func (uc *CatalogUsecase) Get(id string) (*model.Interview, error) {
	interview, err := uc.interviews.FindInterviewByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInterviewNotFound
		}
		return nil, err
	}
	return interview, nil
}

func (uc *CatalogUsecase) Create(ctx context.Context, req dto.CreateInterviewRequest) (*model.Interview, error) {
	interview := &model.Interview{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Difficulty:  req.Difficulty,
		Duration:    req.Duration,
		Syllabus:    req.Syllabus,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := validateInterview(interview); err != nil {
		return nil, err
	}

	uc.attachEmbedding(ctx, interview)

	if err := uc.interviews.CreateInterview(interview); err != nil {
		return nil, err
	}
	return interview, nil
}

func (uc *CatalogUsecase) Update(ctx context.Context, id string, req dto.UpdateInterviewRequest) (*model.Interview, error) {
	interview, err := uc.Get(id)
	if err != nil {
		return nil, err
	}

	descriptionChanged := false
	if req.Title != nil {
		interview.Title = *req.Title
	}
	if req.Description != nil && *req.Description != interview.Description {
		interview.Description = *req.Description
		descriptionChanged = true
	}
	if req.Category != nil {
		interview.Category = *req.Category
	}
	if req.Type != nil {
		interview.Type = *req.Type
	}
	if req.Difficulty != nil {
		interview.Difficulty = *req.Difficulty
	}
	if req.Duration != nil {
		interview.Duration = *req.Duration
	}
	if req.Syllabus != nil {
		interview.Syllabus = *req.Syllabus
	}
	if err := validateInterview(interview); err != nil {
		return nil, err
	}

	if descriptionChanged {
		uc.attachEmbedding(ctx, interview)
	}

	interview.UpdatedAt = time.Now()
	if err := uc.interviews.UpdateInterview(interview); err != nil {
		return nil, err
	}
	return interview, nil
}

func (uc *CatalogUsecase) Delete(id string) error {
	if _, err := uc.Get(id); err != nil {
		return err
	}
	return uc.interviews.DeleteInterview(id)
}

func (uc *CatalogUsecase) Stats() (*dto.CatalogStatsDTO, error) {
	total, err := uc.interviews.CountInterviews()
	if err != nil {
		return nil, err
	}
	byType, err := uc.interviews.CountByType()
	if err != nil {
		return nil, err
	}
	recent, err := uc.interviews.RecentInterviews(5)
	if err != nil {
		return nil, err
	}

	recentDTOs := make([]dto.InterviewDTO, 0, len(recent))
	for i := range recent {
		recentDTOs = append(recentDTOs, NewInterviewDTO(&recent[i]))
	}
	return &dto.CatalogStatsDTO{Total: total, ByType: byType, Recent: recentDTOs}, nil
}

// Related finds catalog packs whose descriptions sit nearest to the given
// pack's embedding.
func (uc *CatalogUsecase) Related(id string, topK int) ([]model.Interview, error) {
	interview, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	if topK < 1 || topK > 20 {
		topK = 5
	}
	if len(interview.Embedding.Slice()) == 0 {
		return []model.Interview{}, nil
	}
	return uc.interviews.SearchRelated(interview.Embedding, id, topK)
}

// Seed loads the starter packs shipped with the product. Intended for fresh
// environments; duplicates are not checked.
func (uc *CatalogUsecase) Seed(ctx context.Context) error {
	seeds := []dto.CreateInterviewRequest{
		{
			Title:       "Frontend Developer",
			Description: "Prepare for a generic frontend developer interview covering React, HTML/CSS, and JavaScript fundamentals.",
			Category:    "Engineering",
			Type:        model.InterviewTypeRole,
			Difficulty:  model.DifficultyMedium,
			Duration:    "45 min",
			Syllabus:    []string{"React Hooks", "CSS Grid/Flexbox", "ES6+ Features", "Performance Optimization"},
		},
		{
			Title:       "System Design",
			Description: "Design scalable systems. Topics include load balancing, database sharding, and caching strategies.",
			Category:    "Architecture",
			Type:        model.InterviewTypeSkill,
			Difficulty:  model.DifficultyHard,
			Duration:    "60 min",
			Syllabus:    []string{"Load Balancing", "Caching", "Database Sharding", "API Design"},
		},
		{
			Title:       "Behavioral Interview",
			Description: "Common behavioral questions using the STAR method. Great for all roles.",
			Category:    "HR",
			Type:        model.InterviewTypeSkill,
			Difficulty:  model.DifficultyEasy,
			Duration:    "30 min",
			Syllabus:    []string{"Conflict Resolution", "Leadership", "Teamwork", "Career Goals"},
		},
	}

	for _, seed := range seeds {
		if _, err := uc.Create(ctx, seed); err != nil {
			return fmt.Errorf("seed %q: %w", seed.Title, err)
		}
	}
	return nil
}

// attachEmbedding is best effort: a pack without an embedding just drops out
// of related-pack search, it never blocks an admin write.
func (uc *CatalogUsecase) attachEmbedding(ctx context.Context, interview *model.Interview) {
	values, err := uc.gemini.GenerateEmbedding(ctx, interview.Title+"\n"+interview.Description)
	if err != nil {
		log.Printf("catalog: embedding for %q failed: %v", interview.Title, err)
		return
	}
	interview.Embedding = pgvector.NewVector(values)
}

func validateInterview(interview *model.Interview) error {
	if interview.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInterview)
	}
	if interview.Type != model.InterviewTypeRole && interview.Type != model.InterviewTypeSkill {
		return fmt.Errorf("%w: type must be %q or %q", ErrInvalidInterview, model.InterviewTypeRole, model.InterviewTypeSkill)
	}
	switch interview.Difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInterview, interview.Difficulty)
	}
	return nil
}

func NewInterviewDTO(interview *model.Interview) dto.InterviewDTO {
	return dto.InterviewDTO{
		ID:          interview.ID,
		Title:       interview.Title,
		Description: interview.Description,
		Category:    interview.Category,
		Type:        interview.Type,
		Difficulty:  interview.Difficulty,
		Duration:    interview.Duration,
		Syllabus:    interview.Syllabus,
		UsageCount:  interview.UsageCount,
		CreatedAt:   interview.CreatedAt,
	}
}
