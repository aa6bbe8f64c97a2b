package usecase

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/fahrezy/interview-pilot/internal/dto"
	"github.com/fahrezy/interview-pilot/internal/model"
)

type catalogRepoMock struct {
	catalogStoreMock
	relatedCalls int
}

func newCatalogRepoMock() *catalogRepoMock {
	return &catalogRepoMock{
		catalogStoreMock: catalogStoreMock{
			interviews: map[string]*model.Interview{},
			usage:      map[string]int{},
		},
	}
}

func (c *catalogRepoMock) CreateInterview(interview *model.Interview) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if interview.ID == uuid.Nil {
		interview.ID = uuid.New()
	}
	copied := *interview
	c.interviews[interview.ID.String()] = &copied
	return nil
}

func (c *catalogRepoMock) UpdateInterview(interview *model.Interview) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.interviews[interview.ID.String()]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *interview
	c.interviews[interview.ID.String()] = &copied
	return nil
}

func (c *catalogRepoMock) DeleteInterview(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.interviews, id)
	return nil
}

func (c *catalogRepoMock) GetInterviews(offset, limit int) ([]model.Interview, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var all []model.Interview
	for _, interview := range c.interviews {
		all = append(all, *interview)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (c *catalogRepoMock) CountInterviews() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.interviews)), nil
}

func (c *catalogRepoMock) CountByType() (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]int64{}
	for _, interview := range c.interviews {
		out[interview.Type]++
	}
	return out, nil
}

func (c *catalogRepoMock) RecentInterviews(limit int) ([]model.Interview, error) {
	items, _, err := c.GetInterviews(0, limit)
	return items, err
}

func (c *catalogRepoMock) SearchRelated(_ pgvector.Vector, excludeID string, topK int) ([]model.Interview, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.relatedCalls++
	var out []model.Interview
	for id, interview := range c.interviews {
		if id == excludeID || len(interview.Embedding.Slice()) == 0 {
			continue
		}
		out = append(out, *interview)
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

type failingEmbedderMock struct {
	geminiMock
}

func (f *failingEmbedderMock) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("embedding service unavailable")
}

func validCreateRequest() dto.CreateInterviewRequest {
	return dto.CreateInterviewRequest{
		Title:       "Data Engineer",
		Description: "Pipelines, warehousing, orchestration.",
		Category:    "Engineering",
		Type:        model.InterviewTypeRole,
		Difficulty:  model.DifficultyMedium,
		Duration:    "45 min",
		Syllabus:    []string{"Airflow", "Spark"},
	}
}

func TestCreateInterviewAttachesEmbedding(t *testing.T) {
	repo := newCatalogRepoMock()
	uc := NewCatalogUsecase(repo, &geminiMock{})

	interview, err := uc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if interview.ID == uuid.Nil {
		t.Error("id not assigned")
	}
	if len(interview.Embedding.Slice()) == 0 {
		t.Error("embedding not attached")
	}
}

func TestCreateInterviewSurvivesEmbeddingFailure(t *testing.T) {
	repo := newCatalogRepoMock()
	uc := NewCatalogUsecase(repo, &failingEmbedderMock{})

	interview, err := uc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create must not fail on embedding error: %v", err)
	}
	if len(interview.Embedding.Slice()) != 0 {
		t.Error("embedding should be absent after failure")
	}
}

func TestCreateInterviewValidation(t *testing.T) {
	uc := NewCatalogUsecase(newCatalogRepoMock(), &geminiMock{})

	cases := []struct {
		name   string
		mutate func(*dto.CreateInterviewRequest)
	}{
		{"missing title", func(r *dto.CreateInterviewRequest) { r.Title = "" }},
		{"bad type", func(r *dto.CreateInterviewRequest) { r.Type = "weekly" }},
		{"bad difficulty", func(r *dto.CreateInterviewRequest) { r.Difficulty = "impossible" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)
			if _, err := uc.Create(context.Background(), req); !errors.Is(err, ErrInvalidInterview) {
				t.Fatalf("err = %v, want ErrInvalidInterview", err)
			}
		})
	}
}

func TestUpdateInterviewPartialFields(t *testing.T) {
	repo := newCatalogRepoMock()
	gemini := &geminiMock{}
	uc := NewCatalogUsecase(repo, gemini)

	created, err := uc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "Senior Data Engineer"
	updated, err := uc.Update(context.Background(), created.ID.String(), dto.UpdateInterviewRequest{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != title {
		t.Errorf("title = %q, want %q", updated.Title, title)
	}
	if updated.Description != created.Description || updated.Difficulty != created.Difficulty {
		t.Error("untouched fields must survive a partial update")
	}
	// Title-only updates must not re-embed.
	if gemini.embedCallCount() != 1 {
		t.Errorf("embedding calls = %d, want 1 (create only)", gemini.embedCallCount())
	}

	description := "Pipelines, warehousing, orchestration, and streaming."
	if _, err := uc.Update(context.Background(), created.ID.String(), dto.UpdateInterviewRequest{Description: &description}); err != nil {
		t.Fatalf("Update description: %v", err)
	}
	if gemini.embedCallCount() != 2 {
		t.Errorf("embedding calls = %d, want 2 after description change", gemini.embedCallCount())
	}
}

func TestUpdateInterviewNotFound(t *testing.T) {
	uc := NewCatalogUsecase(newCatalogRepoMock(), &geminiMock{})
	title := "x"
	_, err := uc.Update(context.Background(), uuid.NewString(), dto.UpdateInterviewRequest{Title: &title})
	if !errors.Is(err, ErrInterviewNotFound) {
		t.Fatalf("err = %v, want ErrInterviewNotFound", err)
	}
}

func TestDeleteInterview(t *testing.T) {
	repo := newCatalogRepoMock()
	uc := NewCatalogUsecase(repo, &geminiMock{})

	created, err := uc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := uc.Delete(created.ID.String()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := uc.Get(created.ID.String()); !errors.Is(err, ErrInterviewNotFound) {
		t.Fatalf("err = %v, want ErrInterviewNotFound after delete", err)
	}
	if err := uc.Delete(created.ID.String()); !errors.Is(err, ErrInterviewNotFound) {
		t.Fatalf("double delete err = %v, want ErrInterviewNotFound", err)
	}
}

func TestListClampsPagination(t *testing.T) {
	repo := newCatalogRepoMock()
	uc := NewCatalogUsecase(repo, &geminiMock{})
	for i := 0; i < 3; i++ {
		req := validCreateRequest()
		req.Title = req.Title + string(rune('A'+i))
		if _, err := uc.Create(context.Background(), req); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	items, total, err := uc.List(-5, 10000)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Errorf("total = %d len = %d, want 3/3", total, len(items))
	}
}

func TestStats(t *testing.T) {
	repo := newCatalogRepoMock()
	uc := NewCatalogUsecase(repo, &geminiMock{})
	if err := uc.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	stats, err := uc.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.ByType[model.InterviewTypeRole] != 1 || stats.ByType[model.InterviewTypeSkill] != 2 {
		t.Errorf("byType = %v", stats.ByType)
	}
	if len(stats.Recent) == 0 {
		t.Error("recent list empty")
	}
}

func TestRelatedSkipsPacksWithoutEmbedding(t *testing.T) {
	repo := newCatalogRepoMock()
	uc := NewCatalogUsecase(repo, &failingEmbedderMock{})

	created, err := uc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	related, err := uc.Related(created.ID.String(), 5)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(related) != 0 {
		t.Errorf("related = %v, want empty for unembedded pack", related)
	}
	if repo.relatedCalls != 0 {
		t.Error("vector search must be skipped when the pack has no embedding")
	}
}

func TestRelatedUsesVectorSearch(t *testing.T) {
	repo := newCatalogRepoMock()
	uc := NewCatalogUsecase(repo, &geminiMock{})
	if err := uc.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	items, _, err := uc.List(1, 10)
	if err != nil || len(items) == 0 {
		t.Fatalf("List: %v", err)
	}

	related, err := uc.Related(items[0].ID.String(), 5)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if repo.relatedCalls != 1 {
		t.Errorf("vector search calls = %d, want 1", repo.relatedCalls)
	}
	for _, r := range related {
		if r.ID == items[0].ID {
			t.Error("related results must exclude the source pack")
		}
	}
}
