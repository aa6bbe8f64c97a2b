package repository

import (
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/fahrezy/interview-pilot/internal/model"
)

type InterviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) *InterviewRepository {
	return &InterviewRepository{db}
}

func (r *InterviewRepository) CreateInterview(interview *model.Interview) error {
	return r.db.Create(interview).Error
}

func (r *InterviewRepository) UpdateInterview(interview *model.Interview) error {
	return r.db.Save(interview).Error
}

func (r *InterviewRepository) DeleteInterview(id string) error {
	return r.db.Delete(&model.Interview{}, "id = ?", id).Error
}

func (r *InterviewRepository) FindInterviewByID(id string) (*model.Interview, error) {
	var interview model.Interview
	err := r.db.First(&interview, "id = ?", id).Error
	return &interview, err
}

func (r *InterviewRepository) GetInterviews(offset, limit int) ([]model.Interview, int64, error) {
	var interviews []model.Interview
	var total int64
	if err := r.db.Model(&model.Interview{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&interviews).Error
	return interviews, total, err
}

// IncrementUsage bumps the usage counter inside the given transaction so the
// bump commits or rolls back together with the session upsert.
func (r *InterviewRepository) IncrementUsage(tx *gorm.DB, id string) error {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&model.Interview{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InterviewRepository) CountInterviews() (int64, error) {
	var total int64
	err := r.db.Model(&model.Interview{}).Count(&total).Error
	return total, err
}

func (r *InterviewRepository) CountByType() (map[string]int64, error) {
	type row struct {
		Type  string
		Count int64
	}
	var rows []row
	err := r.db.Model(&model.Interview{}).
		Select("type, count(*) as count").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	byType := make(map[string]int64, len(rows))
	for _, rw := range rows {
		byType[rw.Type] = rw.Count
	}
	return byType, nil
}

func (r *InterviewRepository) RecentInterviews(limit int) ([]model.Interview, error) {
	var interviews []model.Interview
	err := r.db.Order("created_at DESC").Limit(limit).Find(&interviews).Error
	return interviews, err
}

// SearchRelated returns the packs nearest to the given embedding, excluding
// the pack the embedding came from.
func (r *InterviewRepository) SearchRelated(embedding pgvector.Vector, excludeID string, topK int) ([]model.Interview, error) {
	var interviews []model.Interview
	err := r.db.Raw(`
        SELECT *
        FROM interviews
        WHERE id != ? AND embedding IS NOT NULL
        ORDER BY embedding <-> ?
        LIMIT ?
    `, excludeID, embedding, topK).Scan(&interviews).Error
	return interviews, err
}

func (r *InterviewRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
