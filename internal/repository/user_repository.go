package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fahrezy/interview-pilot/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db}
}

// SyncUser creates the user row on first sign-in; an existing row is left
// untouched.
func (r *UserRepository) SyncUser(user *model.User) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(user).Error
}

func (r *UserRepository) FindUserByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, "id = ?", id).Error
	return &user, err
}
