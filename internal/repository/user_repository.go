package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sqlmentor/internal/model"
)

type UserRepository interface {
	Ensure(user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Ensure inserts the user if unseen, otherwise leaves the row alone.
func (r *userRepository) Ensure(user *model.User) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(user).Error
}
