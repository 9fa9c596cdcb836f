package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sqlmentor/internal/model"
)

type StreakRepository interface {
	Find(userID int64) (*model.Streak, error)
	Save(streak *model.Streak) error
}

type streakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) Find(userID int64) (*model.Streak, error) {
	var streak model.Streak
	err := r.db.Where("user_id = ?", userID).First(&streak).Error
	return &streak, err
}

func (r *streakRepository) Save(streak *model.Streak) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(streak).Error
}
