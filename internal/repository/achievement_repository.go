package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sqlmentor/internal/model"
)

type AchievementRepository interface {
	Codes(userID int64) ([]string, error)
	Award(achievement *model.Achievement) error
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Codes(userID int64) ([]string, error) {
	var codes []string
	err := r.db.Model(&model.Achievement{}).
		Where("user_id = ?", userID).
		Pluck("code", &codes).Error
	return codes, err
}

func (r *achievementRepository) Award(achievement *model.Achievement) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "code"}},
		DoNothing: true,
	}).Create(achievement).Error
}
