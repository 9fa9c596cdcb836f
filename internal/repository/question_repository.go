package repository

import (
	"gorm.io/gorm"

	"sqlmentor/internal/model"
)

type QuestionRepository interface {
	FindByID(id uint) (*model.Question, error)
	// FindRandomForUser picks a random question matching the optional
	// filters, excluding questions the user has already answered correctly.
	FindRandomForUser(userID int64, difficulty, topic, company *string) (*model.Question, error)
	// FindChallengeCandidate picks a random question never used by any past
	// or present challenge.
	FindChallengeCandidate() (*model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindRandomForUser(userID int64, difficulty, topic, company *string) (*model.Question, error) {
	var question model.Question
	query := r.db.
		Where("id NOT IN (?)", r.db.Model(&model.Submission{}).
			Select("question_id").
			Where("user_id = ? AND correct", userID))
	if difficulty != nil {
		query = query.Where("difficulty = ?", *difficulty)
	}
	if topic != nil {
		query = query.Where("topic = ?", *topic)
	}
	if company != nil {
		query = query.Where("company = ?", *company)
	}
	if err := query.Order("RANDOM()").First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindChallengeCandidate() (*model.Question, error) {
	var question model.Question
	err := r.db.
		Where("id NOT IN (?)", r.db.Model(&model.Challenge{}).Select("question_id")).
		Order("RANDOM()").
		First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}
