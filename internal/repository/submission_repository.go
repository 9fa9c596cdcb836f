package repository

import (
	"gorm.io/gorm"

	"sqlmentor/internal/model"
)

type SubmissionRepository interface {
	Create(submission *model.Submission) error
	// CountIncorrect counts a user's historical incorrect attempts on one
	// question; the attempt budget shrinks with it.
	CountIncorrect(userID int64, questionID uint) (int64, error)
	SetFeedback(submissionID uint, feedback string) error
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(submission *model.Submission) error {
	return r.db.Create(submission).Error
}

func (r *submissionRepository) CountIncorrect(userID int64, questionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Submission{}).
		Where("user_id = ? AND question_id = ? AND NOT correct", userID, questionID).
		Count(&count).Error
	return count, err
}

func (r *submissionRepository) SetFeedback(submissionID uint, feedback string) error {
	return r.db.Model(&model.Submission{}).
		Where("id = ?", submissionID).
		Update("ai_feedback", feedback).Error
}
