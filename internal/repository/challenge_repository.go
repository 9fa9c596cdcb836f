package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sqlmentor/internal/model"
)

type ChallengeRepository interface {
	// Active returns the single open challenge (closed_at IS NULL), with its
	// question preloaded.
	Active() (*model.Challenge, error)
	Create(challenge *model.Challenge) error
	// CreateSubmission appends a user's answer; returns false if the user
	// already submitted for this challenge (first write wins).
	CreateSubmission(submission *model.ChallengeSubmission) (bool, error)
	SubmissionsFor(challengeID uint) ([]model.ChallengeSubmission, error)
}

type challengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) Active() (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.db.Preload("Question").Where("closed_at IS NULL").First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) Create(challenge *model.Challenge) error {
	return r.db.Create(challenge).Error
}

func (r *challengeRepository) CreateSubmission(submission *model.ChallengeSubmission) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "challenge_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(submission)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *challengeRepository) SubmissionsFor(challengeID uint) ([]model.ChallengeSubmission, error) {
	var submissions []model.ChallengeSubmission
	err := r.db.Where("challenge_id = ?", challengeID).Order("submitted_at ASC").Find(&submissions).Error
	return submissions, err
}
