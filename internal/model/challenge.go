package model

import "time"

// Challenge is the shared daily event. The open row is the one with
// ClosedAt IS NULL; closed rows are kept so a question is never reused.
type Challenge struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	QuestionID  uint       `json:"question_id" gorm:"not null;index"`
	Question    Question   `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	OpenedAt    time.Time  `json:"opened_at" gorm:"not null"`
	ClosesAt    time.Time  `json:"closes_at" gorm:"not null"`
	ClosedAt    *time.Time `json:"closed_at,omitempty" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ChallengeSubmission is stored ungraded; Correct is filled in by the bulk
// grading pass at close time. Unique (challenge, user): first write wins.
type ChallengeSubmission struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	ChallengeID uint      `json:"challenge_id" gorm:"not null;uniqueIndex:idx_challenge_user"`
	UserID      int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_challenge_user"`
	Answer      string    `json:"answer" gorm:"type:text;not null"`
	Correct     *bool     `json:"correct,omitempty"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`
}
