package model

import "time"

// Submission is append-only and is the durable source of truth for every
// aggregate (totals, streaks, period points). Aggregates are derived caches.
type Submission struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	UserID      int64     `json:"user_id" gorm:"not null;index:idx_submissions_user_question"`
	QuestionID  uint      `json:"question_id" gorm:"not null;index:idx_submissions_user_question"`
	Correct     bool      `json:"correct"`
	Points      int       `json:"points" gorm:"not null"`
	Similarity  float64   `json:"similarity"`
	AIFeedback  *string   `json:"ai_feedback,omitempty" gorm:"type:text"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime;index"`
}
