package dto

import "time"

// IssuedQuestionResponse is what a user sees when a question is assigned.
// The reference answer is never included.
type IssuedQuestionResponse struct {
	QuestionID       uint      `json:"question_id"`
	Prompt           string    `json:"prompt"`
	Difficulty       string    `json:"difficulty"`
	Dataset          *string   `json:"dataset,omitempty"`
	Topic            *string   `json:"topic,omitempty"`
	Company          *string   `json:"company,omitempty"`
	PointsAvailable  int       `json:"points_available"`
	AttemptBudget    int       `json:"attempt_budget"`
	TimeLimitSeconds int       `json:"time_limit_seconds"`
	ExpiresAt        time.Time `json:"expires_at"`
}

const (
	SubmitStatusCorrect   = "correct"
	SubmitStatusIncorrect = "incorrect"
	SubmitStatusExhausted = "exhausted"
)

// SubmitResultResponse reports one graded practice submission. The
// reference answer is revealed only when the attempt budget is exhausted;
// the hint only while attempts remain.
type SubmitResultResponse struct {
	Status          string  `json:"status"`
	Correct         bool    `json:"correct"`
	Similarity      float64 `json:"similarity"`
	Points          int     `json:"points"`
	AttemptsLeft    int     `json:"attempts_left"`
	Hint            *string `json:"hint,omitempty"`
	ReferenceAnswer *string `json:"reference_answer,omitempty"`
	TotalPoints     int     `json:"total_points"`
	WeeklyPoints    int     `json:"weekly_points"`
	StreakDays      int     `json:"streak_days"`
}

type SkipResultResponse struct {
	QuestionID uint `json:"question_id"`
	Skipped    bool `json:"skipped"`
}

type SubmitAnswerRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Username string `json:"username"`
	Answer   string `json:"answer" binding:"required"`
}
