package dto

import "time"

type ChallengeView struct {
	ChallengeID     uint      `json:"challenge_id"`
	QuestionID      uint      `json:"question_id"`
	Prompt          string    `json:"prompt"`
	Difficulty      string    `json:"difficulty"`
	Dataset         *string   `json:"dataset,omitempty"`
	PointsAvailable int       `json:"points_available"`
	OpenedAt        time.Time `json:"opened_at"`
	ClosesAt        time.Time `json:"closes_at"`
}

type ChallengeSubmitRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Username string `json:"username"`
	Answer   string `json:"answer" binding:"required"`
}

// ChallengeSubmitResponse acknowledges an accepted submission. Grading is
// deferred to the close of the window, so no verdict appears here.
type ChallengeSubmitResponse struct {
	ChallengeID uint      `json:"challenge_id"`
	Accepted    bool      `json:"accepted"`
	GradedAt    time.Time `json:"graded_at"` // when results will be available
}
