package dto

type ScoresResponse struct {
	UserID       int64 `json:"user_id"`
	TotalPoints  int   `json:"total_points"`
	WeeklyPoints int   `json:"weekly_points"`
	StreakDays   int   `json:"streak_days"`
}

type LeaderboardRow struct {
	Rank   int   `json:"rank"`
	UserID int64 `json:"user_id"`
	Points int   `json:"points"`
}

type WeeklyHeroRow struct {
	Rank        int   `json:"rank"`
	UserID      int64 `json:"user_id"`
	Submissions int64 `json:"submissions"`
	Points      int   `json:"points"`
	StreakDays  int   `json:"streak_days"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
