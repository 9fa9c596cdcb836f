package model

import "time"

// LeaderboardEntry accumulates a user's lifetime points via upsert-add.
type LeaderboardEntry struct {
	UserID    int64     `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Points    int       `json:"points" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DailyPoints is keyed by the reference-timezone day start.
type DailyPoints struct {
	UserID   int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_daily_user_day"`
	DayStart time.Time `json:"day_start" gorm:"not null;uniqueIndex:idx_daily_user_day"`
	Points   int       `json:"points" gorm:"not null;default:0"`
}

// WeeklyPoints is keyed by the reference-timezone Monday of the week.
type WeeklyPoints struct {
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_weekly_user_week"`
	WeekStart time.Time `json:"week_start" gorm:"not null;uniqueIndex:idx_weekly_user_week"`
	Points    int       `json:"points" gorm:"not null;default:0"`
}
