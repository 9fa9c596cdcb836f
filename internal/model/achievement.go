package model

import "time"

// Achievement records a milestone a user has reached. Derivation is a pure
// function over aggregate stats; rows here are the diff target.
type Achievement struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_achievement_user_code"`
	Code      string    `json:"code" gorm:"size:64;not null;uniqueIndex:idx_achievement_user_code"`
	AwardedAt time.Time `json:"awarded_at" gorm:"autoCreateTime"`
}
