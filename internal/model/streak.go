package model

import "time"

// Streak holds the consecutive-correct-day counter, one row per user.
// LastDate is midnight of the last counted day in the reference timezone;
// at most one increment lands per calendar day.
type Streak struct {
	UserID    int64     `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Days      int       `json:"days" gorm:"not null;default:0"`
	LastDate  time.Time `json:"last_date"`
	UpdatedAt time.Time `json:"updated_at"`
}
