package model

import "time"

// User identity is supplied by the calling surface (chat user ids are
// 64-bit snowflakes); rows are upserted on first sight.
type User struct {
	UserID    int64     `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
