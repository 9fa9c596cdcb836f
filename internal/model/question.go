package model

import "time"

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is an immutable catalog item. Content ingestion writes these;
// the engine only reads them.
type Question struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	Prompt     string    `json:"prompt" gorm:"type:text;not null"`
	Answer     string    `json:"-" gorm:"type:text;not null"` // reference answer, never serialized to clients
	Difficulty string    `json:"difficulty" gorm:"size:25;not null;index"`
	Dataset    *string   `json:"dataset,omitempty" gorm:"type:text"`
	Hint       *string   `json:"hint,omitempty" gorm:"type:text"`
	Topic      *string   `json:"topic,omitempty" gorm:"index"`
	Company    *string   `json:"company,omitempty" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
}
