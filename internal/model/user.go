package model

import "time"

// User holds the identity resolved by the gateway plus the cumulative score.
// TotalScore is only ever changed by the credit transaction in the task
// repository; nothing else writes it.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TotalScore int64     `gorm:"not null;default:0" json:"totalScore"`
	ChatID     *int64    `json:"chatId,omitempty"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}
