package model

import "time"

// Priority is the urgency bucket of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriorities enumerates the accepted priority values.
var ValidPriorities = map[Priority]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
}

// Task represents a single item in a user's list, optionally nested under a
// parent task and filed into a category. AuthorID is set at creation and
// never changes. ScoredAt records the one credit a task can ever produce;
// it stays set even if the task is later un-completed.
type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AuthorID       uint       `gorm:"index;not null" json:"authorId"`
	ParentID       *uint      `gorm:"index" json:"parentId"`
	CategoryID     *uint      `gorm:"index" json:"categoryId"`
	Title          string     `gorm:"not null" json:"title"`
	Completed      bool       `gorm:"default:false" json:"completed"`
	Priority       Priority   `gorm:"default:medium" json:"priority"`
	DueDate        *time.Time `json:"dueDate"`
	ReminderTime   *time.Time `json:"reminderTime"`
	ReminderSentAt *time.Time `json:"-"`
	Points         int64      `gorm:"not null;default:0" json:"points"`
	ScoredAt       *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category"`
	SubTasks []Task    `gorm:"foreignKey:ParentID" json:"subTasks"`
}
