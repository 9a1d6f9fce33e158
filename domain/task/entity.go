package task

import (
	"time"
)

// MaxDescriptionLength is the longest description a task may carry, in characters.
const MaxDescriptionLength = 255

// Task represents a to-do item.
type Task struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Description string    `gorm:"size:255;not null" json:"description"`
	IsCompleted bool      `gorm:"not null;default:false" json:"isCompleted"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// Filter narrows a task listing. Nil or blank fields do not restrict.
type Filter struct {
	Description *string `json:"description,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
}
