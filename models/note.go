package models

import (
	"time"

	"gorm.io/gorm"
)

// Note is attached to a task. Only its author may delete it.
type Note struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedBy uint      `gorm:"not null;index" json:"-"`
	TaskID    uint      `gorm:"not null;index" json:"task"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Author *User `gorm:"foreignKey:CreatedBy" json:"createdBy,omitempty"`
}

func (n *Note) IsAuthor(userID uint) bool {
	return n.CreatedBy == userID
}

func NotesForTask(db *gorm.DB, taskID uint) ([]Note, error) {
	var notes []Note
	err := db.Where("task_id = ?", taskID).
		Preload("Author").
		Order("id").
		Find(&notes).Error
	return notes, err
}
