package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	StatusPending     TaskStatus = "pending"
	StatusOnHold      TaskStatus = "onHold"
	StatusInProgress  TaskStatus = "inProgress"
	StatusUnderReview TaskStatus = "underReview"
	StatusCompleted   TaskStatus = "completed"
)

var TaskStatuses = []TaskStatus{
	StatusPending,
	StatusOnHold,
	StatusInProgress,
	StatusUnderReview,
	StatusCompleted,
}

func (s TaskStatus) Valid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Task belongs to exactly one project. CompletedBy is an append-only log of
// status changes; Status holds the current state.
type Task struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `gorm:"not null" json:"description"`
	ProjectID   uint       `gorm:"not null;index" json:"project"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Relations
	CompletedBy []StatusChange `gorm:"foreignKey:TaskID" json:"-"`
	Notes       []Note         `gorm:"foreignKey:TaskID" json:"-"`
}

// StatusChange records who moved a task to which status.
type StatusChange struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	TaskID    uint       `gorm:"not null;index" json:"-"`
	UserID    uint       `gorm:"not null" json:"-"`
	Status    TaskStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time  `json:"createdAt"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	type task Task
	completedBy := t.CompletedBy
	if completedBy == nil {
		completedBy = []StatusChange{}
	}
	notes := t.Notes
	if notes == nil {
		notes = []Note{}
	}
	return json.Marshal(struct {
		task
		CompletedBy []StatusChange `json:"completedBy"`
		Notes       []Note         `json:"notes"`
	}{
		task:        task(t),
		CompletedBy: completedBy,
		Notes:       notes,
	})
}

func FindTask(db *gorm.DB, id uint) (*Task, error) {
	var task Task
	if err := db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// LoadTaskDetails loads a task with its status history and notes, each with
// the user who produced them.
func LoadTaskDetails(db *gorm.DB, id uint) (*Task, error) {
	var task Task
	err := db.
		Preload("CompletedBy", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("CompletedBy.User").
		Preload("Notes", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Notes.Author").
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func TasksForProject(db *gorm.DB, projectID uint) ([]Task, error) {
	var tasks []Task
	err := db.Where("project_id = ?", projectID).
		Preload("Notes", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Order("id").
		Find(&tasks).Error
	return tasks, err
}
