package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	ProjectID    uint64       `gorm:"not null;index" json:"project"`
	Title        string       `gorm:"type:varchar(255);not null" json:"title"`
	Description  *string      `gorm:"type:text" json:"description"`
	AssignedToID *uint64      `gorm:"index" json:"assigned_to"`
	Status       TaskStatus   `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	Priority     TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Completed    bool         `gorm:"not null" json:"completed"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	Project    Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	AssignedTo *User   `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"-"`
}

// SyncCompleted derives Completed from Status.
func (t *Task) SyncCompleted() {
	t.Completed = t.Status == TaskStatusDone
}

// BeforeSave fills enum defaults and keeps Completed in step with Status on every write.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	t.SyncCompleted()
	return nil
}
