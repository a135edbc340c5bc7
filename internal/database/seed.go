package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DemoUsername    = "demo"
	DemoPassword    = "demo123"
	DemoEmail       = "demo@example.com"
	DemoProjectName = "Demo Project"
)

// SeedResult reports what SeedDemo created on this run.
type SeedResult struct {
	UserCreated    bool
	ProjectCreated bool
	TasksCreated   int
}

type demoTask struct {
	title       string
	description string
	status      models.TaskStatus
	priority    models.TaskPriority
}

var demoTasks = []demoTask{
	{"Set up environment", "Install dependencies", models.TaskStatusTodo, models.TaskPriorityHigh},
	{"Create first project", "Register the demo project", models.TaskStatusInProgress, models.TaskPriorityMedium},
	{"Add tasks", "Create the initial tasks", models.TaskStatusDone, models.TaskPriorityLow},
}

// SeedDemo creates a staff user, a demo project and a few tasks.
// Existing rows are left untouched, so it can be run any number of times.
func SeedDemo(db *gorm.DB) (SeedResult, error) {
	var result SeedResult

	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("username = ?", DemoUsername).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash demo password: %w", err)
			}
			user = models.User{
				Username:     DemoUsername,
				Email:        DemoEmail,
				PasswordHash: string(hash),
				IsStaff:      true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create demo user: %w", err)
			}
			result.UserCreated = true
		case err != nil:
			return fmt.Errorf("failed to look up demo user: %w", err)
		}

		var project models.Project
		err = tx.Where("name = ?", DemoProjectName).First(&project).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			description := "Example project for walkthroughs."
			project = models.Project{Name: DemoProjectName, Description: &description}
			if err := tx.Create(&project).Error; err != nil {
				return fmt.Errorf("failed to create demo project: %w", err)
			}
			result.ProjectCreated = true
		case err != nil:
			return fmt.Errorf("failed to look up demo project: %w", err)
		}

		member := models.ProjectMember{ProjectID: project.ID, UserID: user.ID}
		if err := tx.Where(&member).Attrs(models.ProjectMember{JoinedAt: time.Now()}).FirstOrCreate(&member).Error; err != nil {
			return fmt.Errorf("failed to add demo user to project: %w", err)
		}

		for _, dt := range demoTasks {
			var existing models.Task
			err := tx.Where("project_id = ? AND title = ?", project.ID, dt.title).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to look up demo task %q: %w", dt.title, err)
			}

			description := dt.description
			assignee := user.ID
			task := models.Task{
				ProjectID:    project.ID,
				Title:        dt.title,
				Description:  &description,
				AssignedToID: &assignee,
				Status:       dt.status,
				Priority:     dt.priority,
			}
			if err := tx.Create(&task).Error; err != nil {
				return fmt.Errorf("failed to create demo task %q: %w", dt.title, err)
			}
			result.TasksCreated++
		}

		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	return result, nil
}
