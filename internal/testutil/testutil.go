// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database that is closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to :memory: would get its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user whose password is the username.
func CreateUser(t *testing.T, db *gorm.DB, username string, isStaff bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(username), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsStaff:      isStaff,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProject inserts a project with the given members.
func CreateProject(t *testing.T, db *gorm.DB, name string, members ...*models.User) *models.Project {
	t.Helper()

	project := &models.Project{Name: name}
	require.NoError(t, db.Create(project).Error)
	for _, u := range members {
		AddMember(t, db, project.ID, u.ID)
	}
	return project
}

// AddMember inserts a membership row.
func AddMember(t *testing.T, db *gorm.DB, projectID, userID uint64) {
	t.Helper()
	require.NoError(t, db.Create(&models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		JoinedAt:  time.Now(),
	}).Error)
}

// CreateTask inserts a task with default status and priority.
func CreateTask(t *testing.T, db *gorm.DB, projectID uint64, title string) *models.Task {
	t.Helper()

	task := &models.Task{ProjectID: projectID, Title: title}
	require.NoError(t, db.Create(task).Error)
	return task
}

// CountTasks returns the number of task rows.
func CountTasks(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
	return count
}
