package repository

import (
	"context"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithToken creates a user and its auth token within a single transaction.
	CreateWithToken(ctx context.Context, user *models.User, token *models.AuthToken) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// List returns every user, most recently joined first
	List(ctx context.Context) ([]models.User, error)
}

// TokenRepository defines the interface for auth token data access
type TokenRepository interface {
	// FindByKey finds a token by key with its user loaded
	FindByKey(ctx context.Context, key string) (*models.AuthToken, error)

	// GetOrCreate returns the user's token, storing a new one with key if none exists
	GetOrCreate(ctx context.Context, userID uint64, key string) (*models.AuthToken, error)
}

// ProjectRepository defines the interface for project data access.
// Lookups that take a userID are scoped to projects the user is a member of.
type ProjectRepository interface {
	// Create creates a project and adds the creator as its first member
	Create(ctx context.Context, project *models.Project, creatorID uint64) error

	// FindForMember finds a project by ID among the user's projects
	FindForMember(ctx context.Context, id, userID uint64) (*models.Project, error)

	// ListForMember lists all projects the user is a member of
	ListForMember(ctx context.Context, userID uint64) ([]models.Project, error)

	// Update updates a project's own columns
	Update(ctx context.Context, project *models.Project) error

	// Delete deletes a project with its tasks and memberships
	Delete(ctx context.Context, id uint64) error

	// AddMember adds a member to a project
	AddMember(ctx context.Context, member *models.ProjectMember) error

	// RemoveMember removes a member from a project
	RemoveMember(ctx context.Context, projectID, userID uint64) error

	// IsMember reports whether the user belongs to the project
	IsMember(ctx context.Context, projectID, userID uint64) (bool, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindForMember finds a task by ID among tasks of the user's projects
	FindForMember(ctx context.Context, id, userID uint64) (*models.Task, error)

	// List retrieves tasks with filtering and optional pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task's own columns
	Update(ctx context.Context, task *models.Task) error

	// Delete deletes a task
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	MemberID     uint64
	ProjectID    *uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssignedToID *uint64
	Pagination   *utils.PaginationParams
}

// updateColumns writes every column of an existing row and never inserts.
// It returns gorm.ErrRecordNotFound when the row is gone.
func updateColumns(db *gorm.DB, model any, id uint64) error {
	result := db.Model(model).Select("*").Omit(clause.Associations, "created_at").Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// MySQL counts a row whose values did not change as unaffected
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
