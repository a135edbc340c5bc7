package dto

import "github.com/yukikurage/project-management-api/internal/models"

// CredentialsRequest is the body of the token and session login endpoints
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the body of the registration endpoint.
// Length rules are checked after trimming, in the auth service.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// CreateProjectRequest is the body for creating a project. Any users field is ignored.
type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
}

// UpdateProjectRequest is the body for PATCH and PUT on a project
type UpdateProjectRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Description Nullable[string] `json:"description"`
}

// MissingForFullUpdate lists the fields a PUT must carry but the body lacks
func (r UpdateProjectRequest) MissingForFullUpdate() []string {
	if r.Name == nil {
		return []string{"name"}
	}
	return nil
}

// MembershipRequest is the body of add_user and remove_user.
// A missing user_id is reported as an unknown user.
type MembershipRequest struct {
	UserID uint64 `json:"user_id"`
}

// CreateTaskRequest is the body for creating a task. A completed field is ignored.
type CreateTaskRequest struct {
	Project     uint64              `json:"project" binding:"required"`
	Title       string              `json:"title" binding:"required,max=255"`
	Description *string             `json:"description"`
	AssignedTo  *uint64             `json:"assigned_to"`
	Status      models.TaskStatus   `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Priority    models.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// UpdateTaskRequest is the body for PATCH and PUT on a task
type UpdateTaskRequest struct {
	Project     *uint64              `json:"project"`
	Title       *string              `json:"title" binding:"omitempty,max=255"`
	Description Nullable[string]     `json:"description"`
	AssignedTo  Nullable[uint64]     `json:"assigned_to"`
	Status      *models.TaskStatus   `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Priority    *models.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// MissingForFullUpdate lists the fields a PUT must carry but the body lacks
func (r UpdateTaskRequest) MissingForFullUpdate() []string {
	var missing []string
	if r.Project == nil {
		missing = append(missing, "project")
	}
	if r.Title == nil {
		missing = append(missing, "title")
	}
	return missing
}

// SuggestTasksRequest is the body of the task suggestion endpoint
type SuggestTasksRequest struct {
	Project uint64 `json:"project" binding:"required"`
	Text    string `json:"text" binding:"required,max=4000"`
}
