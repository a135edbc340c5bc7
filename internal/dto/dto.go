package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProjectDTO represents a project with its members in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Users       []UserDTO `json:"users"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                 uint64              `json:"id"`
	Project            uint64              `json:"project"`
	Title              string              `json:"title"`
	Description        *string             `json:"description"`
	AssignedTo         *uint64             `json:"assigned_to"`
	AssignedToUsername *string             `json:"assigned_to_username"`
	Status             models.TaskStatus   `json:"status"`
	Priority           models.TaskPriority `json:"priority"`
	Completed          bool                `json:"completed"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// TokenResponse is returned by the token endpoint
type TokenResponse struct {
	Token  string `json:"token"`
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	TokenResponse
	Username string `json:"username"`
}

// StatusResponse carries a human readable outcome, as used by the membership actions
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// SuggestedTaskDTO is a draft task proposed by the suggestion service
type SuggestedTaskDTO struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = ToUserDTO(u)
	}
	return dtos
}

// ToProjectDTO converts a Project model to ProjectDTO.
// Members must be preloaded with their users.
func ToProjectDTO(project models.Project) ProjectDTO {
	users := make([]UserDTO, len(project.Members))
	for i, m := range project.Members {
		users[i] = ToUserDTO(m.User)
	}

	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Users:       users,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = ToProjectDTO(p)
	}
	return dtos
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Project:     task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		AssignedTo:  task.AssignedToID,
		Status:      task.Status,
		Priority:    task.Priority,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include assignee name if preloaded
	if task.AssignedTo != nil {
		username := task.AssignedTo.Username
		dto.AssignedToUsername = &username
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = ToTaskDTO(t)
	}
	return dtos
}
