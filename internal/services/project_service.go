package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrInvalidProjectName    = errors.New("project name cannot be empty")
	ErrAlreadyProjectMember  = errors.New("user is already a member of this project")
	ErrProjectMemberNotFound = errors.New("user is not a member of this project")
)

// ProjectService provides business logic for project operations.
// Every lookup is scoped to the acting user's projects; others read as not found.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description *string
	CreatorID   uint64
}

// UpdateProjectInput represents a partial project update.
// Description is applied only when SetDescription is true; nil clears it.
type UpdateProjectInput struct {
	Name           *string
	SetDescription bool
	Description    *string
}

// MembershipChange names the project and user involved in add_user or remove_user.
type MembershipChange struct {
	Project *models.Project
	User    *models.User
}

// ListProjects returns the projects the user is a member of.
func (s *ProjectService) ListProjects(ctx context.Context, userID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListForMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project if the user is a member of it.
func (s *ProjectService) GetProject(ctx context.Context, projectID, userID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindForMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// CreateProject creates a project with the creator as its only member.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidProjectName
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
	}

	if err := s.projectRepo.Create(ctx, project, input.CreatorID); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.GetProject(ctx, project.ID, input.CreatorID)
}

// UpdateProject applies a partial update to one of the user's projects.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, userID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = name
	}
	if input.SetDescription {
		project.Description = input.Description
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes one of the user's projects with its tasks and memberships.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, userID uint64) error {
	if _, err := s.GetProject(ctx, projectID, userID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// AddMember adds targetID to one of the actor's projects.
// On ErrAlreadyProjectMember the returned change is still filled in.
func (s *ProjectService) AddMember(ctx context.Context, projectID, actorID, targetID uint64) (*MembershipChange, error) {
	change, err := s.resolveMembershipChange(ctx, projectID, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if change.Project.HasMember(targetID) {
		return change, ErrAlreadyProjectMember
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    targetID,
		JoinedAt:  time.Now(),
	}
	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return change, ErrAlreadyProjectMember
		}
		return nil, fmt.Errorf("failed to add member to project: %w", err)
	}

	return change, nil
}

// RemoveMember removes targetID from one of the actor's projects.
// On ErrProjectMemberNotFound the returned change is still filled in.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, actorID, targetID uint64) (*MembershipChange, error) {
	change, err := s.resolveMembershipChange(ctx, projectID, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if !change.Project.HasMember(targetID) {
		return change, ErrProjectMemberNotFound
	}

	if err := s.projectRepo.RemoveMember(ctx, projectID, targetID); err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	return change, nil
}

func (s *ProjectService) resolveMembershipChange(ctx context.Context, projectID, actorID, targetID uint64) (*MembershipChange, error) {
	project, err := s.GetProject(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	if targetID == 0 {
		return nil, ErrUserNotFound
	}

	user, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &MembershipChange{Project: project, User: user}, nil
}
