package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrNotProjectMember       = errors.New("user is not a member of the project")
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrAssigneeNotFound       = errors.New("assigned user does not exist")
	ErrAssigneeNotMember      = errors.New("assigned user is not a member of the project")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	suggester   TaskSuggester
}

// NewTaskService creates a new TaskService. suggester may be nil when no AI backend is configured.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, suggester TaskSuggester) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		suggester:   suggester,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID       uint64
	ProjectID    *uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssignedToID *uint64
	Pagination   *utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID    uint64
	Title        string
	Description  *string
	AssignedToID *uint64
	Status       models.TaskStatus
	Priority     models.TaskPriority
	ActorID      uint64
}

// UpdateTaskInput represents input for updating a task.
// Nullable columns are applied only when their Set flag is true; a nil value clears them.
type UpdateTaskInput struct {
	ProjectID      *uint64
	Title          *string
	SetDescription bool
	Description    *string
	SetAssignedTo  bool
	AssignedToID   *uint64
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
}

// SuggestTasksInput represents input for AI task suggestions
type SuggestTasksInput struct {
	ProjectID uint64
	Text      string
	UserID    uint64
}

// ListTasks returns tasks of the user's projects matching the filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		MemberID:     input.UserID,
		ProjectID:    input.ProjectID,
		Status:       input.Status,
		Priority:     input.Priority,
		AssignedToID: input.AssignedToID,
		Pagination:   input.Pagination,
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task of one of the user's projects
func (s *TaskService) GetTask(ctx context.Context, taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindForMember(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a task in a project the actor is a member of
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleEmpty
	}

	if err := s.ensureProjectMember(ctx, input.ProjectID, input.ActorID); err != nil {
		return nil, err
	}

	if err := s.validateAssignee(ctx, input.ProjectID, input.AssignedToID); err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:    input.ProjectID,
		Title:        title,
		Description:  input.Description,
		AssignedToID: input.AssignedToID,
		Status:       input.Status,
		Priority:     input.Priority,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetTask(ctx, task.ID, input.ActorID)
}

// UpdateTask updates a task of one of the user's projects
func (s *TaskService) UpdateTask(ctx context.Context, taskID, userID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if input.ProjectID != nil && *input.ProjectID != task.ProjectID {
		if err := s.ensureProjectMember(ctx, *input.ProjectID, userID); err != nil {
			return nil, err
		}
		task.ProjectID = *input.ProjectID
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.SetDescription {
		task.Description = input.Description
	}
	if input.SetAssignedTo {
		task.AssignedToID = input.AssignedToID
	}
	if input.SetAssignedTo || input.ProjectID != nil {
		if err := s.validateAssignee(ctx, task.ProjectID, task.AssignedToID); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	task.SyncCompleted()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(ctx, task.ID, userID)
}

// DeleteTask deletes a task of one of the user's projects
func (s *TaskService) DeleteTask(ctx context.Context, taskID, userID uint64) error {
	if _, err := s.GetTask(ctx, taskID, userID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// SuggestTasks drafts tasks for one of the user's projects from free text
func (s *TaskService) SuggestTasks(ctx context.Context, input SuggestTasksInput) ([]SuggestedTask, error) {
	project, err := s.projectRepo.FindForMember(ctx, input.ProjectID, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotProjectMember
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if s.suggester == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.suggester.SuggestTasks(ctx, project.Name, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}

	valid := make([]SuggestedTask, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = strings.TrimSpace(draft.Title)
		if draft.Title == "" {
			continue
		}
		if !draft.Priority.IsValid() {
			draft.Priority = models.TaskPriorityMedium
		}
		valid = append(valid, draft)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}

	return valid, nil
}

// ensureProjectMember verifies that a user belongs to a project; a missing project reads the same
func (s *TaskService) ensureProjectMember(ctx context.Context, projectID, userID uint64) error {
	ok, err := s.projectRepo.IsMember(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify project membership: %w", err)
	}
	if !ok {
		return ErrNotProjectMember
	}
	return nil
}

// validateAssignee checks that a non-nil assignee exists and belongs to the project
func (s *TaskService) validateAssignee(ctx context.Context, projectID uint64, assigneeID *uint64) error {
	if assigneeID == nil {
		return nil
	}

	if _, err := s.userRepo.FindByID(ctx, *assigneeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}

	ok, err := s.projectRepo.IsMember(ctx, projectID, *assigneeID)
	if err != nil {
		return fmt.Errorf("failed to verify assignee membership: %w", err)
	}
	if !ok {
		return ErrAssigneeNotMember
	}

	return nil
}
