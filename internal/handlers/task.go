package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks of the current user's projects.
// Optional filters: project, status, priority, assigned_to. With page or limit the
// result is paginated and the unpaginated total goes in X-Total-Count.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	input := services.ListTasksInput{UserID: userID}
	details := map[string]string{}

	if v, ok := c.GetQuery("project"); ok {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			details["project"] = "A valid integer is required."
		} else {
			input.ProjectID = &id
		}
	}
	if v, ok := c.GetQuery("assigned_to"); ok {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			details["assigned_to"] = "A valid integer is required."
		} else {
			input.AssignedToID = &id
		}
	}
	if v, ok := c.GetQuery("status"); ok {
		status := models.TaskStatus(v)
		if !status.IsValid() {
			details["status"] = "Must be one of: todo in_progress done."
		} else {
			input.Status = &status
		}
	}
	if v, ok := c.GetQuery("priority"); ok {
		priority := models.TaskPriority(v)
		if !priority.IsValid() {
			details["priority"] = "Must be one of: low medium high."
		} else {
			input.Priority = &priority
		}
	}
	if len(details) > 0 {
		apierrors.BadRequestWithDetails(c, "Invalid query parameters", details)
		return
	}

	if params, ok := utils.GetPaginationParams(c); ok {
		input.Pagination = &params
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.Header(constants.TotalCountHeader, strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task in one of the current user's projects
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		ProjectID:    req.Project,
		Title:        req.Title,
		Description:  req.Description,
		AssignedToID: req.AssignedTo,
		Status:       req.Status,
		Priority:     req.Priority,
		ActorID:      userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update (PATCH)
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	h.update(c, false)
}

// ReplaceTask applies a full update (PUT)
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	h.update(c, true)
}

func (h *TaskHandler) update(c *gin.Context, full bool) {
	userID, exists := middleware.GetUserID(c)
	task, ok := middleware.GetTask(c)
	if !exists || !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var req dto.UpdateTaskRequest
	if err := bindPartialJSON(c, &req); err != nil {
		apierrors.BindingError(c, err)
		return
	}
	if full {
		if missing := req.MissingForFullUpdate(); len(missing) > 0 {
			respondMissingFields(c, missing)
			return
		}
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task.ID, userID, services.UpdateTaskInput{
		ProjectID:      req.Project,
		Title:          req.Title,
		SetDescription: req.Description.Set,
		Description:    req.Description.Ptr(),
		SetAssignedTo:  req.AssignedTo.Set,
		AssignedToID:   req.AssignedTo.Ptr(),
		Status:         req.Status,
		Priority:       req.Priority,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	task, ok := middleware.GetTask(c)
	if !exists || !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SuggestTasks drafts tasks from free text without saving them
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	drafts, err := h.taskService.SuggestTasks(c.Request.Context(), services.SuggestTasksInput{
		ProjectID: req.Project,
		Text:      req.Text,
		UserID:    userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	out := make([]dto.SuggestedTaskDTO, len(drafts))
	for i, d := range drafts {
		out[i] = dto.SuggestedTaskDTO{
			Title:       d.Title,
			Description: d.Description,
			Priority:    d.Priority,
		}
	}
	c.JSON(http.StatusOK, out)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, "You are not a member of this project")
	case errors.Is(err, services.ErrTitleEmpty):
		apierrors.BadRequestWithDetails(c, "Invalid request body", map[string]string{"title": err.Error()})
	case errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, services.ErrAssigneeNotMember):
		apierrors.BadRequestWithDetails(c, "Invalid request body", map[string]string{"assigned_to": err.Error()})
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "Task suggestions are not configured")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
