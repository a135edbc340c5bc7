package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/services"
)

// ProjectHandler serves the project endpoints. Routes with an :id run behind RequireProjectAccess.
type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns the projects the current user is a member of
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTOs(projects))
}

// GetProject returns the project loaded by the access middleware
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateProject creates a project with the current user as its member
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject applies a partial update (PATCH)
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	h.update(c, false)
}

// ReplaceProject applies a full update (PUT)
func (h *ProjectHandler) ReplaceProject(c *gin.Context) {
	h.update(c, true)
}

func (h *ProjectHandler) update(c *gin.Context, full bool) {
	userID, exists := middleware.GetUserID(c)
	project, ok := middleware.GetProject(c)
	if !exists || !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	var req dto.UpdateProjectRequest
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

	updated, err := h.projectService.UpdateProject(c.Request.Context(), project.ID, userID, services.UpdateProjectInput{
		Name:           req.Name,
		SetDescription: req.Description.Set,
		Description:    req.Description.Ptr(),
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated))
}

// DeleteProject deletes the project with its tasks and memberships
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	project, ok := middleware.GetProject(c)
	if !exists || !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), project.ID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddUser adds a user to the project
func (h *ProjectHandler) AddUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	project, ok := middleware.GetProject(c)
	if !exists || !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	var req dto.MembershipRequest
	if err := bindPartialJSON(c, &req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	change, err := h.projectService.AddMember(c.Request.Context(), project.ID, userID, req.UserID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.StatusResponse{
			Status: fmt.Sprintf("User %s added to project %s", change.User.Username, change.Project.Name),
		})
	case errors.Is(err, services.ErrAlreadyProjectMember):
		c.JSON(http.StatusBadRequest, dto.StatusResponse{
			Status: fmt.Sprintf("User %s already in project", change.User.Username),
		})
	default:
		respondProjectError(c, err)
	}
}

// RemoveUser removes a user from the project
func (h *ProjectHandler) RemoveUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	project, ok := middleware.GetProject(c)
	if !exists || !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	var req dto.MembershipRequest
	if err := bindPartialJSON(c, &req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	change, err := h.projectService.RemoveMember(c.Request.Context(), project.ID, userID, req.UserID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.StatusResponse{
			Status: fmt.Sprintf("User %s removed from project %s", change.User.Username, change.Project.Name),
		})
	case errors.Is(err, services.ErrProjectMemberNotFound):
		c.JSON(http.StatusBadRequest, dto.StatusResponse{
			Status: fmt.Sprintf("User %s not in project", change.User.Username),
		})
	default:
		respondProjectError(c, err)
	}
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrInvalidProjectName):
		apierrors.BadRequestWithDetails(c, "Invalid request body", map[string]string{"name": err.Error()})
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

func respondMissingFields(c *gin.Context, fields []string) {
	details := make(map[string]string, len(fields))
	for _, f := range fields {
		details[f] = "This field is required."
	}
	apierrors.BadRequestWithDetails(c, "Invalid request body", details)
}

// bindPartialJSON binds like ShouldBindJSON but accepts an empty body, which a PATCH may send.
func bindPartialJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
