package repository

import (
	"context"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// memberProjectIDs is a subquery selecting the IDs of projects the user belongs to.
func memberProjectIDs(db *gorm.DB, userID uint64) *gorm.DB {
	return db.Model(&models.ProjectMember{}).
		Select("project_id").
		Where("user_id = ?", userID)
}

func preloadMembers(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC").Order("user_id ASC")
		}).
		Preload("Members.User")
}

// Create creates a project and its creator membership in a transaction
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project, creatorID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return err
		}

		member := &models.ProjectMember{
			ProjectID: project.ID,
			UserID:    creatorID,
			JoinedAt:  time.Now(),
		}
		return tx.Create(member).Error
	})
}

// FindForMember finds a project by ID if the user is one of its members
func (r *GormProjectRepository) FindForMember(ctx context.Context, id, userID uint64) (*models.Project, error) {
	db := r.db.WithContext(ctx)

	var project models.Project
	if err := preloadMembers(db).
		Where("projects.id IN (?)", memberProjectIDs(db, userID)).
		First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForMember lists the user's projects
func (r *GormProjectRepository) ListForMember(ctx context.Context, userID uint64) ([]models.Project, error) {
	db := r.db.WithContext(ctx)

	var projects []models.Project
	if err := preloadMembers(db).
		Where("projects.id IN (?)", memberProjectIDs(db, userID)).
		Order("projects.id ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project without touching its memberships
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return updateColumns(r.db.WithContext(ctx), project, project.ID)
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete all tasks in the project
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		// Delete all members
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(ctx context.Context, member *models.ProjectMember) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(ctx context.Context, projectID, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// IsMember reports whether the user belongs to the project
func (r *GormProjectRepository) IsMember(ctx context.Context, projectID, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}
