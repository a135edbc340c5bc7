package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/testutil"
	"gorm.io/gorm"
)

func newProjectService(t *testing.T) (*services.ProjectService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return services.NewProjectService(repository.NewProjectRepository(db), repository.NewUserRepository(db)), db
}

func TestProjectService_CreateAddsCreatorAsOnlyMember(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()
	bob := testutil.CreateUser(t, db, "bob", false)

	project, err := svc.CreateProject(ctx, services.CreateProjectInput{Name: "Proj A", CreatorID: bob.ID})
	require.NoError(t, err)
	require.Len(t, project.Members, 1)
	assert.Equal(t, bob.ID, project.Members[0].UserID)

	_, err = svc.CreateProject(ctx, services.CreateProjectInput{Name: "   ", CreatorID: bob.ID})
	assert.ErrorIs(t, err, services.ErrInvalidProjectName)
}

func TestProjectService_NonMemberSeesNotFound(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner", false)
	stranger := testutil.CreateUser(t, db, "stranger", false)
	p := testutil.CreateProject(t, db, "Private", owner)

	_, err := svc.GetProject(ctx, p.ID, stranger.ID)
	assert.ErrorIs(t, err, services.ErrProjectNotFound)

	name := "Hijacked"
	_, err = svc.UpdateProject(ctx, p.ID, stranger.ID, services.UpdateProjectInput{Name: &name})
	assert.ErrorIs(t, err, services.ErrProjectNotFound)

	assert.ErrorIs(t, svc.DeleteProject(ctx, p.ID, stranger.ID), services.ErrProjectNotFound)

	list, err := svc.ListProjects(ctx, stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjectService_UpdatePartial(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner", false)
	desc := "first"
	p, err := svc.CreateProject(ctx, services.CreateProjectInput{Name: "Old", Description: &desc, CreatorID: owner.ID})
	require.NoError(t, err)

	name := "New"
	updated, err := svc.UpdateProject(ctx, p.ID, owner.ID, services.UpdateProjectInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "first", *updated.Description)

	updated, err = svc.UpdateProject(ctx, p.ID, owner.ID, services.UpdateProjectInput{SetDescription: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Len(t, updated.Members, 1)
}

func TestProjectService_MembershipActions(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", false)
	carol := testutil.CreateUser(t, db, "carol", false)
	p := testutil.CreateProject(t, db, "Team", alice)

	change, err := svc.AddMember(ctx, p.ID, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", change.User.Username)
	assert.Equal(t, "Team", change.Project.Name)

	change, err = svc.AddMember(ctx, p.ID, alice.ID, carol.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyProjectMember)
	require.NotNil(t, change)
	assert.Equal(t, "carol", change.User.Username)

	_, err = svc.AddMember(ctx, p.ID, alice.ID, 999)
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = svc.RemoveMember(ctx, p.ID, alice.ID, carol.ID)
	require.NoError(t, err)

	_, err = svc.RemoveMember(ctx, p.ID, alice.ID, carol.ID)
	assert.ErrorIs(t, err, services.ErrProjectMemberNotFound)

	// carol is out again, so she can no longer see the project at all
	_, err = svc.AddMember(ctx, p.ID, carol.ID, carol.ID)
	assert.ErrorIs(t, err, services.ErrProjectNotFound)
}

func TestProjectService_DeleteRemovesTasks(t *testing.T) {
	svc, db := newProjectService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner", false)
	p := testutil.CreateProject(t, db, "Doomed", owner)
	testutil.CreateTask(t, db, p.ID, "one")
	testutil.CreateTask(t, db, p.ID, "two")

	require.NoError(t, svc.DeleteProject(ctx, p.ID, owner.ID))
	assert.Zero(t, testutil.CountTasks(t, db))

	var count int64
	require.NoError(t, db.Model(&models.Project{}).Count(&count).Error)
	assert.Zero(t, count)
}
