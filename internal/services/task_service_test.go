package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/testutil"
	"gorm.io/gorm"
)

type fakeSuggester struct {
	tasks       []services.SuggestedTask
	err         error
	projectName string
}

func (f *fakeSuggester) SuggestTasks(ctx context.Context, projectName, text string) ([]services.SuggestedTask, error) {
	f.projectName = projectName
	return f.tasks, f.err
}

// TaskServiceTestSuite covers the task access policy
type TaskServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	ctx       context.Context
	suggester *fakeSuggester
	service   *services.TaskService

	owner    *models.User
	member   *models.User
	outsider *models.User
	project  *models.Project
	other    *models.Project
}

func (s *TaskServiceTestSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.ctx = context.Background()
	s.suggester = &fakeSuggester{}
	s.service = services.NewTaskService(
		repository.NewTaskRepository(s.db),
		repository.NewProjectRepository(s.db),
		repository.NewUserRepository(s.db),
		s.suggester,
	)

	s.owner = testutil.CreateUser(s.T(), s.db, "owner", false)
	s.member = testutil.CreateUser(s.T(), s.db, "member", false)
	s.outsider = testutil.CreateUser(s.T(), s.db, "outsider", false)
	s.project = testutil.CreateProject(s.T(), s.db, "Main", s.owner, s.member)
	s.other = testutil.CreateProject(s.T(), s.db, "Other", s.outsider)
}

func (s *TaskServiceTestSuite) TestCreateTask_Success() {
	task, err := s.service.CreateTask(s.ctx, services.CreateTaskInput{
		ProjectID:    s.project.ID,
		Title:        "  Write tests ",
		AssignedToID: &s.member.ID,
		Status:       models.TaskStatusDone,
		ActorID:      s.owner.ID,
	})
	s.Require().NoError(err)
	s.Equal("Write tests", task.Title)
	s.Equal(models.TaskPriorityMedium, task.Priority)
	s.True(task.Completed)
	s.Require().NotNil(task.AssignedTo)
	s.Equal("member", task.AssignedTo.Username)
}

func (s *TaskServiceTestSuite) TestCreateTask_NonMemberForbidden() {
	_, err := s.service.CreateTask(s.ctx, services.CreateTaskInput{
		ProjectID: s.other.ID,
		Title:     "Sneaky",
		ActorID:   s.owner.ID,
	})
	s.ErrorIs(err, services.ErrNotProjectMember)

	_, err = s.service.CreateTask(s.ctx, services.CreateTaskInput{
		ProjectID: 9999,
		Title:     "Nowhere",
		ActorID:   s.owner.ID,
	})
	s.ErrorIs(err, services.ErrNotProjectMember)

	s.Zero(testutil.CountTasks(s.T(), s.db))
}

func (s *TaskServiceTestSuite) TestCreateTask_AssigneeValidation() {
	missing := uint64(9999)
	_, err := s.service.CreateTask(s.ctx, services.CreateTaskInput{
		ProjectID: s.project.ID, Title: "x", AssignedToID: &missing, ActorID: s.owner.ID,
	})
	s.ErrorIs(err, services.ErrAssigneeNotFound)

	_, err = s.service.CreateTask(s.ctx, services.CreateTaskInput{
		ProjectID: s.project.ID, Title: "x", AssignedToID: &s.outsider.ID, ActorID: s.owner.ID,
	})
	s.ErrorIs(err, services.ErrAssigneeNotMember)

	_, err = s.service.CreateTask(s.ctx, services.CreateTaskInput{
		ProjectID: s.project.ID, Title: "   ", ActorID: s.owner.ID,
	})
	s.ErrorIs(err, services.ErrTitleEmpty)

	s.Zero(testutil.CountTasks(s.T(), s.db))
}

func (s *TaskServiceTestSuite) TestUpdateTask_StatusDrivesCompleted() {
	task := testutil.CreateTask(s.T(), s.db, s.project.ID, "Flip")

	done := models.TaskStatusDone
	updated, err := s.service.UpdateTask(s.ctx, task.ID, s.member.ID, services.UpdateTaskInput{Status: &done})
	s.Require().NoError(err)
	s.True(updated.Completed)

	todo := models.TaskStatusTodo
	updated, err = s.service.UpdateTask(s.ctx, task.ID, s.member.ID, services.UpdateTaskInput{Status: &todo})
	s.Require().NoError(err)
	s.False(updated.Completed)
}

func (s *TaskServiceTestSuite) TestUpdateTask_AssignAndClear() {
	task := testutil.CreateTask(s.T(), s.db, s.project.ID, "Assign me")

	updated, err := s.service.UpdateTask(s.ctx, task.ID, s.owner.ID, services.UpdateTaskInput{
		SetAssignedTo: true,
		AssignedToID:  &s.member.ID,
	})
	s.Require().NoError(err)
	s.Require().NotNil(updated.AssignedToID)
	s.Equal(s.member.ID, *updated.AssignedToID)

	_, err = s.service.UpdateTask(s.ctx, task.ID, s.owner.ID, services.UpdateTaskInput{
		SetAssignedTo: true,
		AssignedToID:  &s.outsider.ID,
	})
	s.ErrorIs(err, services.ErrAssigneeNotMember)

	updated, err = s.service.UpdateTask(s.ctx, task.ID, s.owner.ID, services.UpdateTaskInput{SetAssignedTo: true})
	s.Require().NoError(err)
	s.Nil(updated.AssignedToID)
	s.Nil(updated.AssignedTo)
}

func (s *TaskServiceTestSuite) TestUpdateTask_MoveProject() {
	task := testutil.CreateTask(s.T(), s.db, s.project.ID, "Move")

	// owner is not in "Other"
	_, err := s.service.UpdateTask(s.ctx, task.ID, s.owner.ID, services.UpdateTaskInput{ProjectID: &s.other.ID})
	s.ErrorIs(err, services.ErrNotProjectMember)

	third := testutil.CreateProject(s.T(), s.db, "Third", s.owner)
	assigned, err := s.service.UpdateTask(s.ctx, task.ID, s.owner.ID, services.UpdateTaskInput{
		SetAssignedTo: true,
		AssignedToID:  &s.member.ID,
	})
	s.Require().NoError(err)
	s.NotNil(assigned.AssignedToID)

	// member is not in "Third", so the assignment blocks the move
	_, err = s.service.UpdateTask(s.ctx, task.ID, s.owner.ID, services.UpdateTaskInput{ProjectID: &third.ID})
	s.ErrorIs(err, services.ErrAssigneeNotMember)

	moved, err := s.service.UpdateTask(s.ctx, task.ID, s.owner.ID, services.UpdateTaskInput{
		ProjectID:     &third.ID,
		SetAssignedTo: true,
	})
	s.Require().NoError(err)
	s.Equal(third.ID, moved.ProjectID)
}

func (s *TaskServiceTestSuite) TestScopedAccess() {
	task := testutil.CreateTask(s.T(), s.db, s.project.ID, "Hidden")

	_, err := s.service.GetTask(s.ctx, task.ID, s.outsider.ID)
	s.ErrorIs(err, services.ErrTaskNotFound)

	title := "changed"
	_, err = s.service.UpdateTask(s.ctx, task.ID, s.outsider.ID, services.UpdateTaskInput{Title: &title})
	s.ErrorIs(err, services.ErrTaskNotFound)

	s.ErrorIs(s.service.DeleteTask(s.ctx, task.ID, s.outsider.ID), services.ErrTaskNotFound)

	tasks, total, err := s.service.ListTasks(s.ctx, services.ListTasksInput{UserID: s.outsider.ID})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(tasks)

	s.Require().NoError(s.service.DeleteTask(s.ctx, task.ID, s.member.ID))
	s.Zero(testutil.CountTasks(s.T(), s.db))
}

func (s *TaskServiceTestSuite) TestSuggestTasks() {
	s.suggester.tasks = []services.SuggestedTask{
		{Title: " Plan sprint ", Priority: models.TaskPriorityHigh},
		{Title: "   "},
		{Title: "Review", Priority: "urgent"},
	}

	drafts, err := s.service.SuggestTasks(s.ctx, services.SuggestTasksInput{
		ProjectID: s.project.ID,
		Text:      "plan the sprint and review",
		UserID:    s.member.ID,
	})
	s.Require().NoError(err)
	s.Require().Len(drafts, 2)
	s.Equal("Plan sprint", drafts[0].Title)
	s.Equal(models.TaskPriorityMedium, drafts[1].Priority)
	s.Equal("Main", s.suggester.projectName)
	s.Zero(testutil.CountTasks(s.T(), s.db))

	_, err = s.service.SuggestTasks(s.ctx, services.SuggestTasksInput{ProjectID: s.other.ID, Text: "x", UserID: s.member.ID})
	s.ErrorIs(err, services.ErrNotProjectMember)

	s.suggester.tasks = nil
	_, err = s.service.SuggestTasks(s.ctx, services.SuggestTasksInput{ProjectID: s.project.ID, Text: "x", UserID: s.member.ID})
	s.ErrorIs(err, services.ErrAINoTasksGenerated)

	boom := errors.New("upstream down")
	s.suggester.err = boom
	_, err = s.service.SuggestTasks(s.ctx, services.SuggestTasksInput{ProjectID: s.project.ID, Text: "x", UserID: s.member.ID})
	s.ErrorIs(err, boom)
}

func (s *TaskServiceTestSuite) TestSuggestTasks_NotConfigured() {
	svc := services.NewTaskService(
		repository.NewTaskRepository(s.db),
		repository.NewProjectRepository(s.db),
		repository.NewUserRepository(s.db),
		nil,
	)

	_, err := svc.SuggestTasks(s.ctx, services.SuggestTasksInput{ProjectID: s.project.ID, Text: "x", UserID: s.owner.ID})
	s.ErrorIs(err, services.ErrAIServiceNotConfigured)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
