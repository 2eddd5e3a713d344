package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/repository"
	"collaborative-pixelart/internal/repository/mocks"
	"collaborative-pixelart/internal/service"
)

func TestProjectService_CreateProject(t *testing.T) {
	repo := mocks.NewProjectRepository(t)
	svc := service.NewProjectService(repo, "https://pixels.example/")
	ctx := context.Background()

	repo.On("IsInviteCodeExists", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
	repo.On("IsInviteCodeExists", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	repo.On("Save", ctx, mock.AnythingOfType("*domain.Project")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Project).ID = 11 }).
		Return(nil).Once()

	project, err := svc.CreateProject(ctx, 7, service.CreateProjectParams{Title: " Walk cycle ", Columns: 4, Rows: 3, CellSize: 10})
	require.NoError(t, err)

	assert.Equal(t, uint(11), project.ID)
	assert.Equal(t, uint(7), project.OwnerID)
	assert.Equal(t, "Walk cycle", project.Title)
	assert.Len(t, project.InviteCode, 8)
	assert.Equal(t, domain.DefaultAnimationDuration, project.Duration)
	assert.Equal(t, "https://pixels.example/p/"+project.InviteCode, svc.ShareLink(project))

	canvas, err := project.ParseCanvas()
	require.NoError(t, err)
	assert.Equal(t, 4, canvas.Columns)
	require.Len(t, canvas.Frames, 1, "新工程只有一帧")
	assert.Len(t, canvas.Frames[0].Pixels, 12)
	assert.Equal(t, 100.0, canvas.Frames[0].Interval.Float())
}

func TestProjectService_CreateProject_InvalidParams(t *testing.T) {
	repo := mocks.NewProjectRepository(t)
	svc := service.NewProjectService(repo, "")

	cases := []service.CreateProjectParams{
		{Title: "", Columns: 2, Rows: 2, CellSize: 1},
		{Title: "x", Columns: 0, Rows: 2, CellSize: 1},
		{Title: "x", Columns: 2, Rows: service.MaxGridSize + 1, CellSize: 1},
		{Title: "x", Columns: 2, Rows: 2, CellSize: 0},
		{Title: "x", Columns: 2, Rows: 2, CellSize: 1, Duration: -1},
	}
	for _, params := range cases {
		_, err := svc.CreateProject(context.Background(), 1, params)
		assert.True(t, errors.Is(err, service.ErrInvalidInput), "%+v 应被拒绝", params)
	}
}

func TestProjectService_JoinProject(t *testing.T) {
	repo := mocks.NewProjectRepository(t)
	svc := service.NewProjectService(repo, "")
	ctx := context.Background()

	repo.On("FindByInviteCode", ctx, "ABCD2345").Return(&domain.Project{ID: 3, InviteCode: "ABCD2345"}, nil).Once()
	repo.On("FindByInviteCode", ctx, "NOPE").Return(nil, repository.ErrProjectNotFound).Once()

	project, err := svc.JoinProject(ctx, 9, " abcd2345 ")
	require.NoError(t, err)
	assert.Equal(t, uint(3), project.ID)

	_, err = svc.JoinProject(ctx, 9, "nope")
	assert.True(t, errors.Is(err, service.ErrInvalidInviteCode))
}

func TestProjectService_FindProjectByID(t *testing.T) {
	repo := mocks.NewProjectRepository(t)
	svc := service.NewProjectService(repo, "")
	ctx := context.Background()

	repo.On("FindByID", ctx, uint(1)).Return(nil, repository.ErrProjectNotFound).Once()
	repo.On("FindByID", ctx, uint(2)).Return(nil, errors.New("connection reset")).Once()

	_, err := svc.FindProjectByID(ctx, 1)
	assert.True(t, errors.Is(err, service.ErrProjectNotFound))

	_, err = svc.FindProjectByID(ctx, 2)
	assert.True(t, errors.Is(err, service.ErrInternalServer))
}

func TestProjectService_UpdateSettings(t *testing.T) {
	repo := mocks.NewProjectRepository(t)
	svc := service.NewProjectService(repo, "")
	ctx := context.Background()

	repo.On("FindByID", ctx, uint(5)).Return(&domain.Project{ID: 5, OwnerID: 1, Title: "old", Duration: 1}, nil)
	repo.On("Save", ctx, mock.MatchedBy(func(p *domain.Project) bool {
		return p.Title == "new" && p.Duration == 2.5
	})).Return(nil).Once()

	title, duration := "new", 2.5
	project, err := svc.UpdateSettings(ctx, 1, 5, service.ProjectSettings{Title: &title, Duration: &duration})
	require.NoError(t, err)
	assert.Equal(t, 2.5, project.AnimationDuration())

	_, err = svc.UpdateSettings(ctx, 2, 5, service.ProjectSettings{Title: &title})
	assert.True(t, errors.Is(err, service.ErrForbidden), "非所有者不能修改设置")

	zero := 0.0
	_, err = svc.UpdateSettings(ctx, 1, 5, service.ProjectSettings{Duration: &zero})
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
}

func TestProjectService_CanEdit(t *testing.T) {
	svc := service.NewProjectService(mocks.NewProjectRepository(t), "")
	project := &domain.Project{ID: 1, OwnerID: 4}

	assert.True(t, svc.CanEdit(4, project))
	assert.True(t, svc.CanEdit(5, project))
	assert.False(t, svc.CanEdit(0, project))
	assert.False(t, svc.CanEdit(4, nil))
}
