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

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) EnsureLoaded(ctx context.Context, projectID uint) error {
	return m.Called(ctx, projectID).Error(0)
}

func TestCollaborationService_ProcessIncomingEdit_Success(t *testing.T) {
	state := mocks.NewStateRepository(t)
	loader := new(mockLoader)
	svc := service.NewCollaborationService(state, loader)
	ctx := context.Background()

	data := domain.EditData{Frame: 0, Cell: 2, Swatch: 1}
	state.On("ApplyEditAtomically", ctx, uint(4), domain.EditPaint, data).Return(uint(8), nil).Once()
	state.On("PushEditToHistory", ctx, uint(4), mock.MatchedBy(func(e domain.Edit) bool {
		return e.Version == 8 && e.PeerID == "peer-1"
	})).Return(nil).Once()
	state.On("IncrementOpCount", ctx, uint(4)).Return(nil).Once()

	edit, err := svc.ProcessIncomingEdit(ctx, 4, 2, "peer-1", []byte(`{"type":"paint","data":{"frame":0,"cell":2,"swatch":1}}`))
	require.NoError(t, err)

	assert.Equal(t, uint(8), edit.Version)
	assert.Equal(t, uint(2), edit.UserID)
	assert.Equal(t, domain.EditPaint, edit.EditType)
	parsed, err := edit.ParseData()
	require.NoError(t, err)
	assert.Equal(t, data, parsed)
	loader.AssertNotCalled(t, "EnsureLoaded", mock.Anything, mock.Anything)
}

func TestCollaborationService_ProcessIncomingEdit_ReloadsMissingState(t *testing.T) {
	state := mocks.NewStateRepository(t)
	loader := new(mockLoader)
	svc := service.NewCollaborationService(state, loader)
	ctx := context.Background()

	state.On("ApplyEditAtomically", ctx, uint(4), domain.EditErase, mock.Anything).Return(uint(0), repository.ErrStateNotFound).Once()
	loader.On("EnsureLoaded", ctx, uint(4)).Return(nil).Once()
	state.On("ApplyEditAtomically", ctx, uint(4), domain.EditErase, mock.Anything).Return(uint(1), nil).Once()
	// 历史和计数失败只记录日志
	state.On("PushEditToHistory", ctx, uint(4), mock.Anything).Return(errors.New("redis down")).Once()
	state.On("IncrementOpCount", ctx, uint(4)).Return(errors.New("redis down")).Once()

	edit, err := svc.ProcessIncomingEdit(ctx, 4, 2, "p", []byte(`{"type":"erase","data":{"cell":1}}`))
	require.NoError(t, err)
	assert.Equal(t, uint(1), edit.Version)
	loader.AssertExpectations(t)
}

func TestCollaborationService_ProcessIncomingEdit_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed json", func(t *testing.T) {
		svc := service.NewCollaborationService(mocks.NewStateRepository(t), new(mockLoader))
		_, err := svc.ProcessIncomingEdit(ctx, 1, 1, "p", []byte(`{"type":`))
		assert.True(t, errors.Is(err, service.ErrInvalidEdit))
	})

	t.Run("rejected by canvas", func(t *testing.T) {
		state := mocks.NewStateRepository(t)
		svc := service.NewCollaborationService(state, new(mockLoader))
		state.On("ApplyEditAtomically", ctx, uint(1), "paint", mock.Anything).
			Return(uint(0), domain.ErrInvalidEdit).Once()

		_, err := svc.ProcessIncomingEdit(ctx, 1, 1, "p", []byte(`{"type":"paint","data":{"cell":999}}`))
		assert.True(t, errors.Is(err, service.ErrInvalidEdit))
	})

	t.Run("version conflict", func(t *testing.T) {
		state := mocks.NewStateRepository(t)
		svc := service.NewCollaborationService(state, new(mockLoader))
		state.On("ApplyEditAtomically", ctx, uint(1), "paint", mock.Anything).
			Return(uint(0), repository.ErrVersionConflict).Once()

		_, err := svc.ProcessIncomingEdit(ctx, 1, 1, "p", []byte(`{"type":"paint","data":{}}`))
		assert.True(t, errors.Is(err, service.ErrVersionConflict))
	})

	t.Run("reload fails", func(t *testing.T) {
		state := mocks.NewStateRepository(t)
		loader := new(mockLoader)
		svc := service.NewCollaborationService(state, loader)
		state.On("ApplyEditAtomically", ctx, uint(1), "paint", mock.Anything).
			Return(uint(0), repository.ErrStateNotFound).Once()
		loader.On("EnsureLoaded", ctx, uint(1)).Return(service.ErrProjectNotFound).Once()

		_, err := svc.ProcessIncomingEdit(ctx, 1, 1, "p", []byte(`{"type":"paint","data":{}}`))
		assert.True(t, errors.Is(err, service.ErrProjectNotFound))
	})
}
