package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/dto"
	"collaborative-pixelart/internal/repository"
)

// CanvasLoader 把工程的画布加载进实时状态
type CanvasLoader interface {
	EnsureLoaded(ctx context.Context, projectID uint) error
}

// CollaborationService 负责处理实时编辑。
type CollaborationService struct {
	stateRepo repository.StateRepository
	loader    CanvasLoader
	now       func() time.Time
}

// NewCollaborationService 创建 CollaborationService 实例。
func NewCollaborationService(stateRepo repository.StateRepository, loader CanvasLoader) *CollaborationService {
	if stateRepo == nil || loader == nil {
		panic("StateRepository and CanvasLoader must be non-nil for CollaborationService")
	}
	return &CollaborationService{
		stateRepo: stateRepo,
		loader:    loader,
		now:       time.Now,
	}
}

// ProcessIncomingEdit 解析客户端的编辑，原子地应用到实时画布，并返回带版本号的编辑记录。
func (s *CollaborationService) ProcessIncomingEdit(ctx context.Context, projectID, userID uint, peerID string, raw []byte) (*domain.Edit, error) {
	logCtx := logrus.WithFields(logrus.Fields{"project_id": projectID, "user_id": userID, "peer_id": peerID})

	var incoming dto.IncomingEdit
	if err := json.Unmarshal(raw, &incoming); err != nil {
		logCtx.WithError(err).Warn("Failed to unmarshal edit from client")
		return nil, ErrInvalidEdit
	}
	logCtx = logCtx.WithField("edit_type", incoming.Type)

	version, err := s.stateRepo.ApplyEditAtomically(ctx, projectID, incoming.Type, incoming.Data)
	if errors.Is(err, repository.ErrStateNotFound) {
		// 实时状态被清理或过期，重新加载后再试一次
		logCtx.Info("Live canvas missing, reloading before applying edit")
		if loadErr := s.loader.EnsureLoaded(ctx, projectID); loadErr != nil {
			logCtx.WithError(loadErr).Error("Failed to reload live canvas")
			return nil, loadErr
		}
		version, err = s.stateRepo.ApplyEditAtomically(ctx, projectID, incoming.Type, incoming.Data)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEdit):
			logCtx.WithError(err).Warn("Rejected invalid edit")
			return nil, ErrInvalidEdit
		case errors.Is(err, repository.ErrVersionConflict):
			logCtx.WithError(err).Warn("Edit lost the optimistic lock race")
			return nil, ErrVersionConflict
		default:
			logCtx.WithError(err).Error("Failed to apply edit to live canvas")
			return nil, ErrInternalServer
		}
	}
	logCtx = logCtx.WithField("version", version)

	edit := &domain.Edit{
		ProjectID: projectID,
		UserID:    userID,
		PeerID:    peerID,
		EditType:  incoming.Type,
		Timestamp: s.now().UTC(),
		Version:   version,
	}
	if err := edit.SetData(incoming.Data); err != nil {
		logCtx.WithError(err).Error("Failed to encode edit data")
		return nil, ErrInternalServer
	}

	// 历史和计数失败不影响已经生效的编辑
	if err := s.stateRepo.PushEditToHistory(ctx, projectID, *edit); err != nil {
		logCtx.WithError(err).Error("Failed to push edit to history")
	}
	if err := s.stateRepo.IncrementOpCount(ctx, projectID); err != nil {
		logCtx.WithError(err).Error("Failed to increment op count")
	}

	logCtx.Debug("Edit applied")
	return edit, nil
}
