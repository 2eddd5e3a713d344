package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/repository"
)

// AutoSaveService 负责实时画布的加载和周期性保存。
// 画布优先从 Redis 读取，其次是数据库中的工程，最后是最新修订。
type AutoSaveService struct {
	projectRepo  repository.ProjectRepository
	snapshotRepo repository.SnapshotRepository
	editRepo     repository.EditRepository
	stateRepo    repository.StateRepository
	now          func() time.Time
}

// NewAutoSaveService 创建 AutoSaveService 实例。
func NewAutoSaveService(
	projectRepo repository.ProjectRepository,
	snapshotRepo repository.SnapshotRepository,
	editRepo repository.EditRepository,
	stateRepo repository.StateRepository,
) *AutoSaveService {
	if projectRepo == nil || snapshotRepo == nil || editRepo == nil || stateRepo == nil {
		panic("All repositories must be non-nil for AutoSaveService")
	}
	return &AutoSaveService{
		projectRepo:  projectRepo,
		snapshotRepo: snapshotRepo,
		editRepo:     editRepo,
		stateRepo:    stateRepo,
		now:          time.Now,
	}
}

// GetCanvasForClient 返回工程当前的画布和版本号，并在需要时预热 Redis。
func (s *AutoSaveService) GetCanvasForClient(ctx context.Context, projectID uint) (*domain.Canvas, uint, error) {
	logCtx := logrus.WithFields(logrus.Fields{"project_id": projectID, "operation": "GetCanvasForClient"})

	canvas, version, err := s.stateRepo.GetCanvas(ctx, projectID)
	if err == nil {
		return canvas, version, nil
	}
	if !errors.Is(err, repository.ErrStateNotFound) {
		logCtx.WithError(err).Warn("Failed to read live canvas, falling back to database")
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, 0, ErrProjectNotFound
		}
		logCtx.WithError(err).Error("Failed to load project")
		return nil, 0, ErrInternalServer
	}

	canvas, version = s.persistedCanvas(ctx, project, logCtx)

	if err := s.stateRepo.SetCanvas(ctx, projectID, canvas, version); err != nil {
		logCtx.WithError(err).Warn("Failed to warm live canvas")
	} else {
		logCtx.WithField("version", version).Info("Live canvas warmed from database")
	}
	return canvas, version, nil
}

// persistedCanvas 依次尝试工程数据、最新修订和空白画布
func (s *AutoSaveService) persistedCanvas(ctx context.Context, project *domain.Project, logCtx *logrus.Entry) (*domain.Canvas, uint) {
	canvas, err := project.ParseCanvas()
	if err == nil {
		return canvas, project.Version
	}
	logCtx.WithError(err).Warn("Project canvas unreadable, trying latest snapshot")

	snapshot, err := s.snapshotRepo.GetLatestSnapshot(ctx, project.ID)
	if err == nil {
		if canvas, parseErr := snapshot.ParseCanvas(); parseErr == nil {
			return canvas, snapshot.Version
		}
	} else if !errors.Is(err, repository.ErrSnapshotNotFound) {
		logCtx.WithError(err).Warn("Failed to load latest snapshot")
	}

	logCtx.Info("No usable canvas found, starting from a blank canvas")
	return domain.NewBlankCanvas(domain.DefaultColumns, domain.DefaultRows, domain.DefaultCellSize), project.Version
}

// EnsureLoaded 确保工程的实时画布存在。
func (s *AutoSaveService) EnsureLoaded(ctx context.Context, projectID uint) error {
	_, _, err := s.GetCanvasForClient(ctx, projectID)
	return err
}

// CheckAndSave 在有未保存编辑且达到自适应间隔时保存工程，返回最新的保存时间。
func (s *AutoSaveService) CheckAndSave(ctx context.Context, projectID uint, lastSaved time.Time) (time.Time, error) {
	logCtx := logrus.WithField("project_id", projectID)

	pending, err := s.stateRepo.GetOpCount(ctx, projectID)
	if err != nil {
		logCtx.WithError(err).Error("AutoSave: failed to read op count")
		return lastSaved, ErrInternalServer
	}
	if pending == 0 {
		return lastSaved, nil
	}

	count, err := s.editRepo.GetCountSince(ctx, projectID, lastSaved)
	if err != nil {
		logCtx.WithError(err).Warn("AutoSave: failed to count persisted edits, using live op count")
		count = pending
	}
	if count < pending {
		count = pending // 编辑落库是异步的，数据库计数可能滞后
	}

	interval := calculateAutoSaveInterval(count)
	if !lastSaved.IsZero() && s.now().Sub(lastSaved) < interval {
		logCtx.Debugf("AutoSave condition not met (last: %s, interval: %s, ops: %d)",
			lastSaved.Format(time.RFC3339), interval, count)
		return lastSaved, nil
	}

	savedAt := s.now()
	if err := s.Save(ctx, projectID); err != nil {
		return lastSaved, err
	}
	return savedAt, nil
}

// Save 把实时画布写回工程并追加一条修订。
func (s *AutoSaveService) Save(ctx context.Context, projectID uint) error {
	logCtx := logrus.WithField("project_id", projectID)

	canvas, version, err := s.stateRepo.GetCanvas(ctx, projectID)
	if errors.Is(err, repository.ErrStateNotFound) {
		logCtx.Debug("AutoSave: no live canvas, nothing to save")
		return nil
	}
	if err != nil {
		logCtx.WithError(err).Error("AutoSave: failed to read live canvas")
		return ErrInternalServer
	}

	data, err := canvas.Encode()
	if err != nil {
		logCtx.WithError(err).Error("AutoSave: failed to encode canvas")
		return ErrInternalServer
	}

	if err := s.projectRepo.UpdateCanvas(ctx, projectID, string(data), version); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		logCtx.WithError(err).Error("AutoSave: failed to update project")
		return ErrInternalServer
	}

	snapshot := &domain.Snapshot{ProjectID: projectID, Version: version, Data: string(data)}
	if err := s.snapshotRepo.SaveSnapshot(ctx, snapshot); err != nil {
		// 工程已经保存，修订失败只记录
		logCtx.WithError(err).Warn("AutoSave: failed to save snapshot revision")
	}

	if err := s.stateRepo.ResetOpCount(ctx, projectID); err != nil {
		logCtx.WithError(err).Warn("AutoSave: failed to reset op count")
	}

	logCtx.WithField("version", version).Info("Project auto-saved")
	return nil
}

// calculateAutoSaveInterval 编辑越频繁，保存间隔越短
func calculateAutoSaveInterval(opCount int64) time.Duration {
	switch {
	case opCount > 100:
		return 30 * time.Second
	case opCount > 20:
		return 2 * time.Minute
	default:
		return 10 * time.Minute
	}
}
