package worker

import (
	"context"
	"sync"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// 单个工程保存检查的超时
	autoSaveTimeout = 30 * time.Second
	// 上次保存时间在 Redis 中保留的时长
	lastSaveTTL = 24 * time.Hour
)

// ActiveProjects 提供当前实例上有客户端连接的工程，*hub.Hub 满足此接口
type ActiveProjects interface {
	GetActiveProjectIDs() []uint
}

// AutoSaver 在需要时保存工程，*service.AutoSaveService 满足此接口
type AutoSaver interface {
	CheckAndSave(ctx context.Context, projectID uint, lastSaved time.Time) (time.Time, error)
}

// LastSaveStore 记录每个工程的上次保存时间，多个实例共享
type LastSaveStore interface {
	GetLastSaveTime(ctx context.Context, projectID uint) (time.Time, error)
	SetLastSaveTime(ctx context.Context, projectID uint, at time.Time, ttl time.Duration) error
}

// AutoSaveCheckHandler 处理周期性的自动保存检查任务
type AutoSaveCheckHandler struct {
	projects ActiveProjects
	saver    AutoSaver
	store    LastSaveStore
}

// NewAutoSaveCheckHandler 创建 Handler 实例
func NewAutoSaveCheckHandler(projects ActiveProjects, saver AutoSaver, store LastSaveStore) *AutoSaveCheckHandler {
	if projects == nil || saver == nil || store == nil {
		panic("ActiveProjects, AutoSaver and LastSaveStore must be non-nil for AutoSaveCheckHandler")
	}
	return &AutoSaveCheckHandler{projects: projects, saver: saver, store: store}
}

// ProcessTask 实现 asynq.Handler 接口。单个工程失败只记录日志，不让整个周期任务重试。
func (h *AutoSaveCheckHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogCtx(ctx, t)

	projectIDs := h.projects.GetActiveProjectIDs()
	if len(projectIDs) == 0 {
		logCtx.Debug("No active projects, skipping autosave check")
		return nil
	}
	logCtx.Infof("Checking %d active projects for autosave", len(projectIDs))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)
	for _, projectID := range projectIDs {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			if err := h.checkProject(ctx, id); err != nil {
				logCtx.WithField("project_id", id).WithError(err).Error("AutoSave check failed")
				mu.Lock()
				failures++
				mu.Unlock()
			}
		}(projectID)
	}
	wg.Wait()

	if failures > 0 {
		logCtx.Errorf("AutoSave check completed with %d failed projects", failures)
		return nil
	}
	logCtx.Debug("AutoSave check completed")
	return nil
}

func (h *AutoSaveCheckHandler) checkProject(ctx context.Context, projectID uint) error {
	ctx, cancel := context.WithTimeout(ctx, autoSaveTimeout)
	defer cancel()

	lastSaved, err := h.store.GetLastSaveTime(ctx, projectID)
	if err != nil {
		return err
	}
	savedAt, err := h.saver.CheckAndSave(ctx, projectID, lastSaved)
	if err != nil {
		return err
	}
	if savedAt.Equal(lastSaved) {
		return nil
	}
	return h.store.SetLastSaveTime(ctx, projectID, savedAt, lastSaveTTL)
}
