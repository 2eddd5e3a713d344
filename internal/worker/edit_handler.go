package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/repository"
	"collaborative-pixelart/internal/tasks"
)

// EditPersistenceHandler 把实时编辑写入数据库
type EditPersistenceHandler struct {
	editRepo repository.EditRepository
}

// NewEditPersistenceHandler 创建 Handler 实例
func NewEditPersistenceHandler(editRepo repository.EditRepository) *EditPersistenceHandler {
	if editRepo == nil {
		panic("EditRepository cannot be nil for EditPersistenceHandler")
	}
	return &EditPersistenceHandler{editRepo: editRepo}
}

// taskLogCtx 返回带任务信息的日志上下文。测试中构造的任务没有 ResultWriter。
func taskLogCtx(ctx context.Context, t *asynq.Task) *logrus.Entry {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	currentRetry, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	return logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     currentRetry,
		"max_retry": maxRetry,
	})
}

// ProcessTask 实现 asynq.Handler 接口
func (h *EditPersistenceHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogCtx(ctx, t)
	logCtx.Debug("Processing edit persistence task...")

	payload, err := tasks.ParseEditPersistencePayload(t)
	if err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	logCtx = logCtx.WithFields(logrus.Fields{"project_id": payload.Edit.ProjectID, "version": payload.Edit.Version})

	if err := h.editRepo.SaveBatch(ctx, []domain.Edit{payload.Edit}); err != nil {
		logCtx.WithError(err).Error("Failed to save edit")
		return fmt.Errorf("failed to save edit %d of project %d: %w", payload.Edit.Version, payload.Edit.ProjectID, err)
	}

	logCtx.Debug("Edit persistence task processed successfully")
	return nil
}
