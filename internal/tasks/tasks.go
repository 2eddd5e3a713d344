package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"collaborative-pixelart/internal/domain"
)

// 任务类型
const (
	TypeEditPersistence = "edit:persist"   // 编辑记录落库
	TypeAutoSaveCheck   = "autosave:check" // 周期性检查活跃工程是否需要自动保存
)

// EditPersistencePayload 是编辑落库任务的数据
type EditPersistencePayload struct {
	Edit domain.Edit `json:"edit"`
}

// NewEditPersistenceTask 创建编辑落库任务
func NewEditPersistenceTask(edit domain.Edit) (*asynq.Task, error) {
	payload, err := json.Marshal(EditPersistencePayload{Edit: edit})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal edit persistence payload: %w", err)
	}
	return asynq.NewTask(TypeEditPersistence, payload), nil
}

// ParseEditPersistencePayload 解析编辑落库任务
func ParseEditPersistencePayload(t *asynq.Task) (EditPersistencePayload, error) {
	var p EditPersistencePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal edit persistence payload: %w", err)
	}
	return p, nil
}

// NewAutoSaveCheckTask 创建自动保存检查任务，没有负载
func NewAutoSaveCheckTask() *asynq.Task {
	return asynq.NewTask(TypeAutoSaveCheck, nil)
}
