package repository

import (
	"context"

	"collaborative-pixelart/internal/domain"
)

// ProjectRepository 定义了工程数据的存储和检索操作。
type ProjectRepository interface {
	// FindByID 根据工程 ID 查找工程。不存在时返回 ErrProjectNotFound。
	FindByID(ctx context.Context, id uint) (*domain.Project, error)

	// FindByInviteCode 根据邀请码查找工程。不存在时返回 ErrProjectNotFound。
	FindByInviteCode(ctx context.Context, code string) (*domain.Project, error)

	// Save 保存工程。ID 为 0 时创建，否则更新全部字段。
	Save(ctx context.Context, project *domain.Project) error

	// UpdateCanvas 只更新工程的画布数据、版本号和活跃时间，用于自动保存。
	UpdateCanvas(ctx context.Context, projectID uint, data string, version uint) error

	// FindAllActive 根据一组工程 ID 查询工程列表，用于自动保存任务。
	FindAllActive(ctx context.Context, projectIDs []uint) ([]domain.Project, error)

	// IsInviteCodeExists 检查邀请码是否已存在。
	IsInviteCodeExists(ctx context.Context, code string) (bool, error)
}
