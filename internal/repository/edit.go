package repository

import (
	"context"
	"time"

	"collaborative-pixelart/internal/domain"
)

// EditRepository 定义了编辑记录的持久化操作。
type EditRepository interface {
	// SaveBatch 批量保存编辑记录。
	SaveBatch(ctx context.Context, edits []domain.Edit) error

	// GetCountSince 获取指定工程在某个时间点之后的编辑数量。
	GetCountSince(ctx context.Context, projectID uint, since time.Time) (int64, error)
}
