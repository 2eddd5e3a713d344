package repository

import (
	"context"

	"collaborative-pixelart/internal/domain"
)

// SnapshotRepository 定义了自动保存修订版本在数据库中的操作。
type SnapshotRepository interface {
	// GetLatestSnapshot 获取指定工程的最新修订。没有修订时返回 ErrSnapshotNotFound。
	GetLatestSnapshot(ctx context.Context, projectID uint) (*domain.Snapshot, error)

	// SaveSnapshot 保存修订记录。
	SaveSnapshot(ctx context.Context, snapshot *domain.Snapshot) error
}
