package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/repository"
)

// GormSnapshotRepository 是 SnapshotRepository 的 GORM 实现
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository 创建 GormSnapshotRepository 实例
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	if db == nil {
		panic("database connection cannot be nil for GormSnapshotRepository")
	}
	return &GormSnapshotRepository{db: db}
}

// GetLatestSnapshot 按版本号倒序取最新修订
func (r *GormSnapshotRepository) GetLatestSnapshot(ctx context.Context, projectID uint) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("version DESC").
		Order("created_at DESC").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("gorm: failed to get latest snapshot for project %d: %w", projectID, err)
	}
	return &snapshot, nil
}

// SaveSnapshot 插入一条修订记录
func (r *GormSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot *domain.Snapshot) error {
	if err := r.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return fmt.Errorf("gorm: failed to save snapshot (project %d, version %d): %w", snapshot.ProjectID, snapshot.Version, err)
	}
	return nil
}
