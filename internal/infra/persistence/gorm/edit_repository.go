package gormpersistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"collaborative-pixelart/internal/domain"
)

// editBatchSize 是单条 INSERT 语句包含的最大记录数
const editBatchSize = 200

// GormEditRepository 是 EditRepository 的 GORM 实现
type GormEditRepository struct {
	db *gorm.DB
}

// NewGormEditRepository 创建 GormEditRepository 实例
func NewGormEditRepository(db *gorm.DB) *GormEditRepository {
	if db == nil {
		panic("database connection cannot be nil for GormEditRepository")
	}
	return &GormEditRepository{db: db}
}

// SaveBatch 批量插入编辑记录
func (r *GormEditRepository) SaveBatch(ctx context.Context, edits []domain.Edit) error {
	if len(edits) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&edits, editBatchSize).Error; err != nil {
		return fmt.Errorf("gorm: failed to save edit batch (size %d): %w", len(edits), err)
	}
	return nil
}

// GetCountSince 统计某时间点之后的编辑数量，零值时间表示全部
func (r *GormEditRepository) GetCountSince(ctx context.Context, projectID uint, since time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Edit{}).Where("project_id = ?", projectID)
	if !since.IsZero() {
		query = query.Where("timestamp > ?", since)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("gorm: failed to count edits for project %d since %v: %w", projectID, since, err)
	}
	return count, nil
}
