package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/repository"
)

// GormProjectRepository 是 ProjectRepository 的 GORM 实现
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository 创建 GormProjectRepository 实例
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	if db == nil {
		panic("database connection cannot be nil for GormProjectRepository")
	}
	return &GormProjectRepository{db: db}
}

// FindByID 根据 ID 查找工程
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint) (*domain.Project, error) {
	var project domain.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProjectNotFound
		}
		return nil, fmt.Errorf("gorm: find project by id %d: %w", id, err)
	}
	return &project, nil
}

// FindByInviteCode 根据邀请码查找工程
func (r *GormProjectRepository) FindByInviteCode(ctx context.Context, code string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProjectNotFound
		}
		return nil, fmt.Errorf("gorm: find project by invite code '%s': %w", code, err)
	}
	return &project, nil
}

// Save 创建或更新工程
func (r *GormProjectRepository) Save(ctx context.Context, project *domain.Project) error {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save project (id: %d, invite_code: %s): %w", project.ID, project.InviteCode, err)
	}
	return nil
}

// UpdateCanvas 只更新画布数据、版本号和活跃时间
func (r *GormProjectRepository) UpdateCanvas(ctx context.Context, projectID uint, data string, version uint) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ?", projectID).
		Updates(map[string]interface{}{
			"data":        data,
			"version":     version,
			"last_active": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("gorm: update canvas of project %d: %w", projectID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrProjectNotFound
	}
	return nil
}

// FindAllActive 批量获取工程
func (r *GormProjectRepository) FindAllActive(ctx context.Context, projectIDs []uint) ([]domain.Project, error) {
	var projects []domain.Project
	if len(projectIDs) == 0 {
		return projects, nil // 避免空的 IN 查询
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", projectIDs).Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("gorm: find active projects by ids: %w", err)
	}
	return projects, nil
}

// IsInviteCodeExists 检查邀请码是否已被使用
func (r *GormProjectRepository) IsInviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).Where("invite_code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count projects by invite code '%s': %w", code, err)
	}
	return count > 0, nil
}
