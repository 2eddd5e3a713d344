package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/repository"
)

// GormUserRepository 是 UserRepository 的 GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository 创建 GormUserRepository 实例
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	if db == nil {
		panic("database connection cannot be nil for GormUserRepository")
	}
	return &GormUserRepository{db: db}
}

// FindByUsername 根据用户名查找用户
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username", r.db.WithContext(ctx).Where("username = ?", username))
}

// FindByID 根据主键查找用户
func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "id", r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *GormUserRepository) findOne(_ context.Context, by string, query *gorm.DB) (*domain.User, error) {
	var user domain.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by %s: %w", by, err)
	}
	return &user, nil
}

// Save 创建或更新用户，唯一约束冲突映射为 ErrDuplicateEntry
func (r *GormUserRepository) Save(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save user (id: %d, username: %s): %w", user.ID, user.Username, err)
	}
	return nil
}
