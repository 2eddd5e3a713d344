package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"collaborative-pixelart/internal/domain"
)

// MigrateDB 执行所有数据库迁移
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	if err := migrateUsersTable(db); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}

	// projects.data 使用 MEDIUMTEXT，其余字段由 AutoMigrate 根据 tag 生成
	if err := db.AutoMigrate(
		&domain.Project{},
		&domain.Edit{},
		&domain.Snapshot{},
	); err != nil {
		logrus.Errorf("Failed to auto-migrate tables: %v", err)
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}

// migrateUsersTable 首次启动时用原生 SQL 建表，以固定唯一索引的名字和长度
func migrateUsersTable(db *gorm.DB) error {
	if db.Migrator().HasTable(&domain.User{}) {
		if err := db.AutoMigrate(&domain.User{}); err != nil {
			return fmt.Errorf("failed to update users table: %w", err)
		}
		logrus.Info("Users table schema checked/updated successfully")
		return nil
	}

	sql := `
	CREATE TABLE users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(191) NOT NULL,
		password TEXT NOT NULL,
		email VARCHAR(191),
		display_name VARCHAR(191),
		created_at DATETIME(3),
		updated_at DATETIME(3),
		UNIQUE INDEX idx_username (username),
		UNIQUE INDEX idx_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci;
	`
	if err := db.Exec(sql).Error; err != nil {
		logrus.Errorf("Failed to create users table: %v", err)
		return fmt.Errorf("failed to create users table: %w", err)
	}
	logrus.Info("Users table created successfully")
	return nil
}
