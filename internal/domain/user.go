// Package domain 定义了像素画协作应用的核心领域模型。
package domain

import "time"

// User 表示应用程序中的用户。
type User struct {
	ID          uint      `gorm:"primaryKey"`
	Username    string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null"`
	Password    string    `gorm:"type:text;not null"` // bcrypt 哈希
	Email       string    `gorm:"type:varchar(191);uniqueIndex:idx_email"`
	DisplayName string    `gorm:"type:varchar(191)"` // 在协作者列表中显示的名字，为空时回退到 Username
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Name 返回在协作者列表中展示的名字。
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
