package domain

import (
	"fmt"
	"time"
)

// DefaultAnimationDuration 是新工程导出动画时的默认时长 (秒)。
const DefaultAnimationDuration = 1.0

// Project 表示一个像素画工程。
type Project struct {
	ID         uint      `gorm:"primaryKey"`
	OwnerID    uint      `gorm:"index;not null"`
	Title      string    `gorm:"size:191;not null"`
	InviteCode string    `gorm:"uniqueIndex;size:191;not null"` // 分享链接中使用的邀请码
	Duration   float64   `gorm:"not null;default:1"`            // 动画导出时长 (秒)
	Data       string    `gorm:"type:mediumtext;not null"`      // Canvas 的 JSON
	Version    uint      `gorm:"not null;default:0"`            // 最近一次自动保存时的版本号
	LastActive time.Time `gorm:"index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// ParseCanvas 将 Data 字段解析为 Canvas。
func (p *Project) ParseCanvas() (*Canvas, error) {
	if p.Data == "" {
		return nil, fmt.Errorf("project %d has no canvas data", p.ID)
	}
	return DecodeCanvas([]byte(p.Data))
}

// SetCanvas 序列化 Canvas 并写入 Data 字段。
func (p *Project) SetCanvas(c *Canvas) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	p.Data = string(data)
	return nil
}

// AnimationDuration 返回导出动画使用的时长，未设置时使用默认值。
func (p *Project) AnimationDuration() float64 {
	if p.Duration <= 0 {
		return DefaultAnimationDuration
	}
	return p.Duration
}
