package domain

import "time"

// Snapshot 是自动保存生成的工程修订版本。
type Snapshot struct {
	ID        uint      `gorm:"primaryKey"`
	ProjectID uint      `gorm:"index;not null"`
	Version   uint      `gorm:"not null"`
	Data      string    `gorm:"type:mediumtext;not null"` // Canvas 的 JSON
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// ParseCanvas 解析快照中的画布。
func (s *Snapshot) ParseCanvas() (*Canvas, error) {
	return DecodeCanvas([]byte(s.Data))
}

// SetCanvas 写入快照中的画布。
func (s *Snapshot) SetCanvas(c *Canvas) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	s.Data = string(data)
	return nil
}
