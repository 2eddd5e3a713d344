package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// 编辑操作类型
const (
	EditPaint       = "paint"        // 给像素上色
	EditErase       = "erase"        // 清空像素
	EditInterval    = "interval"     // 修改帧的 interval
	EditSwatch      = "swatch"       // 修改或追加调色板颜色
	EditAddFrame    = "add_frame"    // 在指定位置之后插入空白帧
	EditRemoveFrame = "remove_frame" // 删除帧 (至少保留一帧)
)

// ErrInvalidEdit 表示编辑操作无法应用到画布上。
var ErrInvalidEdit = errors.New("invalid edit")

// Edit 表示用户对工程执行的一次编辑记录。
type Edit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"index;not null" json:"projectId"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	PeerID    string    `gorm:"size:64" json:"peerId"`
	EditType  string    `gorm:"size:50;not null" json:"type"`
	Data      string    `gorm:"type:text;not null" json:"data"` // EditData 的 JSON
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Version   uint      `gorm:"not null" json:"version"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"-"`
}

// EditData 是编辑操作的参数。不同的 EditType 使用不同的字段。
type EditData struct {
	Frame    int      `json:"frame"`
	Cell     int      `json:"cell,omitempty"`
	Swatch   int      `json:"swatch,omitempty"`
	Color    string   `json:"color,omitempty"`
	Interval Interval `json:"interval,omitempty"`
}

// ParseData 将 Data 字段解析为 EditData。
func (e *Edit) ParseData() (EditData, error) {
	var data EditData
	if e.Data == "" || e.Data == "null" {
		return data, fmt.Errorf("edit data is empty for edit type %s", e.EditType)
	}
	if err := json.Unmarshal([]byte(e.Data), &data); err != nil {
		return data, fmt.Errorf("failed to unmarshal edit data: %w", err)
	}
	return data, nil
}

// SetData 序列化 EditData 并写入 Data 字段。
func (e *Edit) SetData(data EditData) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal edit data: %w", err)
	}
	e.Data = string(bytes)
	return nil
}

// ApplyEdit 将一次编辑应用到画布上 (原地修改)。
func (c *Canvas) ApplyEdit(editType string, data EditData) error {
	switch editType {
	case EditPaint, EditErase:
		if err := c.checkFrame(data.Frame); err != nil {
			return err
		}
		if data.Cell < 0 || data.Cell >= len(c.Frames[data.Frame].Pixels) {
			return fmt.Errorf("%w: cell %d out of range", ErrInvalidEdit, data.Cell)
		}
		if editType == EditErase {
			c.Frames[data.Frame].Pixels[data.Cell] = nil
			return nil
		}
		if data.Swatch < 0 || data.Swatch >= len(c.Palette) {
			return fmt.Errorf("%w: swatch %d out of range", ErrInvalidEdit, data.Swatch)
		}
		c.Frames[data.Frame].Pixels[data.Cell] = Px(data.Swatch)
	case EditInterval:
		if err := c.checkFrame(data.Frame); err != nil {
			return err
		}
		if data.Interval.IsNaN() {
			return fmt.Errorf("%w: interval %q is not a number", ErrInvalidEdit, string(data.Interval))
		}
		c.Frames[data.Frame].Interval = data.Interval
	case EditSwatch:
		if data.Color == "" {
			return fmt.Errorf("%w: swatch color is required", ErrInvalidEdit)
		}
		switch {
		case data.Swatch >= 0 && data.Swatch < len(c.Palette):
			c.Palette[data.Swatch].Color = data.Color
		case data.Swatch == len(c.Palette):
			c.Palette = append(c.Palette, Swatch{ID: fmt.Sprint(data.Swatch), Color: data.Color})
		default:
			return fmt.Errorf("%w: swatch %d out of range", ErrInvalidEdit, data.Swatch)
		}
	case EditAddFrame:
		// Frame 为插入位置，等于帧数时追加到末尾
		if data.Frame < 0 || data.Frame > len(c.Frames) {
			return fmt.Errorf("%w: frame position %d out of range", ErrInvalidEdit, data.Frame)
		}
		interval := data.Interval
		if interval == "" {
			interval = NewInterval(100)
		}
		frame := NewBlankFrame(c.PixelCount(), interval)
		c.Frames = append(c.Frames, Frame{})
		copy(c.Frames[data.Frame+1:], c.Frames[data.Frame:])
		c.Frames[data.Frame] = frame
	case EditRemoveFrame:
		if err := c.checkFrame(data.Frame); err != nil {
			return err
		}
		if len(c.Frames) == 1 {
			return fmt.Errorf("%w: cannot remove the last frame", ErrInvalidEdit)
		}
		c.Frames = append(c.Frames[:data.Frame], c.Frames[data.Frame+1:]...)
	default:
		return fmt.Errorf("%w: unsupported edit type %q", ErrInvalidEdit, editType)
	}
	return nil
}

func (c *Canvas) checkFrame(index int) error {
	if index < 0 || index >= len(c.Frames) {
		return fmt.Errorf("%w: frame %d out of range", ErrInvalidEdit, index)
	}
	return nil
}
