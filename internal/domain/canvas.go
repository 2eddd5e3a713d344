package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCanvas 表示画布数据不满足渲染前置条件。
var ErrInvalidCanvas = errors.New("invalid canvas")

// Swatch 是调色板中的一个颜色，像素通过下标引用它。
type Swatch struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Color string `json:"color" yaml:"color"`
}

// Frame 是动画中的一帧。
// Pixels 按行优先顺序存储 (index = y*columns + x)，nil 表示空像素。
type Frame struct {
	Pixels   []*int   `json:"pixels" yaml:"pixels"`
	Interval Interval `json:"interval" yaml:"interval"`
}

// Canvas 是一个工程在某一时刻的像素网格快照。
type Canvas struct {
	Columns  int      `json:"columns" yaml:"columns"`
	Rows     int      `json:"rows" yaml:"rows"`
	CellSize int      `json:"cellSize" yaml:"cellSize"`
	Palette  []Swatch `json:"palette" yaml:"palette"`
	Frames   []Frame  `json:"frames" yaml:"frames"`
}

// 工程没有画布数据时使用的默认尺寸
const (
	DefaultColumns  = 16
	DefaultRows     = 16
	DefaultCellSize = 10
)

// DefaultPalette 是新建工程时使用的调色板。
var DefaultPalette = []Swatch{
	{ID: "0", Color: "#000000"},
	{ID: "1", Color: "#ffffff"},
	{ID: "2", Color: "#ff0000"},
	{ID: "3", Color: "#00ff00"},
	{ID: "4", Color: "#0000ff"},
	{ID: "5", Color: "#ffff00"},
	{ID: "6", Color: "#ff00ff"},
	{ID: "7", Color: "#00ffff"},
}

// NewBlankCanvas 创建一个只有一帧空白帧的画布，帧的 interval 为 100。
func NewBlankCanvas(columns, rows, cellSize int) *Canvas {
	palette := make([]Swatch, len(DefaultPalette))
	copy(palette, DefaultPalette)
	return &Canvas{
		Columns:  columns,
		Rows:     rows,
		CellSize: cellSize,
		Palette:  palette,
		Frames:   []Frame{NewBlankFrame(columns*rows, NewInterval(100))},
	}
}

// NewBlankFrame 创建 size 个空像素的帧。
func NewBlankFrame(size int, interval Interval) Frame {
	return Frame{Pixels: make([]*int, size), Interval: interval}
}

// Px 返回指向 v 的指针，便于构造像素数据。
func Px(v int) *int { return &v }

// Color 返回调色板下标对应的颜色；下标越界时返回空字符串。
func (c *Canvas) Color(index int) string {
	if index < 0 || index >= len(c.Palette) {
		return ""
	}
	return c.Palette[index].Color
}

// PixelCount 返回每帧应有的像素数量。
func (c *Canvas) PixelCount() int {
	return c.Columns * c.Rows
}

// Validate 检查渲染和导出的前置条件：
// 几何尺寸为正、像素长度正确、像素下标有效、interval 可解析。
func (c *Canvas) Validate() error {
	if c.Columns <= 0 {
		return fmt.Errorf("%w: columns must be positive, got %d", ErrInvalidCanvas, c.Columns)
	}
	if c.Rows < 0 {
		return fmt.Errorf("%w: rows must not be negative, got %d", ErrInvalidCanvas, c.Rows)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: cellSize must be positive, got %d", ErrInvalidCanvas, c.CellSize)
	}
	for fi, frame := range c.Frames {
		if len(frame.Pixels) != c.PixelCount() {
			return fmt.Errorf("%w: frame %d has %d pixels, want %d", ErrInvalidCanvas, fi, len(frame.Pixels), c.PixelCount())
		}
		for pi, px := range frame.Pixels {
			if px != nil && (*px < 0 || *px >= len(c.Palette)) {
				return fmt.Errorf("%w: frame %d pixel %d references swatch %d outside palette of %d", ErrInvalidCanvas, fi, pi, *px, len(c.Palette))
			}
		}
		if frame.Interval.IsNaN() {
			return fmt.Errorf("%w: frame %d interval %q is not a number", ErrInvalidCanvas, fi, string(frame.Interval))
		}
	}
	return nil
}

// Clone 返回画布的深拷贝。
func (c *Canvas) Clone() *Canvas {
	out := &Canvas{
		Columns:  c.Columns,
		Rows:     c.Rows,
		CellSize: c.CellSize,
		Palette:  make([]Swatch, len(c.Palette)),
		Frames:   make([]Frame, len(c.Frames)),
	}
	copy(out.Palette, c.Palette)
	for i, f := range c.Frames {
		pixels := make([]*int, len(f.Pixels))
		for j, px := range f.Pixels {
			if px != nil {
				pixels[j] = Px(*px)
			}
		}
		out.Frames[i] = Frame{Pixels: pixels, Interval: f.Interval}
	}
	return out
}

// DecodeCanvas 解析 JSON 格式的画布数据。
func DecodeCanvas(data []byte) (*Canvas, error) {
	var c Canvas
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal canvas: %w", err)
	}
	return &c, nil
}

// Encode 将画布序列化为 JSON。
func (c *Canvas) Encode() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal canvas: %w", err)
	}
	return data, nil
}
