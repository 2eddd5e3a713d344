package cssgen

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"collaborative-pixelart/internal/domain"
)

// Mode 决定单帧渲染的输出形式。
type Mode string

const (
	ModeString Mode = "string" // 单个 box-shadow 字符串
	ModeArray  Mode = "array"  // [x, y, z, color] 元组列表
)

// ParseMode 解析输出模式，空字符串视为 ModeString。
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeString:
		return ModeString, nil
	case ModeArray:
		return ModeArray, nil
	default:
		return "", fmt.Errorf("unknown render mode %q", s)
	}
}

// Shadow 是一个可见像素的 [x, y, z, color]，全部为字符串。
type Shadow [4]string

// X 返回横坐标文本。
func (s Shadow) X() string { return s[0] }

// Y 返回纵坐标文本。
func (s Shadow) Y() string { return s[1] }

// Color 返回颜色。
func (s Shadow) Color() string { return s[3] }

// FrameShadows 按像素下标顺序返回帧中每个非空像素的 Shadow。
//
// 坐标整体偏移一个格子：x = (i mod columns)*cellSize + cellSize，
// y = floor(i / columns)*cellSize + cellSize。第一个格子留作定位原点。
// frameIndex 越界或 columns <= 0 时返回 nil。
func FrameShadows(c *domain.Canvas, frameIndex int) []Shadow {
	var out []Shadow
	visitPixels(c, frameIndex, func(x, y int, color string) {
		out = append(out, Shadow{strconv.Itoa(x), strconv.Itoa(y), "0", color})
	})
	return out
}

// FrameCSS 返回帧的 box-shadow 值，形如 "8px 8px 0 #fff, 16px 16px 0 #000"。
// 全空的帧返回空字符串。
func FrameCSS(c *domain.Canvas, frameIndex int) string {
	var sb strings.Builder
	visitPixels(c, frameIndex, func(x, y int, color string) {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(x))
		sb.WriteString("px ")
		sb.WriteString(strconv.Itoa(y))
		sb.WriteString("px 0 ")
		sb.WriteString(color)
	})
	return sb.String()
}

// visitPixels 按行优先顺序遍历帧中的非空像素。
func visitPixels(c *domain.Canvas, frameIndex int, fn func(x, y int, color string)) {
	if c == nil || c.Columns <= 0 || frameIndex < 0 || frameIndex >= len(c.Frames) {
		return
	}
	columns, cellSize := c.Columns, c.CellSize
	for i, px := range c.Frames[frameIndex].Pixels {
		if px == nil {
			continue
		}
		x := (i%columns)*cellSize + cellSize
		y := (i/columns)*cellSize + cellSize
		fn(x, y, c.Color(*px))
	}
}

// Rendered 是 RenderFrame 的结果。ModeString 时 CSS 有效，ModeArray 时 Shadows 有效。
type Rendered struct {
	Mode    Mode
	CSS     string
	Shadows []Shadow
}

// RenderFrame 以指定模式渲染一帧，未知模式按 ModeString 处理。
func RenderFrame(c *domain.Canvas, frameIndex int, mode Mode) Rendered {
	if mode == ModeArray {
		shadows := FrameShadows(c, frameIndex)
		if shadows == nil {
			shadows = []Shadow{}
		}
		return Rendered{Mode: ModeArray, Shadows: shadows}
	}
	return Rendered{Mode: ModeString, CSS: FrameCSS(c, frameIndex)}
}

// MarshalJSON 输出字符串或元组数组。
func (r Rendered) MarshalJSON() ([]byte, error) {
	if r.Mode == ModeArray {
		return json.Marshal(r.Shadows)
	}
	return json.Marshal(r.CSS)
}
