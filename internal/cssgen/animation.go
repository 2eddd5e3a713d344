package cssgen

import (
	"strconv"
	"strings"

	"collaborative-pixelart/internal/domain"
)

// rangeStep 是相邻两个关键帧区间之间的间隔 (百分比)。
const rangeStep = 0.01

// Keyframe 是 @keyframes 中的一条规则。
type Keyframe struct {
	Range     string `json:"range"`     // 例如 "25.01%, 50%"
	BoxShadow string `json:"boxShadow"` // box-shadow 的值以及尺寸声明
}

// Keyframes 按帧顺序排列，Range 互不相同。
// CSS 关键帧规则的顺序有意义，所以这里用切片而不是 map。
type Keyframes []Keyframe

// Lookup 返回区间 key 对应的规则。
func (k Keyframes) Lookup(rangeKey string) (Keyframe, bool) {
	for _, kf := range k {
		if kf.Range == rangeKey {
			return kf, true
		}
	}
	return Keyframe{}, false
}

// Ranges 按顺序返回全部区间 key。
func (k Keyframes) Ranges() []string {
	out := make([]string, len(k))
	for i, kf := range k {
		out[i] = kf.Range
	}
	return out
}

// BuildIntervals 返回 [0, interval(frame0), interval(frame1), ...]。
// 每一帧的 interval 已经是累计百分比断点；无法解析的 interval 以 NaN 保留，
// 也不检查最后一个值是否为 100。
func BuildIntervals(frames []domain.Frame) []float64 {
	out := make([]float64, 0, len(frames)+1)
	out = append(out, 0)
	for _, f := range frames {
		out = append(out, f.Interval.Float())
	}
	return out
}

// ComposeKeyframes 为工程的每一帧生成一条关键帧规则。
// 第 0 帧的区间从 0 开始，其余帧从上一断点 + 0.01 开始，到本帧断点结束。
// 区间重复时保留第一次出现的位置，内容取最后一帧。
func ComposeKeyframes(c *domain.Canvas) Keyframes {
	intervals := BuildIntervals(c.Frames)
	cellSize := strconv.Itoa(c.CellSize)

	out := make(Keyframes, 0, len(c.Frames))
	seen := make(map[string]int, len(c.Frames))
	for index := range c.Frames {
		start := 0.0
		if index != 0 {
			start = intervals[index] + rangeStep
		}
		end := intervals[index+1]

		key := FormatNumber(start) + "%, " + FormatNumber(end) + "%"
		shadow := FrameCSS(c, index) + ";height: " + cellSize + "px; width: " + cellSize + "px;"
		if at, ok := seen[key]; ok {
			out[at].BoxShadow = shadow
			continue
		}
		seen[key] = len(out)
		out = append(out, Keyframe{Range: key, BoxShadow: shadow})
	}
	return out
}

// EmitAnimation 生成完整的动画 CSS：.pixel-animation 类和 @keyframes x 规则。
// 关键帧按传入顺序输出，颜色等值不做任何转义。
func EmitAnimation(keyframes Keyframes, durationSeconds float64) string {
	d := FormatNumber(durationSeconds)

	var sb strings.Builder
	sb.WriteString(".pixel-animation {\n  position: absolute;\n  ")
	for _, prefix := range []string{"", "-webkit-", "-moz-", "-o-"} {
		sb.WriteString(prefix)
		sb.WriteString("animation: x ")
		sb.WriteString(d)
		sb.WriteString("s infinite;")
		if prefix == "-o-" {
			sb.WriteString("\n}\n\n")
		} else {
			sb.WriteString("\n  ")
		}
	}

	sb.WriteString("@keyframes x {\n")
	for _, kf := range keyframes {
		sb.WriteString(kf.Range)
		sb.WriteString("{\n  box-shadow: ")
		sb.WriteString(kf.BoxShadow)
		sb.WriteString("\n  }\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// AnimationCSS 是 ComposeKeyframes 与 EmitAnimation 的组合。
func AnimationCSS(c *domain.Canvas, durationSeconds float64) string {
	return EmitAnimation(ComposeKeyframes(c), durationSeconds)
}
