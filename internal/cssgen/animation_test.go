package cssgen

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collaborative-pixelart/internal/domain"
)

// fourFrames 构造一个 1x1、四帧、断点为 25/50/75/100 的动画。
func fourFrames() *domain.Canvas {
	c := &domain.Canvas{
		Columns:  1,
		Rows:     1,
		CellSize: 5,
		Palette:  []domain.Swatch{{Color: "#111"}, {Color: "#222"}},
	}
	for i, interval := range []domain.Interval{"25", "50", "75", "100"} {
		c.Frames = append(c.Frames, domain.Frame{Pixels: []*int{domain.Px(i % 2)}, Interval: interval})
	}
	return c
}

func TestBuildIntervals(t *testing.T) {
	intervals := BuildIntervals(fourFrames().Frames)
	assert.Equal(t, []float64{0, 25, 50, 75, 100}, intervals)
}

func TestBuildIntervals_EmptyAndNaN(t *testing.T) {
	assert.Equal(t, []float64{0}, BuildIntervals(nil))

	intervals := BuildIntervals([]domain.Frame{{Interval: "abc"}, {Interval: " 12.5px"}})
	require.Len(t, intervals, 3)
	assert.Equal(t, 0.0, intervals[0])
	assert.True(t, math.IsNaN(intervals[1]), "无法解析的 interval 应保留为 NaN")
	assert.Equal(t, 12.5, intervals[2])
}

func TestComposeKeyframes_FourFrames(t *testing.T) {
	c := fourFrames()
	keyframes := ComposeKeyframes(c)

	assert.Equal(t, []string{"0%, 25%", "25.01%, 50%", "50.01%, 75%", "75.01%, 100%"}, keyframes.Ranges())

	kf, ok := keyframes.Lookup("25.01%, 50%")
	require.True(t, ok)
	assert.Equal(t, "5px 5px 0 #222;height: 5px; width: 5px;", kf.BoxShadow)

	_, ok = keyframes.Lookup("0%, 100%")
	assert.False(t, ok)
}

func TestComposeKeyframes_SingleFrame(t *testing.T) {
	c := twoByTwo()
	keyframes := ComposeKeyframes(c)

	require.Len(t, keyframes, 1)
	assert.Equal(t, "0%, 100%", keyframes[0].Range)
	assert.Equal(t, "8px 8px 0 #fff, 16px 16px 0 #000;height: 8px; width: 8px;", keyframes[0].BoxShadow)

	c.Frames[0].Interval = "60"
	assert.Equal(t, "0%, 60%", ComposeKeyframes(c)[0].Range, "结束值取帧自身声明的 interval")
}

func TestComposeKeyframes_NaNIsRenderedAsText(t *testing.T) {
	c := fourFrames()
	c.Frames[1].Interval = "soon"

	ranges := ComposeKeyframes(c).Ranges()
	assert.Equal(t, "25.01%, NaN%", ranges[1])
	assert.Equal(t, "NaN%, 75%", ranges[2])
}

func TestComposeKeyframes_RepeatedRangeKeepsFirstPositionAndLastFrame(t *testing.T) {
	c := &domain.Canvas{
		Columns:  1,
		Rows:     1,
		CellSize: 1,
		Palette:  []domain.Swatch{{Color: "a"}, {Color: "b"}, {Color: "c"}},
	}
	for i := 0; i < 3; i++ {
		c.Frames = append(c.Frames, domain.Frame{Pixels: []*int{domain.Px(i)}, Interval: "50"})
	}

	keyframes := ComposeKeyframes(c)
	assert.Equal(t, []string{"0%, 50%", "50.01%, 50%"}, keyframes.Ranges())

	kf, ok := keyframes.Lookup("50.01%, 50%")
	require.True(t, ok)
	assert.Equal(t, "1px 1px 0 c;height: 1px; width: 1px;", kf.BoxShadow, "重复的区间应取最后一帧")

	out := AnimationCSS(c, 1)
	assert.Equal(t, 2, strings.Count(out, "box-shadow:"))
	assert.NotContains(t, out, "0 b;")
}

func TestComposeKeyframes_FractionalBreakpoints(t *testing.T) {
	c := fourFrames()
	c.Frames[0].Interval = "2.5"
	c.Frames[1].Interval = "67"
	c.Frames[2].Interval = "90.3"

	assert.Equal(t, []string{"0%, 2.5%", "2.51%, 67%", "67.01%, 90.3%", "90.31%, 100%"}, ComposeKeyframes(c).Ranges())
}

func TestEmitAnimation_Layout(t *testing.T) {
	keyframes := Keyframes{
		{Range: "0%, 50%", BoxShadow: "1px 1px 0 red;height: 1px; width: 1px;"},
		{Range: "50.01%, 100%", BoxShadow: ";height: 1px; width: 1px;"},
	}

	want := ".pixel-animation {\n" +
		"  position: absolute;\n" +
		"  animation: x 1.5s infinite;\n" +
		"  -webkit-animation: x 1.5s infinite;\n" +
		"  -moz-animation: x 1.5s infinite;\n" +
		"  -o-animation: x 1.5s infinite;\n" +
		"}\n\n" +
		"@keyframes x {\n" +
		"0%, 50%{\n  box-shadow: 1px 1px 0 red;height: 1px; width: 1px;\n  }\n" +
		"50.01%, 100%{\n  box-shadow: ;height: 1px; width: 1px;\n  }\n" +
		"}"
	assert.Equal(t, want, EmitAnimation(keyframes, 1.5))
}

func TestEmitAnimation_EmptyKeyframes(t *testing.T) {
	out := EmitAnimation(nil, 2)

	assert.Equal(t, 1, strings.Count(out, ".pixel-animation {"))
	assert.Equal(t, 1, strings.Count(out, "@keyframes x {"))
	assert.True(t, strings.HasSuffix(out, "@keyframes x {\n}"), "空关键帧应得到空的 keyframes 体")
}

func TestEmitAnimation_PreservesOrder(t *testing.T) {
	// 故意使用字典序颠倒的 key，输出必须保持传入顺序
	keyframes := Keyframes{
		{Range: "0%, 9%", BoxShadow: "a"},
		{Range: "9.01%, 10%", BoxShadow: "b"},
		{Range: "10.01%, 100%", BoxShadow: "c"},
	}
	out := EmitAnimation(keyframes, 1)

	i0 := strings.Index(out, "0%, 9%{")
	i1 := strings.Index(out, "9.01%, 10%{")
	i2 := strings.Index(out, "10.01%, 100%{")
	assert.True(t, i0 < i1 && i1 < i2)
}

func TestAnimationCSS_Idempotent(t *testing.T) {
	c := fourFrames()
	first := AnimationCSS(c, 1)
	second := AnimationCSS(c, 1)

	assert.Equal(t, first, second)
	assert.Equal(t, 4, strings.Count(first, "box-shadow:"))
}
