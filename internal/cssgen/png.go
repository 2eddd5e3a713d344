package cssgen

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	xdraw "golang.org/x/image/draw"

	"collaborative-pixelart/internal/domain"
)

// MaxPreviewScale 限制 PNG 预览的放大倍数。
const MaxPreviewScale = 16

// RenderImage 把一帧栅格化为图像，像素位置与 FrameShadows 相同 (包括原点偏移的一格)。
// 图像尺寸为 (columns+1)*cellSize × (rows+1)*cellSize，未上色的区域透明。
func RenderImage(c *domain.Canvas, frameIndex int) (*image.NRGBA, error) {
	if c.Columns <= 0 || c.CellSize <= 0 {
		return nil, fmt.Errorf("%w: cannot rasterize %dx%d canvas with cell size %d", domain.ErrInvalidCanvas, c.Columns, c.Rows, c.CellSize)
	}
	width := (c.Columns + 1) * c.CellSize
	height := (c.Rows + 1) * c.CellSize
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	var parseErr error
	visitPixels(c, frameIndex, func(x, y int, css string) {
		if parseErr != nil {
			return
		}
		col, err := ParseColor(css)
		if err != nil {
			parseErr = err
			return
		}
		cell := image.Rect(x, y, x+c.CellSize, y+c.CellSize)
		xdraw.Draw(img, cell, &image.Uniform{C: col}, image.Point{}, xdraw.Src)
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return img, nil
}

// RenderPNG 将一帧编码为 PNG 写入 w，scale 为整数放大倍数 (最近邻)。
func RenderPNG(w io.Writer, c *domain.Canvas, frameIndex, scale int) error {
	if scale < 1 || scale > MaxPreviewScale {
		return fmt.Errorf("scale must be between 1 and %d, got %d", MaxPreviewScale, scale)
	}
	img, err := RenderImage(c, frameIndex)
	if err != nil {
		return err
	}
	var out image.Image = img
	if scale > 1 {
		b := img.Bounds()
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		out = dst
	}
	return png.Encode(w, out)
}

// ParseColor 解析 CSS 颜色：#rgb、#rgba、#rrggbb、#rrggbbaa、rgb()、rgba()、
// transparent 以及 CSS 颜色名。
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	}
	if named, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("unsupported color %q", s)
}

func parseHexColor(hex string) (color.NRGBA, error) {
	var v [4]uint8
	v[3] = 255
	switch len(hex) {
	case 3, 4:
		for i := 0; i < len(hex); i++ {
			n, err := strconv.ParseUint(hex[i:i+1], 16, 8)
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("invalid hex color #%s: %w", hex, err)
			}
			v[i] = uint8(n * 17)
		}
	case 6, 8:
		for i := 0; i < len(hex)/2; i++ {
			n, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("invalid hex color #%s: %w", hex, err)
			}
			v[i] = uint8(n)
		}
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color #%s", hex)
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

// parseRGBFunc 解析 rgb(r, g, b) 和 rgba(r, g, b, a)，a 取 0..1。
func parseRGBFunc(s string) (color.NRGBA, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.NRGBA{}, fmt.Errorf("invalid color function %q", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("invalid color function %q", s)
	}
	var v [4]uint8
	v[3] = 255
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == 3 {
			a, err := strconv.ParseFloat(p, 64)
			if err != nil || a < 0 || a > 1 {
				return color.NRGBA{}, fmt.Errorf("invalid alpha in %q", s)
			}
			v[3] = uint8(a*255 + 0.5)
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return color.NRGBA{}, fmt.Errorf("invalid channel in %q", s)
		}
		v[i] = uint8(n)
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}
