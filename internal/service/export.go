package service

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/cssgen"
	"collaborative-pixelart/internal/domain"
)

// CanvasSource 提供工程当前的画布
type CanvasSource interface {
	GetCanvasForClient(ctx context.Context, projectID uint) (*domain.Canvas, uint, error)
}

// ExportService 把工程导出为 CSS、关键帧数据或 PNG 预览。
type ExportService struct {
	canvases CanvasSource
	projects *ProjectService
}

// NewExportService 创建 ExportService 实例。
func NewExportService(canvases CanvasSource, projects *ProjectService) *ExportService {
	if canvases == nil || projects == nil {
		panic("CanvasSource and ProjectService must be non-nil for ExportService")
	}
	return &ExportService{canvases: canvases, projects: projects}
}

// loadCanvas 读取并校验画布
func (s *ExportService) loadCanvas(ctx context.Context, projectID uint) (*domain.Canvas, error) {
	canvas, _, err := s.canvases.GetCanvasForClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := canvas.Validate(); err != nil {
		logrus.WithField("project_id", projectID).WithError(err).Warn("Export: canvas failed validation")
		return nil, fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}
	return canvas, nil
}

func checkFrameIndex(canvas *domain.Canvas, frame int) error {
	if frame < 0 || frame >= len(canvas.Frames) {
		return fmt.Errorf("%w: frame %d out of range (0..%d)", ErrInvalidProject, frame, len(canvas.Frames)-1)
	}
	return nil
}

// Frame 以指定模式渲染一帧。
func (s *ExportService) Frame(ctx context.Context, projectID uint, frame int, mode cssgen.Mode) (cssgen.Rendered, error) {
	canvas, err := s.loadCanvas(ctx, projectID)
	if err != nil {
		return cssgen.Rendered{}, err
	}
	if err := checkFrameIndex(canvas, frame); err != nil {
		return cssgen.Rendered{}, err
	}
	return cssgen.RenderFrame(canvas, frame, mode), nil
}

// Keyframes 返回按帧顺序排列的关键帧。
func (s *ExportService) Keyframes(ctx context.Context, projectID uint) (cssgen.Keyframes, error) {
	canvas, err := s.loadCanvas(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return cssgen.ComposeKeyframes(canvas), nil
}

// AnimationCSS 生成完整的动画样式表。duration 为 nil 时使用工程设置的时长。
func (s *ExportService) AnimationCSS(ctx context.Context, projectID uint, duration *float64) (string, error) {
	project, err := s.projects.FindProjectByID(ctx, projectID)
	if err != nil {
		return "", err
	}
	seconds := project.AnimationDuration()
	if duration != nil {
		if err := validateDuration(*duration, false); err != nil {
			return "", err
		}
		seconds = *duration
	}

	canvas, err := s.loadCanvas(ctx, projectID)
	if err != nil {
		return "", err
	}
	return cssgen.AnimationCSS(canvas, seconds), nil
}

// FramePNG 把一帧渲染为 PNG 写入 w。
func (s *ExportService) FramePNG(ctx context.Context, w io.Writer, projectID uint, frame, scale int) error {
	if scale < 1 || scale > cssgen.MaxPreviewScale {
		return fmt.Errorf("%w: scale must be between 1 and %d", ErrInvalidInput, cssgen.MaxPreviewScale)
	}
	canvas, err := s.loadCanvas(ctx, projectID)
	if err != nil {
		return err
	}
	if err := checkFrameIndex(canvas, frame); err != nil {
		return err
	}
	if err := cssgen.RenderPNG(w, canvas, frame, scale); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}
	return nil
}
