package service_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collaborative-pixelart/internal/cssgen"
	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/repository/mocks"
	"collaborative-pixelart/internal/service"
)

type staticCanvas struct {
	canvas *domain.Canvas
	err    error
}

func (s staticCanvas) GetCanvasForClient(context.Context, uint) (*domain.Canvas, uint, error) {
	return s.canvas, 1, s.err
}

func twoFrameCanvas() *domain.Canvas {
	c := domain.NewBlankCanvas(2, 1, 8)
	c.Frames[0].Pixels[0] = domain.Px(0)
	c.Frames = append(c.Frames, domain.Frame{
		Pixels:   []*int{nil, domain.Px(1)},
		Interval: domain.NewInterval(100),
	})
	return c
}

func newExportService(t *testing.T, src staticCanvas) (*service.ExportService, *mocks.ProjectRepository) {
	repo := mocks.NewProjectRepository(t)
	return service.NewExportService(src, service.NewProjectService(repo, "")), repo
}

func TestExportService_Frame(t *testing.T) {
	svc, _ := newExportService(t, staticCanvas{canvas: twoFrameCanvas()})
	ctx := context.Background()

	out, err := svc.Frame(ctx, 1, 0, cssgen.ModeString)
	require.NoError(t, err)
	assert.Equal(t, "8px 8px 0 #000000", out.CSS)

	out, err = svc.Frame(ctx, 1, 1, cssgen.ModeArray)
	require.NoError(t, err)
	assert.Equal(t, []cssgen.Shadow{{"16", "8", "0", "#ffffff"}}, out.Shadows)

	_, err = svc.Frame(ctx, 1, 2, cssgen.ModeString)
	assert.True(t, errors.Is(err, service.ErrInvalidProject), "帧下标越界")
}

func TestExportService_RejectsInvalidCanvas(t *testing.T) {
	bad := twoFrameCanvas()
	bad.Frames[1].Interval = "soon"
	svc, _ := newExportService(t, staticCanvas{canvas: bad})

	_, err := svc.Keyframes(context.Background(), 1)
	assert.True(t, errors.Is(err, service.ErrInvalidProject))
}

func TestExportService_PropagatesLoadErrors(t *testing.T) {
	svc, _ := newExportService(t, staticCanvas{err: service.ErrProjectNotFound})

	_, err := svc.Keyframes(context.Background(), 1)
	assert.True(t, errors.Is(err, service.ErrProjectNotFound))
}

func TestExportService_AnimationCSS(t *testing.T) {
	svc, repo := newExportService(t, staticCanvas{canvas: twoFrameCanvas()})
	ctx := context.Background()
	repo.On("FindByID", ctx, uint(1)).Return(&domain.Project{ID: 1, Duration: 2}, nil)

	css, err := svc.AnimationCSS(ctx, 1, nil)
	require.NoError(t, err)
	assert.Contains(t, css, "animation: x 2s infinite;")
	assert.Contains(t, css, "@keyframes x {")

	override := 0.5
	css, err = svc.AnimationCSS(ctx, 1, &override)
	require.NoError(t, err)
	assert.Contains(t, css, "animation: x 0.5s infinite;")

	negative := -1.0
	_, err = svc.AnimationCSS(ctx, 1, &negative)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
}

func TestExportService_FramePNG(t *testing.T) {
	svc, _ := newExportService(t, staticCanvas{canvas: twoFrameCanvas()})
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, svc.FramePNG(ctx, &buf, 1, 1, 3))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	// (columns+1)*cellSize*scale × (rows+1)*cellSize*scale
	assert.Equal(t, 72, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	err = svc.FramePNG(ctx, &buf, 1, 0, 0)
	assert.True(t, errors.Is(err, service.ErrInvalidInput), "scale 不能为 0")
	err = svc.FramePNG(ctx, &buf, 1, 0, cssgen.MaxPreviewScale+1)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
}
