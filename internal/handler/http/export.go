package http

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"collaborative-pixelart/internal/cssgen"
	"collaborative-pixelart/internal/service"
)

// ExportHandler 提供 CSS、关键帧和 PNG 导出
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler 创建 ExportHandler 实例
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// FrameResponse 是单帧导出的响应
type FrameResponse struct {
	Frame  int             `json:"frame"`
	Format cssgen.Mode     `json:"format"`
	Shadow cssgen.Rendered `json:"boxShadow"`
}

// Frame 渲染单帧，format=string|array
func (h *ExportHandler) Frame(c *gin.Context) {
	projectID, ok := projectIDParam(c, "id")
	if !ok {
		return
	}
	frame, ok := intQuery(c, "frame", 0)
	if !ok {
		return
	}
	mode, err := cssgen.ParseMode(c.Query("format"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	rendered, err := h.exportService.Frame(c.Request.Context(), projectID, frame, mode)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, FrameResponse{Frame: frame, Format: rendered.Mode, Shadow: rendered})
}

// Keyframes 返回按顺序排列的关键帧
func (h *ExportHandler) Keyframes(c *gin.Context) {
	projectID, ok := projectIDParam(c, "id")
	if !ok {
		return
	}
	keyframes, err := h.exportService.Keyframes(c.Request.Context(), projectID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"keyframes": keyframes})
}

// Animation 返回完整的动画样式表，duration 查询参数覆盖工程设置
func (h *ExportHandler) Animation(c *gin.Context) {
	projectID, ok := projectIDParam(c, "id")
	if !ok {
		return
	}
	var duration *float64
	if raw := c.Query("duration"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid duration parameter")
			return
		}
		duration = &d
	}

	css, err := h.exportService.AnimationCSS(c.Request.Context(), projectID, duration)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(css))
}

// PNG 返回单帧的 PNG 预览
func (h *ExportHandler) PNG(c *gin.Context) {
	projectID, ok := projectIDParam(c, "id")
	if !ok {
		return
	}
	frame, ok := intQuery(c, "frame", 0)
	if !ok {
		return
	}
	scale, ok := intQuery(c, "scale", 1)
	if !ok {
		return
	}

	// 先写入缓冲区，出错时还能返回 JSON 错误
	var buf bytes.Buffer
	if err := h.exportService.FramePNG(c.Request.Context(), &buf, projectID, frame, scale); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
