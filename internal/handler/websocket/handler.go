package websocket

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/hub"
	"collaborative-pixelart/internal/service"
)

// WebSocketHandler 负责处理 WebSocket 升级请求和客户端注册
type WebSocketHandler struct {
	upgrader       websocket.Upgrader
	hub            *hub.Hub
	projectService *service.ProjectService
	authService    *service.AuthService
}

// NewWebSocketHandler 创建 WebSocketHandler 实例。allowedOrigin 为空或 "*" 时允许所有来源。
func NewWebSocketHandler(h *hub.Hub, projectService *service.ProjectService, authService *service.AuthService, allowedOrigin string) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if projectService == nil || authService == nil {
		panic("ProjectService and AuthService cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096, // 初始画布消息较大
		CheckOrigin:     checkOrigin(allowedOrigin),
	}

	return &WebSocketHandler{
		upgrader:       upgrader,
		hub:            h,
		projectService: projectService,
		authService:    authService,
	}
}

func checkOrigin(allowed string) func(r *http.Request) bool {
	if allowed == "" || allowed == "*" {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == allowed
	}
}

// HandleConnection 处理 WebSocket 连接请求
// URL 预期格式: /ws/project/{projectId}
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		logrus.Warn("WS Handler: User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	userID, ok := userIDAny.(uint)
	if !ok {
		logrus.Error("WS Handler: User ID in context is not uint")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	projectIDStr := c.Param("projectId")
	projectIDUint64, err := strconv.ParseUint(projectIDStr, 10, 32)
	if err != nil || projectIDUint64 == 0 {
		logCtx.WithError(err).Warnf("WS Handler: Invalid project ID format: %s", projectIDStr)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}
	projectID := uint(projectIDUint64)
	logCtx = logCtx.WithField("project_id", projectID)

	project, err := h.projectService.FindProjectByID(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			logCtx.WithError(err).Warn("WS Handler: Project not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			logCtx.WithError(err).Error("WS Handler: Error checking project existence")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate project"})
		}
		return
	}

	user, err := h.authService.FindUserByID(c.Request.Context(), userID)
	if err != nil {
		logCtx.WithError(err).Warn("WS Handler: Failed to load user")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	canEdit := h.projectService.CanEdit(userID, project)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已经写入了 HTTP 错误响应
		logCtx.WithError(err).Error("WS Handler: Failed to upgrade connection")
		return
	}
	logCtx.Info("WS Handler: Connection upgraded to WebSocket")

	client := hub.NewClient(h.hub, conn, projectID, userID, user.Name(), canEdit)
	if !h.hub.Register(client) {
		logCtx.Error("WS Handler: Hub message channel full, failed to register client")
		client.CloseConn()
		return
	}
	client.Run()
	logCtx.WithField("can_edit", canEdit).Info("WS Handler: Client registered and pumps started")
}
