package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/dto"
	"collaborative-pixelart/internal/service"
)

// ProjectHandler 封装了工程管理和协作者列表的 HTTP 处理逻辑
type ProjectHandler struct {
	projectService  *service.ProjectService
	presenceService *service.PresenceService
}

// NewProjectHandler 创建 ProjectHandler 实例
func NewProjectHandler(projectService *service.ProjectService, presenceService *service.PresenceService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, presenceService: presenceService}
}

func (h *ProjectHandler) toResponse(userID uint, p *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:         p.ID,
		OwnerID:    p.OwnerID,
		Title:      p.Title,
		InviteCode: p.InviteCode,
		ShareLink:  h.projectService.ShareLink(p),
		Duration:   p.AnimationDuration(),
		CanEdit:    h.projectService.CanEdit(userID, p),
	}
}

// CreateProject 处理创建新工程的请求
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.CreateProject: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), userID, service.CreateProjectParams{
		Title:    req.Title,
		Columns:  req.Columns,
		Rows:     req.Rows,
		CellSize: req.CellSize,
		Duration: req.Duration,
	})
	if err != nil {
		logCtx.WithError(err).Warn("Handler.CreateProject: Failed to create project")
		HandleServiceError(c, err)
		return
	}

	logCtx.WithFields(logrus.Fields{"project_id": project.ID, "invite_code": project.InviteCode}).Info("Handler.CreateProject: Project created successfully")
	SuccessResponse(c, http.StatusCreated, h.toResponse(userID, project))
}

// JoinProject 处理通过邀请码加入工程的请求
func (h *ProjectHandler) JoinProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	var req dto.JoinProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.JoinProject: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: inviteCode is required")
		return
	}

	project, err := h.projectService.JoinProject(c.Request.Context(), userID, req.InviteCode)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.JoinProject: Failed to join project")
		HandleServiceError(c, err)
		return
	}

	logCtx.WithField("project_id", project.ID).Info("Handler.JoinProject: User joined project successfully")
	SuccessResponse(c, http.StatusOK, h.toResponse(userID, project))
}

// GetProject 返回工程信息
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.FindProjectByID(c.Request.Context(), projectID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, h.toResponse(userID, project))
}

// UpdateProject 修改工程标题或动画时长
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}

	project, err := h.projectService.UpdateSettings(c.Request.Context(), userID, projectID, service.ProjectSettings{
		Title:    req.Title,
		Duration: req.Duration,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, h.toResponse(userID, project))
}

// ListPresence 返回工程的协作者列表，peer 查询参数用于标记调用者自己
func (h *ProjectHandler) ListPresence(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	projectID, ok := projectIDParam(c, "id")
	if !ok {
		return
	}

	views, err := h.presenceService.ListPeers(c.Request.Context(), projectID, c.Query("peer"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, dto.PresenceMessage{Type: dto.MessagePresence, Peers: views})
}
