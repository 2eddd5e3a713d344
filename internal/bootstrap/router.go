package bootstrap

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	httpHandler "collaborative-pixelart/internal/handler/http"
	wsHandler "collaborative-pixelart/internal/handler/websocket"
	"collaborative-pixelart/internal/middleware"
)

// Handlers 是路由需要的全部处理器
type Handlers struct {
	Auth      *httpHandler.AuthHandler
	Project   *httpHandler.ProjectHandler
	Export    *httpHandler.ExportHandler
	WebSocket *wsHandler.WebSocketHandler
}

// NewRouter 创建 Gin Engine 并注册中间件和路由
func NewRouter(cfg *Config, log *logrus.Logger, h Handlers, limiter middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.CORSAllowedOrigin))
	if limiter != nil {
		router.Use(middleware.RateLimit(limiter, cfg.RateLimitMax, cfg.RateLimitWindow))
	}

	api := router.Group("/api")
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Auth.Register)
		authRoutes.POST("/login", h.Auth.Login)
	}
	projectRoutes := api.Group("/projects").Use(middleware.Auth(cfg.JWTSecret))
	{
		projectRoutes.POST("", h.Project.CreateProject)
		projectRoutes.POST("/join", h.Project.JoinProject)
		projectRoutes.GET("/:id", h.Project.GetProject)
		projectRoutes.PATCH("/:id", h.Project.UpdateProject)
		projectRoutes.GET("/:id/presence", h.Project.ListPresence)
		projectRoutes.GET("/:id/export/frame", h.Export.Frame)
		projectRoutes.GET("/:id/export/keyframes", h.Export.Keyframes)
		projectRoutes.GET("/:id/export/animation", h.Export.Animation)
		projectRoutes.GET("/:id/export/png", h.Export.PNG)
	}
	wsRoutes := router.Group("/ws").Use(middleware.Auth(cfg.JWTSecret))
	{
		wsRoutes.GET("/project/:projectId", h.WebSocket.HandleConnection)
	}
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	return router
}

// CORSMiddleware 允许指定来源的跨域请求，OPTIONS 预检直接返回
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggerMiddleware 创建一个 Gin 中间件用于记录请求日志
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		switch {
		case errorMessage != "":
			entry.Error(errorMessage)
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
