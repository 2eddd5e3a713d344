package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "collaborative-pixelart/internal/handler/http"
	wsHandler "collaborative-pixelart/internal/handler/websocket"
	"collaborative-pixelart/internal/hub"
	gormpersistence "collaborative-pixelart/internal/infra/persistence/gorm"
	"collaborative-pixelart/internal/infra/setup"
	redisstate "collaborative-pixelart/internal/infra/state/redis"
	"collaborative-pixelart/internal/service"
	"collaborative-pixelart/internal/tasks"
	"collaborative-pixelart/internal/worker"
)

// App 包含应用的所有组件和配置
type App struct {
	Config         *Config
	Log            *logrus.Logger
	DB             *gorm.DB
	RedisClient    *redis.Client
	AsynqClient    *asynq.Client
	AsynqServer    *worker.WorkerServer
	Scheduler      *asynq.Scheduler
	Hub            *hub.Hub
	Sync           *service.SyncService
	HttpServer     *http.Server
	redisClientOpt asynq.RedisClientOpt

	cancel context.CancelFunc // 停止 Hub 和跨实例订阅
}

// NewLogger 按环境创建 logger：生产环境 JSON，其他环境彩色文本
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel) // LoadConfig 已校验
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	// 各层直接使用 logrus 包级函数，保持同样的格式和级别
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(level)
	return log
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	log := NewLogger(cfg)
	log.Infof("Logger initialized (Level: %s, Env: %s)", log.GetLevel(), cfg.AppEnv)

	// 基础设施
	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database initialized and migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	log.Info("Redis client initialized")

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)

	// Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	projectRepo := gormpersistence.NewGormProjectRepository(db)
	editRepo := gormpersistence.NewGormEditRepository(db)
	snapshotRepo := gormpersistence.NewGormSnapshotRepository(db)
	stateRepo := redisstate.NewRedisStateRepository(redisClient, cfg.KeyPrefix)
	presenceRepo := redisstate.NewRedisPresenceRepository(redisClient, cfg.KeyPrefix)
	syncBus := redisstate.NewRedisSyncBus(redisClient, cfg.KeyPrefix)
	log.Info("Repositories initialized")

	// Services
	authService, err := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	projectService := service.NewProjectService(projectRepo, cfg.ShareBaseURL)
	autoSaveService := service.NewAutoSaveService(projectRepo, snapshotRepo, editRepo, stateRepo)
	collabService := service.NewCollaborationService(stateRepo, autoSaveService)
	presenceService := service.NewPresenceService(presenceRepo, cfg.PresenceTTL)
	syncService := service.NewSyncService(syncBus, cfg.InstanceID)
	exportService := service.NewExportService(autoSaveService, projectService)
	log.WithField("instance_id", syncService.InstanceID()).Info("Services initialized")

	hubInstance := hub.NewHub(collabService, autoSaveService, presenceService, syncService, asynqClient)

	// Worker
	workerServer := worker.NewWorkerServer(
		redisClientOpt,
		worker.NewEditPersistenceHandler(editRepo),
		worker.NewAutoSaveCheckHandler(hubInstance, autoSaveService, stateRepo),
		log,
	)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := NewRouter(cfg, log, Handlers{
		Auth:      httpHandler.NewAuthHandler(authService),
		Project:   httpHandler.NewProjectHandler(projectService, presenceService),
		Export:    httpHandler.NewExportHandler(exportService),
		WebSocket: wsHandler.NewWebSocketHandler(hubInstance, projectService, authService, cfg.CORSAllowedOrigin),
	}, stateRepo)
	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("Router setup complete")

	return &App{
		Config:         cfg,
		Log:            log,
		DB:             db,
		RedisClient:    redisClient,
		AsynqClient:    asynqClient,
		AsynqServer:    workerServer,
		Hub:            hubInstance,
		Sync:           syncService,
		HttpServer:     httpServer,
		redisClientOpt: redisClientOpt,
	}, nil
}

// Start 启动应用的所有后台 Goroutine 和 HTTP 服务器
func (a *App) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go a.Hub.Run(ctx)
	a.Log.Info("Hub routine started")

	go func() {
		if err := a.Sync.Run(ctx, a.Hub.DeliverRemote); err != nil && !errors.Is(err, context.Canceled) {
			a.Log.WithError(err).Error("Sync subscription stopped")
		}
	}()
	a.Log.Info("Sync routine started")

	go a.AsynqServer.Start()
	a.registerPeriodicTasks()

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

func (a *App) registerPeriodicTasks() {
	a.Scheduler = asynq.NewScheduler(a.redisClientOpt, &asynq.SchedulerOpts{
		Logger:   a.Log.WithField("component", "scheduler"),
		LogLevel: asynq.WarnLevel,
	})

	schedule := a.Config.AutoSaveSchedule
	entryID, err := a.Scheduler.Register(schedule, tasks.NewAutoSaveCheckTask(), asynq.Queue("default"))
	if err != nil {
		a.Log.Errorf("Could not register periodic autosave check task: %v", err)
		return
	}
	a.Log.Infof("Periodic autosave check registered with schedule '%s' (EntryID: %s)", schedule, entryID)

	go func() {
		a.Log.Info("Asynq scheduler starting...")
		if err := a.Scheduler.Run(); err != nil {
			a.Log.Errorf("Asynq scheduler Run() failed: %v", err)
		}
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 先停止接收新连接
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	// 停止 Hub 和跨实例订阅
	if a.cancel != nil {
		a.cancel()
	}

	if a.Scheduler != nil {
		a.Scheduler.Shutdown()
		a.Log.Info("Asynq scheduler stopped.")
	}
	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}

	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Log.Errorf("Error closing database connection: %v", err)
			}
		}
	}

	a.Log.Info("Application shutdown complete.")
}
