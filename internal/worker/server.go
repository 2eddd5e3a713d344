package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/tasks"
)

// WorkerServer 封装了 Asynq Worker Server 的启动和关闭逻辑
type WorkerServer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logrus.Entry
}

// NewWorkerServer 创建一个新的 WorkerServer 实例并注册任务处理器
func NewWorkerServer(redisOpt asynq.RedisClientOpt, edits *EditPersistenceHandler, autoSave *AutoSaveCheckHandler, logger *logrus.Logger) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				taskLogCtx(ctx, task).WithError(err).Error("Task failed")
			}),
			Logger:   logEntry,
			LogLevel: asynq.WarnLevel,
		},
	)

	return &WorkerServer{
		server: server,
		mux:    NewServeMux(edits, autoSave),
		log:    logEntry,
	}
}

// NewServeMux 注册全部任务处理器
func NewServeMux(edits *EditPersistenceHandler, autoSave *AutoSaveCheckHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeEditPersistence, edits)
	mux.Handle(tasks.TypeAutoSaveCheck, autoSave)
	return mux
}

// Start 运行 Worker Server，应在单独的 goroutine 中调用
func (ws *WorkerServer) Start() {
	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(ws.mux); err != nil {
		if !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Errorf("Could not run worker server: %v", err)
		} else {
			ws.log.Info("Worker server stopped.")
		}
	}
}

// Shutdown 优雅地关闭 Worker Server
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
