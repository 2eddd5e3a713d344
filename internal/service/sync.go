package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/dto"
	"collaborative-pixelart/internal/repository"
)

// SyncService 在多个服务实例之间同步工程消息。
// 每个实例有唯一的 ID，收到自己发出的消息时忽略。
type SyncService struct {
	bus        repository.SyncBus
	instanceID string
}

// NewSyncService 创建 SyncService 实例。instanceID 为空时随机生成。
func NewSyncService(bus repository.SyncBus, instanceID string) *SyncService {
	if bus == nil {
		panic("SyncBus cannot be nil for SyncService")
	}
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	return &SyncService{bus: bus, instanceID: instanceID}
}

// InstanceID 返回当前实例的 ID。
func (s *SyncService) InstanceID() string {
	return s.instanceID
}

// Publish 把一条已经编码好的客户端消息转发给其他实例。
func (s *SyncService) Publish(ctx context.Context, projectID uint, message []byte) error {
	payload, err := json.Marshal(dto.SyncEnvelope{
		Origin:    s.instanceID,
		ProjectID: projectID,
		Message:   message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sync envelope: %w", err)
	}
	return s.bus.Publish(ctx, projectID, payload)
}

// Run 订阅其他实例的消息并交给 deliver，阻塞直到 ctx 取消。
func (s *SyncService) Run(ctx context.Context, deliver func(projectID uint, message []byte)) error {
	logrus.WithField("instance_id", s.instanceID).Info("Sync service started")
	return s.bus.Subscribe(ctx, func(projectID uint, payload []byte) {
		var env dto.SyncEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			logrus.WithField("project_id", projectID).WithError(err).Warn("Sync: dropping malformed envelope")
			return
		}
		if env.Origin == s.instanceID {
			return
		}
		deliver(projectID, env.Message)
	})
}
