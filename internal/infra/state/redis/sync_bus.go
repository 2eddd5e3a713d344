package redisstate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisSyncBus 通过 Redis Pub/Sub 在服务实例之间转发工程消息。
type RedisSyncBus struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSyncBus 创建 RedisSyncBus 实例
func NewRedisSyncBus(client *redis.Client, keyPrefix string) *RedisSyncBus {
	if client == nil {
		panic("redis client cannot be nil for RedisSyncBus")
	}
	return &RedisSyncBus{client: client, keyPrefix: normalizePrefix(keyPrefix)}
}

func (b *RedisSyncBus) channel(projectID uint) string {
	return projectKey(b.keyPrefix, projectID, "sync")
}

// Publish 向工程频道发布消息
func (b *RedisSyncBus) Publish(ctx context.Context, projectID uint, payload []byte) error {
	channel := b.channel(projectID)
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"channel":      channel,
			"payload_size": len(payload),
			"project_id":   projectID,
		}).WithError(err).Error("Redis Publish failed")
		return fmt.Errorf("redis: failed to publish to channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe 订阅所有工程频道，直到 ctx 取消。
func (b *RedisSyncBus) Subscribe(ctx context.Context, handle func(projectID uint, payload []byte)) error {
	pattern := b.keyPrefix + "project:*:sync"
	pubsub := b.client.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	// 等待订阅确认，确保返回前已开始接收
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis: failed to subscribe to %s: %w", pattern, err)
	}
	logrus.WithField("pattern", pattern).Info("Redis: sync subscription started")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Redis: sync subscription stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis: sync subscription channel closed")
			}
			projectID, err := b.parseChannel(msg.Channel)
			if err != nil {
				logrus.WithError(err).Warn("Redis: ignoring message on unexpected channel")
				continue
			}
			handle(projectID, []byte(msg.Payload))
		}
	}
}

// parseChannel 从 "{prefix}project:{id}:sync" 中解析工程 ID
func (b *RedisSyncBus) parseChannel(channel string) (uint, error) {
	rest := strings.TrimPrefix(channel, b.keyPrefix+"project:")
	rest = strings.TrimSuffix(rest, ":sync")
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sync channel %q: %w", channel, err)
	}
	return uint(id), nil
}
