package redisstate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/domain"
)

// RedisPresenceRepository 把协作者保存在每个工程一个 Hash 中。
// Hash 的字段不能单独过期，所以每条记录自带过期时间，读取时过滤。
type RedisPresenceRepository struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

type peerEntry struct {
	Peer      domain.Peer `json:"peer"`
	ExpiresAt int64       `json:"expiresAt"`
}

// NewRedisPresenceRepository 创建 RedisPresenceRepository 实例
func NewRedisPresenceRepository(client *redis.Client, keyPrefix string) *RedisPresenceRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisPresenceRepository")
	}
	return &RedisPresenceRepository{
		client:    client,
		keyPrefix: normalizePrefix(keyPrefix),
		now:       time.Now,
	}
}

func (r *RedisPresenceRepository) peersKey(projectID uint) string {
	return projectKey(r.keyPrefix, projectID, "peers")
}

// SavePeer 写入或刷新协作者
func (r *RedisPresenceRepository) SavePeer(ctx context.Context, peer domain.Peer, ttl time.Duration) error {
	key := r.peersKey(peer.ProjectID)
	payload, err := json.Marshal(peerEntry{Peer: peer, ExpiresAt: r.now().Add(ttl).UnixNano()})
	if err != nil {
		return fmt.Errorf("redis: failed to marshal peer %s: %w", peer.ID, err)
	}
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, peer.ID, payload)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: failed to save peer %s for project %d: %w", peer.ID, peer.ProjectID, err)
	}
	return nil
}

// RemovePeer 删除协作者
func (r *RedisPresenceRepository) RemovePeer(ctx context.Context, projectID uint, peerID string) error {
	if err := r.client.HDel(ctx, r.peersKey(projectID), peerID).Err(); err != nil {
		return fmt.Errorf("redis: failed to remove peer %s for project %d: %w", peerID, projectID, err)
	}
	return nil
}

// ListPeers 返回未过期的协作者，按加入时间排序
func (r *RedisPresenceRepository) ListPeers(ctx context.Context, projectID uint) ([]domain.Peer, error) {
	key := r.peersKey(projectID)
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to list peers for project %d: %w", projectID, err)
	}

	now := r.now().UnixNano()
	peers := make([]domain.Peer, 0, len(fields))
	var expired []string
	for id, raw := range fields {
		var entry peerEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			logrus.Warnf("redis: dropping malformed peer entry %s for project %d: %v", id, projectID, err)
			expired = append(expired, id)
			continue
		}
		if entry.ExpiresAt <= now {
			expired = append(expired, id)
			continue
		}
		peers = append(peers, entry.Peer)
	}
	if len(expired) > 0 {
		if err := r.client.HDel(ctx, key, expired...).Err(); err != nil {
			logrus.WithError(err).Warnf("redis: failed to prune expired peers for project %d", projectID)
		}
	}

	sort.SliceStable(peers, func(i, j int) bool {
		if peers[i].JoinedAt.Equal(peers[j].JoinedAt) {
			return peers[i].ID < peers[j].ID
		}
		return peers[i].JoinedAt.Before(peers[j].JoinedAt)
	})
	return peers, nil
}
