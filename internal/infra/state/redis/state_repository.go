package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/repository"
)

const (
	historyLimit     = 100
	opCountTTL       = time.Hour
	maxWatchAttempts = 5
)

// RedisStateRepository 是 StateRepository 接口的 Redis 实现
type RedisStateRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStateRepository 创建 RedisStateRepository 实例
func NewRedisStateRepository(client *redis.Client, keyPrefix string) *RedisStateRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisStateRepository")
	}
	return &RedisStateRepository{
		client:    client,
		keyPrefix: normalizePrefix(keyPrefix),
	}
}

// normalizePrefix 返回 key 前缀，默认 "px:" (pixel)
func normalizePrefix(prefix string) string {
	if prefix == "" {
		return "px:"
	}
	return prefix
}

// --- Key Generation Helpers ---
func projectKey(prefix string, projectID uint, suffix string) string {
	return fmt.Sprintf("%sproject:%d:%s", prefix, projectID, suffix)
}

func (r *RedisStateRepository) canvasKey(projectID uint) string {
	return projectKey(r.keyPrefix, projectID, "canvas")
}

func (r *RedisStateRepository) versionKey(projectID uint) string {
	return projectKey(r.keyPrefix, projectID, "version")
}

func (r *RedisStateRepository) opCountKey(projectID uint) string {
	return projectKey(r.keyPrefix, projectID, "op_count")
}

func (r *RedisStateRepository) historyKey(projectID uint) string {
	return projectKey(r.keyPrefix, projectID, "edits")
}

func (r *RedisStateRepository) lastSaveKey(projectID uint) string {
	return projectKey(r.keyPrefix, projectID, "last_save")
}

// GetCanvas 获取实时画布和版本号
func (r *RedisStateRepository) GetCanvas(ctx context.Context, projectID uint) (*domain.Canvas, uint, error) {
	values, err := r.client.MGet(ctx, r.canvasKey(projectID), r.versionKey(projectID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis: failed to get canvas for project %d: %w", projectID, err)
	}
	raw, ok := values[0].(string)
	if !ok {
		return nil, 0, repository.ErrStateNotFound
	}
	canvas, err := domain.DecodeCanvas([]byte(raw))
	if err != nil {
		return nil, 0, fmt.Errorf("redis: corrupted canvas for project %d: %w", projectID, err)
	}
	var version uint
	if s, ok := values[1].(string); ok {
		version, err = parseVersion(s)
		if err != nil {
			return nil, 0, fmt.Errorf("redis: failed to parse version for project %d: %w", projectID, err)
		}
	}
	return canvas, version, nil
}

// SetCanvas 覆盖实时画布和版本号
func (r *RedisStateRepository) SetCanvas(ctx context.Context, projectID uint, canvas *domain.Canvas, version uint) error {
	data, err := canvas.Encode()
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.canvasKey(projectID), data, 0)
	pipe.Set(ctx, r.versionKey(projectID), version, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: failed to set canvas for project %d: %w", projectID, err)
	}
	return nil
}

// ApplyEditAtomically 使用 WATCH/MULTI 应用编辑并递增版本号，冲突时重试。
func (r *RedisStateRepository) ApplyEditAtomically(ctx context.Context, projectID uint, editType string, data domain.EditData) (uint, error) {
	canvasKey := r.canvasKey(projectID)
	versionKey := r.versionKey(projectID)
	var newVersion uint

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, canvasKey).Result()
		if errors.Is(err, redis.Nil) {
			return repository.ErrStateNotFound
		}
		if err != nil {
			return err
		}
		canvas, err := domain.DecodeCanvas([]byte(raw))
		if err != nil {
			return err
		}
		if err := canvas.ApplyEdit(editType, data); err != nil {
			return err
		}
		encoded, err := canvas.Encode()
		if err != nil {
			return err
		}

		var incr *redis.IntCmd
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, canvasKey, encoded, 0)
			incr = pipe.Incr(ctx, versionKey)
			return nil
		})
		if err != nil {
			return err
		}
		newVersion = uint(incr.Val())
		return nil
	}

	for attempt := 0; attempt < maxWatchAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, canvasKey, versionKey)
		if err == nil {
			return newVersion, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			logrus.WithFields(logrus.Fields{
				"project_id": projectID,
				"attempt":    attempt + 1,
			}).Debug("Redis: canvas changed during edit, retrying")
			continue
		}
		if errors.Is(err, domain.ErrInvalidEdit) || errors.Is(err, repository.ErrStateNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("redis: failed to apply edit for project %d: %w", projectID, err)
	}
	return 0, fmt.Errorf("redis: project %d after %d attempts: %w", projectID, maxWatchAttempts, repository.ErrVersionConflict)
}

// GetCurrentVersion 获取工程当前的版本号
func (r *RedisStateRepository) GetCurrentVersion(ctx context.Context, projectID uint) (uint, error) {
	key := r.versionKey(projectID)
	versionStr, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil // Key 不存在视为版本 0
		}
		return 0, fmt.Errorf("redis: failed to get current version for project %d from %s: %w", projectID, key, err)
	}
	version, err := parseVersion(versionStr)
	if err != nil {
		return 0, fmt.Errorf("redis: failed to parse version '%s' for project %d: %w", versionStr, projectID, err)
	}
	return version, nil
}

func parseVersion(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

// IncrementOpCount 原子地增加工程的编辑计数器
func (r *RedisStateRepository) IncrementOpCount(ctx context.Context, projectID uint) error {
	key := r.opCountKey(projectID)
	pipe := r.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, opCountTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: failed to increment op count for project %d on key %s: %w", projectID, key, err)
	}
	return nil
}

// GetOpCount 获取编辑计数
func (r *RedisStateRepository) GetOpCount(ctx context.Context, projectID uint) (int64, error) {
	key := r.opCountKey(projectID)
	count, err := r.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis: failed to get op count for project %d on key %s: %w", projectID, key, err)
	}
	return count, nil
}

// ResetOpCount 重置编辑计数器
func (r *RedisStateRepository) ResetOpCount(ctx context.Context, projectID uint) error {
	key := r.opCountKey(projectID)
	if err := r.client.Set(ctx, key, "0", opCountTTL).Err(); err != nil {
		return fmt.Errorf("redis: failed to reset op count for project %d on key %s: %w", projectID, key, err)
	}
	return nil
}

// GetRecentEdits 获取最近的编辑记录
func (r *RedisStateRepository) GetRecentEdits(ctx context.Context, projectID uint, limit int) ([]domain.Edit, error) {
	if limit <= 0 || limit > historyLimit {
		limit = historyLimit
	}
	key := r.historyKey(projectID)
	items, err := r.client.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to get recent edits for project %d from %s: %w", projectID, key, err)
	}
	edits := make([]domain.Edit, 0, len(items))
	for _, item := range items {
		var edit domain.Edit
		if err := json.Unmarshal([]byte(item), &edit); err != nil {
			logrus.Warnf("redis: failed to unmarshal edit from history for project %d: %v", projectID, err)
			continue
		}
		edits = append(edits, edit)
	}
	return edits, nil
}

// PushEditToHistory 追加编辑记录，只保留最近 historyLimit 条
func (r *RedisStateRepository) PushEditToHistory(ctx context.Context, projectID uint, edit domain.Edit) error {
	key := r.historyKey(projectID)
	payload, err := json.Marshal(edit)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal edit for history (version %d): %w", edit.Version, err)
	}
	pipe := r.client.Pipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -historyLimit, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: failed to push edit to history for project %d on key %s: %w", projectID, key, err)
	}
	return nil
}

// GetLastSaveTime 获取上次自动保存的时间
func (r *RedisStateRepository) GetLastSaveTime(ctx context.Context, projectID uint) (time.Time, error) {
	key := r.lastSaveKey(projectID)
	unix, err := r.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("redis: failed to get last save time for project %d: %w", projectID, err)
	}
	return time.Unix(unix, 0), nil
}

// SetLastSaveTime 记录自动保存的时间
func (r *RedisStateRepository) SetLastSaveTime(ctx context.Context, projectID uint, at time.Time, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.lastSaveKey(projectID), at.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set last save time for project %d: %w", projectID, err)
	}
	return nil
}

// CleanupProjectState 删除工程的实时状态
func (r *RedisStateRepository) CleanupProjectState(ctx context.Context, projectID uint) error {
	keys := []string{
		r.canvasKey(projectID),
		r.versionKey(projectID),
		r.opCountKey(projectID),
		r.historyKey(projectID),
		r.lastSaveKey(projectID),
		projectKey(r.keyPrefix, projectID, "peers"),
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis: failed to cleanup state for project %d: %w", projectID, err)
	}
	logrus.WithField("project_id", projectID).Info("Redis: project state cleaned up")
	return nil
}

// CheckRateLimit 检查给定 key 的请求频率是否超限，并递增计数。
func (r *RedisStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := r.client.Pipeline()
	incrCmd := pipe.Incr(ctx, r.keyPrefix+key)
	pipe.Expire(ctx, r.keyPrefix+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: pipeline failed for rate limit check on key %s: %w", key, err)
	}
	return incrCmd.Val() > int64(limit), nil
}
