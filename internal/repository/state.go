package repository

import (
	"context"
	"time"

	"collaborative-pixelart/internal/domain"
)

// StateRepository 定义了工程实时状态相关的操作，由 Redis 实现。
type StateRepository interface {
	// === Canvas State ===

	// GetCanvas 获取工程当前的实时画布和版本号。
	// 实时状态不存在时返回 ErrStateNotFound。
	GetCanvas(ctx context.Context, projectID uint) (*domain.Canvas, uint, error)

	// SetCanvas 覆盖工程的实时画布和版本号，用于从数据库预热。
	SetCanvas(ctx context.Context, projectID uint, canvas *domain.Canvas, version uint) error

	// ApplyEditAtomically 在乐观事务中把编辑应用到实时画布并递增版本号。
	// 编辑本身无效时返回包装了 domain.ErrInvalidEdit 的错误。
	ApplyEditAtomically(ctx context.Context, projectID uint, editType string, data domain.EditData) (uint, error)

	// GetCurrentVersion 获取工程当前的版本号，不存在时为 0。
	GetCurrentVersion(ctx context.Context, projectID uint) (uint, error)

	// === Counters ===

	// IncrementOpCount 原子地增加工程的编辑计数器。
	IncrementOpCount(ctx context.Context, projectID uint) error

	// GetOpCount 获取自上次保存以来的编辑次数。
	GetOpCount(ctx context.Context, projectID uint) (int64, error)

	// ResetOpCount 重置编辑计数器 (通常在自动保存后调用)。
	ResetOpCount(ctx context.Context, projectID uint) error

	// === Edit History ===

	// GetRecentEdits 获取最近的编辑记录，按时间顺序。
	GetRecentEdits(ctx context.Context, projectID uint, limit int) ([]domain.Edit, error)

	// PushEditToHistory 追加一条编辑记录并保持队列长度。
	PushEditToHistory(ctx context.Context, projectID uint, edit domain.Edit) error

	// === AutoSave Worker State ===

	// GetLastSaveTime 获取上次自动保存的时间，没有记录时返回零值。
	GetLastSaveTime(ctx context.Context, projectID uint) (time.Time, error)

	// SetLastSaveTime 记录自动保存的时间。
	SetLastSaveTime(ctx context.Context, projectID uint, at time.Time, ttl time.Duration) error

	// CleanupProjectState 清理工程相关的实时 key。
	CleanupProjectState(ctx context.Context, projectID uint) error

	// === Rate Limiting ===

	// CheckRateLimit 递增 key 的计数，超过 limit 时返回 true。
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// PresenceRepository 保存每个工程的在线协作者。
type PresenceRepository interface {
	// SavePeer 写入或刷新协作者，ttl 过后自动过期。
	SavePeer(ctx context.Context, peer domain.Peer, ttl time.Duration) error

	// RemovePeer 删除协作者。
	RemovePeer(ctx context.Context, projectID uint, peerID string) error

	// ListPeers 返回工程的协作者，按加入时间排序。已过期的条目会被跳过并清理。
	ListPeers(ctx context.Context, projectID uint) ([]domain.Peer, error)
}

// SyncBus 在多个服务实例之间转发工程消息。
type SyncBus interface {
	// Publish 向工程频道发布一条消息。
	Publish(ctx context.Context, projectID uint, payload []byte) error

	// Subscribe 订阅所有工程频道，阻塞直到 ctx 取消或连接出错。
	Subscribe(ctx context.Context, handle func(projectID uint, payload []byte)) error
}
