package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/dto"
	"collaborative-pixelart/internal/repository"
)

// DefaultPresenceTTL 是协作者记录的默认存活时间
const DefaultPresenceTTL = 2 * time.Minute

const (
	connectedOpacity    = 1.0
	disconnectedOpacity = 0.3
	shortIDLen          = 8
)

// PresenceService 维护每个工程的协作者列表。
type PresenceService struct {
	repo repository.PresenceRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewPresenceService 创建 PresenceService 实例。ttl <= 0 时使用 DefaultPresenceTTL。
func NewPresenceService(repo repository.PresenceRepository, ttl time.Duration) *PresenceService {
	if repo == nil {
		panic("PresenceRepository cannot be nil for PresenceService")
	}
	if ttl <= 0 {
		ttl = DefaultPresenceTTL
	}
	return &PresenceService{repo: repo, ttl: ttl, now: time.Now}
}

// Join 为新连接创建协作者。
func (s *PresenceService) Join(ctx context.Context, projectID, userID uint, name string, canEdit bool) (*domain.Peer, error) {
	now := s.now()
	peer := &domain.Peer{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    userID,
		Name:      name,
		CanEdit:   canEdit,
		Connected: true,
		JoinedAt:  now,
		LastSeen:  now,
	}
	if err := s.repo.SavePeer(ctx, *peer, s.ttl); err != nil {
		logrus.WithFields(logrus.Fields{"project_id": projectID, "user_id": userID}).WithError(err).Error("Presence: failed to save peer")
		return nil, ErrInternalServer
	}
	return peer, nil
}

// Leave 把协作者标记为断开。记录保留到 ttl 过期，期间以半透明显示。
func (s *PresenceService) Leave(ctx context.Context, peer *domain.Peer) error {
	peer.Connected = false
	peer.LastSeen = s.now()
	if err := s.repo.SavePeer(ctx, *peer, s.ttl); err != nil {
		logrus.WithFields(logrus.Fields{"project_id": peer.ProjectID, "peer_id": peer.ID}).WithError(err).Warn("Presence: failed to mark peer disconnected")
		return ErrInternalServer
	}
	return nil
}

// Touch 刷新协作者的存活时间。
func (s *PresenceService) Touch(ctx context.Context, peer *domain.Peer) error {
	peer.LastSeen = s.now()
	if err := s.repo.SavePeer(ctx, *peer, s.ttl); err != nil {
		logrus.WithFields(logrus.Fields{"project_id": peer.ProjectID, "peer_id": peer.ID}).WithError(err).Warn("Presence: failed to refresh peer")
		return ErrInternalServer
	}
	return nil
}

// ListPeers 返回工程的协作者视图。projectID 为 0 时返回 nil。
func (s *PresenceService) ListPeers(ctx context.Context, projectID uint, selfPeerID string) ([]dto.PeerView, error) {
	if projectID == 0 {
		return nil, nil
	}
	peers, err := s.Peers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return BuildPeerViews(peers, projectID, selfPeerID), nil
}

// Peers 返回工程的全部协作者记录，供调用方按连接分别构建视图。
func (s *PresenceService) Peers(ctx context.Context, projectID uint) ([]domain.Peer, error) {
	peers, err := s.repo.ListPeers(ctx, projectID)
	if err != nil {
		logrus.WithField("project_id", projectID).WithError(err).Error("Presence: failed to list peers")
		return nil, ErrInternalServer
	}
	return peers, nil
}

// BuildPeerViews 把协作者投影为列表行，只保留属于 projectID 的协作者并保持输入顺序。
func BuildPeerViews(peers []domain.Peer, projectID uint, selfPeerID string) []dto.PeerView {
	if projectID == 0 {
		return nil
	}
	views := make([]dto.PeerView, 0, len(peers))
	for _, p := range peers {
		if p.ProjectID != projectID {
			continue
		}
		isSelf := selfPeerID != "" && p.ID == selfPeerID
		view := dto.PeerView{
			ID:          p.ID,
			ShortID:     shortID(p.ID),
			Name:        p.Name,
			CanEdit:     p.CanEdit,
			IsConnected: p.Connected,
			IsSelf:      isSelf,
			Opacity:     disconnectedOpacity,
		}
		if p.Connected {
			view.Opacity = connectedOpacity
		}
		view.Label = peerLabel(view)
		views = append(views, view)
	}
	return views
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// peerLabel 形如 "+1a2b3c4d (you)"，"+" 表示可编辑
func peerLabel(v dto.PeerView) string {
	label := v.ShortID
	if v.CanEdit {
		label = "+" + label
	}
	if v.IsSelf {
		label += " (you)"
	}
	return label
}
