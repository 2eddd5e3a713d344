package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/dto"
	"collaborative-pixelart/internal/service"
	"collaborative-pixelart/internal/tasks"
)

// 包级别的 WebSocket 常量，供 hub 和 client 使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// 单次 Service 调用的超时
	serviceTimeout = 10 * time.Second
)

// Hub 内部消息类型
const (
	msgRegister   = "register"
	msgUnregister = "unregister"
	msgEdit       = "edit"
	msgTouch      = "touch"
	msgRemote     = "remote"
)

// EditProcessor 处理客户端提交的编辑
type EditProcessor interface {
	ProcessIncomingEdit(ctx context.Context, projectID, userID uint, peerID string, raw []byte) (*domain.Edit, error)
}

// CanvasProvider 提供新连接需要的完整画布
type CanvasProvider interface {
	GetCanvasForClient(ctx context.Context, projectID uint) (*domain.Canvas, uint, error)
}

// PresenceTracker 维护协作者列表
type PresenceTracker interface {
	Join(ctx context.Context, projectID, userID uint, name string, canEdit bool) (*domain.Peer, error)
	Leave(ctx context.Context, peer *domain.Peer) error
	Touch(ctx context.Context, peer *domain.Peer) error
	Peers(ctx context.Context, projectID uint) ([]domain.Peer, error)
}

// Publisher 把消息转发给其他服务实例
type Publisher interface {
	Publish(ctx context.Context, projectID uint, message []byte) error
}

// TaskEnqueuer 投递后台任务，*asynq.Client 满足此接口
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// HubMessage 定义了在 Hub 内部通道传递的消息
type HubMessage struct {
	Type      string  // register, unregister, edit, touch, remote
	ProjectID uint    // 工程 ID
	UserID    uint    // 来源用户 ID
	Client    *Client // remote 消息为 nil
	RawData   []byte  // edit 为客户端原始消息，remote 为其他实例转发的消息
}

// Hub 维护每个工程的活跃客户端，并协调编辑、协作者和跨实例消息
type Hub struct {
	messageChan chan HubMessage

	// map[projectID]map[*Client]bool
	projects   map[uint]map[*Client]bool
	projectsMu sync.RWMutex

	collab    EditProcessor
	canvases  CanvasProvider
	presence  PresenceTracker
	publisher Publisher    // 可以为 nil，单实例部署
	enqueuer  TaskEnqueuer // 可以为 nil，编辑只保存在实时状态中
}

// NewHub 创建并返回一个新的 Hub 实例
func NewHub(collab EditProcessor, canvases CanvasProvider, presence PresenceTracker, publisher Publisher, enqueuer TaskEnqueuer) *Hub {
	if collab == nil || canvases == nil || presence == nil {
		panic("EditProcessor, CanvasProvider and PresenceTracker must be non-nil for Hub")
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		projects:    make(map[uint]map[*Client]bool),
		collab:      collab,
		canvases:    canvases,
		presence:    presence,
		publisher:   publisher,
		enqueuer:    enqueuer,
	}
}

// Run 启动 Hub 的事件循环，直到 ctx 取消。应在单独的 goroutine 中运行。
func (h *Hub) Run(ctx context.Context) {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			log.Info("Hub is shutting down...")
			return
		case msg := <-h.messageChan:
			switch msg.Type {
			case msgRegister:
				h.registerClient(msg.Client)
			case msgUnregister:
				h.unregisterClient(msg.Client)
			case msgEdit:
				// 并发处理，Redis 事务保证编辑的原子性，客户端按版本号排序
				go h.handleEdit(msg)
			case msgTouch:
				go h.touchPeer(msg.Client)
			case msgRemote:
				h.deliverRemote(msg.ProjectID, msg.RawData)
			default:
				log.Warnf("Hub: Received unknown message type: %s from user %d in project %d", msg.Type, msg.UserID, msg.ProjectID)
			}
		}
	}
}

// registerClient 把客户端加入工程，然后异步完成加入流程
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	projectID := client.ProjectID()
	logCtx := logrus.WithFields(logrus.Fields{
		"project_id": projectID,
		"user_id":    client.UserID(),
		"action":     "registerClient",
	})

	h.projectsMu.Lock()
	if _, ok := h.projects[projectID]; !ok {
		h.projects[projectID] = make(map[*Client]bool)
		logCtx.Info("Client list created for new project")
	}
	h.projects[projectID][client] = true
	h.projectsMu.Unlock()
	logCtx.Info("Client registered to Hub")

	go h.welcome(client)
}

// welcome 登记协作者，发送初始画布，并通知其他协作者
func (h *Hub) welcome(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
	defer cancel()
	projectID := client.ProjectID()
	logCtx := logrus.WithFields(logrus.Fields{
		"project_id": projectID,
		"user_id":    client.UserID(),
		"operation":  "welcome",
	})

	peer, err := h.presence.Join(ctx, projectID, client.UserID(), client.Name(), client.CanEdit())
	if err != nil {
		logCtx.WithError(err).Warn("Failed to join presence, continuing without peer record")
	} else {
		logCtx = logCtx.WithField("peer_id", peer.ID)
		if !h.attachPeer(client, peer) {
			// 登记期间连接已断开
			logCtx.Info("Client left before presence join completed")
			if err := h.presence.Leave(ctx, peer); err != nil {
				logCtx.WithError(err).Warn("Failed to mark peer as left")
			}
			h.presenceChanged(ctx, projectID)
			return
		}
	}

	canvas, version, err := h.canvases.GetCanvasForClient(ctx, projectID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load initial canvas")
		h.sendError(client, "Failed to load initial canvas")
		return
	}
	payload, err := json.Marshal(dto.CanvasMessage{
		Type:    dto.MessageCanvas,
		Version: version,
		PeerID:  client.PeerID(),
		Canvas:  canvas,
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to marshal canvas message")
		return
	}
	if h.sendTo(client, payload) {
		logCtx.WithField("version", version).Info("Initial canvas sent to client")
	}

	h.presenceChanged(ctx, projectID)
}

// attachPeer 只在客户端仍然注册时记录协作者，返回是否记录。
func (h *Hub) attachPeer(client *Client, peer *domain.Peer) bool {
	h.projectsMu.Lock()
	defer h.projectsMu.Unlock()
	if !h.projects[client.ProjectID()][client] {
		return false
	}
	client.setPeer(peer)
	return true
}

// unregisterClient 把客户端移出工程并关闭其发送通道
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	projectID := client.ProjectID()
	logCtx := logrus.WithFields(logrus.Fields{
		"project_id": projectID,
		"user_id":    client.UserID(),
		"action":     "unregisterClient",
	})

	h.projectsMu.Lock()
	clients, ok := h.projects[projectID]
	if !ok || !clients[client] {
		h.projectsMu.Unlock()
		logCtx.Warn("Client not found during unregister")
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.projects, projectID)
		logCtx.Info("Project has no local clients, removed from Hub")
	}
	h.projectsMu.Unlock()
	logCtx.Info("Client unregistered from Hub")

	go h.farewell(client)
}

// farewell 把协作者标记为断开并通知其他协作者
func (h *Hub) farewell(client *Client) {
	peer := client.Peer()
	if peer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
	defer cancel()
	if err := h.presence.Leave(ctx, peer); err != nil {
		logrus.WithFields(logrus.Fields{"project_id": peer.ProjectID, "peer_id": peer.ID}).WithError(err).Warn("Failed to mark peer as left")
	}
	h.presenceChanged(ctx, client.ProjectID())
}

func (h *Hub) touchPeer(client *Client) {
	if client == nil {
		return
	}
	peer := client.Peer()
	if peer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
	defer cancel()
	_ = h.presence.Touch(ctx, peer)
}

// handleEdit 应用编辑，广播给工程内所有客户端 (包括发送者)，并投递落库任务
func (h *Hub) handleEdit(msg HubMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
	defer cancel()
	client := msg.Client
	logCtx := logrus.WithFields(logrus.Fields{
		"project_id": msg.ProjectID,
		"user_id":    msg.UserID,
		"operation":  "handleEdit",
	})

	if client != nil && !client.CanEdit() {
		h.sendError(client, clientErrorMessage(service.ErrForbidden))
		return
	}
	var peerID string
	if client != nil {
		peerID = client.PeerID()
	}

	edit, err := h.collab.ProcessIncomingEdit(ctx, msg.ProjectID, msg.UserID, peerID, msg.RawData)
	if err != nil {
		logCtx.WithError(err).Debug("Edit rejected")
		if client != nil {
			h.sendError(client, clientErrorMessage(err))
		}
		return
	}
	logCtx = logCtx.WithField("version", edit.Version)

	payload, err := json.Marshal(dto.EditMessage{Type: dto.MessageEdit, Edit: *edit})
	if err != nil {
		logCtx.WithError(err).Error("Failed to marshal edit for broadcast")
		return
	}
	h.broadcast(msg.ProjectID, payload)
	h.publish(ctx, msg.ProjectID, payload)
	h.enqueuePersistence(ctx, *edit, logCtx)
}

func (h *Hub) enqueuePersistence(ctx context.Context, edit domain.Edit, logCtx *logrus.Entry) {
	if h.enqueuer == nil {
		return
	}
	task, err := tasks.NewEditPersistenceTask(edit)
	if err != nil {
		logCtx.WithError(err).Error("Failed to build edit persistence task")
		return
	}
	if _, err := h.enqueuer.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		logCtx.WithError(err).Error("Failed to enqueue edit persistence task")
	}
}

// presenceChanged 刷新本地客户端的协作者列表，并通知其他实例
func (h *Hub) presenceChanged(ctx context.Context, projectID uint) {
	h.broadcastPresence(ctx, projectID)
	signal, _ := json.Marshal(dto.PresenceMessage{Type: dto.MessagePresence})
	h.publish(ctx, projectID, signal)
}

// broadcastPresence 从存储读取协作者，为每个本地客户端生成各自的视图
func (h *Hub) broadcastPresence(ctx context.Context, projectID uint) {
	peers, err := h.presence.Peers(ctx, projectID)
	if err != nil {
		logrus.WithField("project_id", projectID).WithError(err).Warn("Failed to load peers for broadcast")
		return
	}

	h.projectsMu.RLock()
	defer h.projectsMu.RUnlock()
	for client := range h.projects[projectID] {
		payload, err := json.Marshal(dto.PresenceMessage{
			Type:  dto.MessagePresence,
			Peers: service.BuildPeerViews(peers, projectID, client.PeerID()),
		})
		if err != nil {
			continue
		}
		select {
		case client.send <- payload:
		default:
			logrus.WithFields(logrus.Fields{"project_id": projectID, "user_id": client.UserID()}).Warn("Client send channel full, presence update dropped")
		}
	}
}

// deliverRemote 处理其他实例转发的消息。协作者变化从共享存储重新生成，其他消息原样广播。
func (h *Hub) deliverRemote(projectID uint, message []byte) {
	if !h.hasClients(projectID) {
		return
	}
	var env dto.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		logrus.WithField("project_id", projectID).WithError(err).Warn("Dropping malformed remote message")
		return
	}
	if env.Type == dto.MessagePresence {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
			defer cancel()
			h.broadcastPresence(ctx, projectID)
		}()
		return
	}
	h.broadcast(projectID, message)
}

func (h *Hub) publish(ctx context.Context, projectID uint, payload []byte) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, projectID, payload); err != nil {
		logrus.WithField("project_id", projectID).WithError(err).Warn("Failed to publish message to other instances")
	}
}

// broadcast 将消息发送给工程内的所有本地客户端
func (h *Hub) broadcast(projectID uint, message []byte) {
	h.projectsMu.RLock()
	defer h.projectsMu.RUnlock()

	clients := h.projects[projectID]
	if len(clients) == 0 {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"project_id":      projectID,
		"message_size":    len(message),
		"recipient_count": len(clients),
	})
	logCtx.Debug("Broadcasting message to clients")

	for client := range clients {
		// 非阻塞发送，避免单个慢客户端阻塞广播
		select {
		case client.send <- message:
		default:
			logCtx.WithField("receiver_user_id", client.UserID()).Warn("Client send channel full during broadcast, skipping this client")
		}
	}
}

// sendTo 向仍在 Hub 中的客户端发送消息，返回是否成功入队
func (h *Hub) sendTo(client *Client, message []byte) bool {
	h.projectsMu.RLock()
	defer h.projectsMu.RUnlock()
	if !h.projects[client.ProjectID()][client] {
		return false
	}
	select {
	case client.send <- message:
		return true
	default:
		logrus.WithFields(logrus.Fields{"project_id": client.ProjectID(), "user_id": client.UserID()}).Warn("Client send channel full, message dropped")
		return false
	}
}

func (h *Hub) sendError(client *Client, message string) {
	payload, err := json.Marshal(dto.NewError(message))
	if err != nil {
		return
	}
	h.sendTo(client, payload)
}

// clientErrorMessage 把 Service 错误转换为发给客户端的文本
func clientErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidEdit):
		return "Invalid edit"
	case errors.Is(err, service.ErrVersionConflict):
		return "Edit conflicted with concurrent changes, please retry"
	case errors.Is(err, service.ErrForbidden):
		return "You do not have permission to edit this project"
	case errors.Is(err, service.ErrProjectNotFound):
		return "Project not found"
	default:
		return "Internal server error"
	}
}

func (h *Hub) hasClients(projectID uint) bool {
	h.projectsMu.RLock()
	defer h.projectsMu.RUnlock()
	return len(h.projects[projectID]) > 0
}

// closeAll 关闭所有客户端的发送通道，WritePump 随之发送关闭帧并退出
func (h *Hub) closeAll() {
	h.projectsMu.Lock()
	defer h.projectsMu.Unlock()
	for projectID, clients := range h.projects {
		for client := range clients {
			close(client.send)
		}
		delete(h.projects, projectID)
	}
}

// --- 公共方法 ---

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)，队列已满时返回 false。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"project_id":   msg.ProjectID,
			"user_id":      msg.UserID,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

// Register 请求 Hub 登记客户端。
func (h *Hub) Register(client *Client) bool {
	return h.QueueMessage(HubMessage{Type: msgRegister, ProjectID: client.ProjectID(), UserID: client.UserID(), Client: client})
}

// DeliverRemote 把其他实例转发的消息交给 Hub，可作为 SyncService.Run 的回调。
func (h *Hub) DeliverRemote(projectID uint, message []byte) {
	h.QueueMessage(HubMessage{Type: msgRemote, ProjectID: projectID, RawData: message})
}

// GetActiveProjectIDs 返回当前有本地客户端的工程 ID。
func (h *Hub) GetActiveProjectIDs() []uint {
	h.projectsMu.RLock()
	defer h.projectsMu.RUnlock()
	ids := make([]uint, 0, len(h.projects))
	for id := range h.projects {
		ids = append(ids, id)
	}
	return ids
}
