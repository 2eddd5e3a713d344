package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/domain"
)

// Client 代表一个连接到 Hub 的 WebSocket 客户端。
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	projectID uint
	userID    uint
	name      string
	canEdit   bool
	send      chan []byte // 发往此客户端的缓冲通道，只由 Hub 关闭

	mu   sync.RWMutex
	peer *domain.Peer // 登记协作者后设置
}

// NewClient 创建一个新的 Client 实例
func NewClient(hub *Hub, conn *websocket.Conn, projectID, userID uint, name string, canEdit bool) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		projectID: projectID,
		userID:    userID,
		name:      name,
		canEdit:   canEdit,
		send:      make(chan []byte, 256),
	}
}

// Run 启动客户端的读写 goroutine
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

func (c *Client) logCtx() *logrus.Entry {
	return logrus.WithFields(logrus.Fields{"user_id": c.userID, "project_id": c.projectID})
}

// ReadPump 将消息从 WebSocket 连接泵送到 Hub。
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.messageChan <- HubMessage{Type: msgUnregister, ProjectID: c.projectID, UserID: c.userID, Client: c}:
		case <-time.After(1 * time.Second):
			c.logCtx().Warn("Timeout sending unregister message to Hub channel")
		}
		c.conn.Close()
		c.logCtx().Info("readPump exited, unregistered client")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logCtx().WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				c.logCtx().Debug("WebSocket connection closed normally or read error")
			}
			break
		}

		if messageType != websocket.TextMessage {
			c.logCtx().Debugf("Received non-text message type: %d", messageType)
			continue
		}
		c.logCtx().Debugf("Received raw message (size: %d)", len(message))
		c.hub.QueueMessage(HubMessage{
			Type:      msgEdit,
			ProjectID: c.projectID,
			UserID:    c.userID,
			Client:    c,
			RawData:   message,
		})
	}
}

// WritePump 将 send 通道中的消息写入 WebSocket 连接，并定期发送 Ping。
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logCtx().Info("writePump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了通道
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logCtx().WithError(err).Warn("Failed to write message to websocket")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logCtx().WithError(err).Warn("Failed to send ping message")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})
			// 连接仍然存活，刷新协作者记录
			c.hub.QueueMessage(HubMessage{Type: msgTouch, ProjectID: c.projectID, UserID: c.userID, Client: c})
		}
	}
}

func (c *Client) ProjectID() uint { return c.projectID }
func (c *Client) UserID() uint    { return c.userID }
func (c *Client) Name() string    { return c.name }
func (c *Client) CanEdit() bool   { return c.canEdit }

// Peer 返回协作者记录的副本，尚未登记时为 nil。
func (c *Client) Peer() *domain.Peer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.peer == nil {
		return nil
	}
	p := *c.peer
	return &p
}

// PeerID 返回协作者 ID，尚未登记时为空字符串。
func (c *Client) PeerID() string {
	if p := c.Peer(); p != nil {
		return p.ID
	}
	return ""
}

func (c *Client) setPeer(p *domain.Peer) {
	c.mu.Lock()
	c.peer = p
	c.mu.Unlock()
}

func (c *Client) CloseConn() { c.conn.Close() }
