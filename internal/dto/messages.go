package dto

import (
	"encoding/json"

	"collaborative-pixelart/internal/domain"
)

// WebSocket 消息类型
const (
	MessageEdit     = "edit"
	MessageCanvas   = "canvas"
	MessagePresence = "presence"
	MessageError    = "error"
)

// Envelope 是 WebSocket 上所有消息的外层结构，Data 根据 Type 解析
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// IncomingEdit 是客户端提交的一次编辑
type IncomingEdit struct {
	Type           string          `json:"type"`
	Data           domain.EditData `json:"data"`
	BasedOnVersion uint            `json:"basedOnVersion"`
}

// EditMessage 是广播给客户端的已确认编辑
type EditMessage struct {
	Type string      `json:"type"`
	Edit domain.Edit `json:"edit"`
}

// CanvasMessage 在客户端连接时发送完整画布
type CanvasMessage struct {
	Type    string         `json:"type"`
	Version uint           `json:"version"`
	PeerID  string         `json:"peerId"`
	Canvas  *domain.Canvas `json:"canvas"`
}

// PresenceMessage 是协作者列表
type PresenceMessage struct {
	Type  string     `json:"type"`
	Peers []PeerView `json:"peers"`
}

// PeerView 是协作者列表中的一行
type PeerView struct {
	ID          string  `json:"id"`
	ShortID     string  `json:"shortId"`
	Name        string  `json:"name"`
	CanEdit     bool    `json:"canEdit"`
	IsConnected bool    `json:"isConnected"`
	IsSelf      bool    `json:"isSelf"`
	Opacity     float64 `json:"opacity"`
	Label       string  `json:"label"`
}

// ErrorDTO 是发送给客户端的错误消息
type ErrorDTO struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewError 创建错误消息
func NewError(message string) ErrorDTO {
	return ErrorDTO{Type: MessageError, Message: message}
}

// SyncEnvelope 是实例之间通过 Redis 转发的消息，Origin 是发送实例的 ID
type SyncEnvelope struct {
	Origin    string          `json:"origin"`
	ProjectID uint            `json:"projectId"`
	Message   json.RawMessage `json:"message"`
}
