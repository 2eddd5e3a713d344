package domain

import "time"

// Peer 是一个正在 (或曾经) 编辑某工程的协作者会话。
// 同一个用户在多个标签页打开同一工程时会有多个 Peer。
type Peer struct {
	ID        string    `json:"id"`
	ProjectID uint      `json:"projectId"`
	UserID    uint      `json:"userId"`
	Name      string    `json:"name"`
	CanEdit   bool      `json:"canEdit"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joinedAt"`
	LastSeen  time.Time `json:"lastSeen"`
}
