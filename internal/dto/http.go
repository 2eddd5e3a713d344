package dto

// RegisterRequest 是注册接口的请求体
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// LoginRequest 是登录接口的请求体
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateProjectRequest 是创建工程的请求体
type CreateProjectRequest struct {
	Title    string  `json:"title" binding:"required,max=191"`
	Columns  int     `json:"columns" binding:"required"`
	Rows     int     `json:"rows" binding:"required"`
	CellSize int     `json:"cellSize" binding:"required"`
	Duration float64 `json:"duration"`
}

// JoinProjectRequest 是通过邀请码加入工程的请求体
type JoinProjectRequest struct {
	InviteCode string `json:"inviteCode" binding:"required"`
}

// UpdateProjectRequest 修改工程设置，字段为空表示不修改
type UpdateProjectRequest struct {
	Title    *string  `json:"title"`
	Duration *float64 `json:"duration"`
}

// ProjectResponse 是工程的对外表示
type ProjectResponse struct {
	ID         uint    `json:"id"`
	OwnerID    uint    `json:"ownerId"`
	Title      string  `json:"title"`
	InviteCode string  `json:"inviteCode"`
	ShareLink  string  `json:"shareLink"`
	Duration   float64 `json:"duration"`
	CanEdit    bool    `json:"canEdit"`
}
