package dto

import "time"

// ── 通知模块 DTO ──

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	PaginationRequest
	IsRead *bool `form:"is_read" binding:"omitempty"`
}

// CreateNotificationRequest 手动创建通知请求（管理员）
type CreateNotificationRequest struct {
	UserID         string  `json:"user_id"          binding:"required,uuid"`
	Type           string  `json:"type"             binding:"required,max=50"`
	Title          string  `json:"title"            binding:"required,max=200"`
	Message        string  `json:"message"          binding:"required,max=2000"`
	RelatedEventID *string `json:"related_event_id" binding:"omitempty,uuid"`
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	RelatedEventID *string   `json:"related_event_id,omitempty"`
	EventTitle     *string   `json:"event_title,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// UnreadCountResponse 未读数响应
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
