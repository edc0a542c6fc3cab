package dto

import "time"

// ── 聊天模块 DTO ──

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// ChatRoomResponse 聊天室响应
type ChatRoomResponse struct {
	RoomID        string     `json:"room_id"`
	EventID       *string    `json:"event_id,omitempty"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	EventTitle    *string    `json:"event_title,omitempty"`
	EventDate     *string    `json:"event_date,omitempty"`
	MessageCount  int64      `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// ChatMessageResponse 聊天消息响应（含发送者信息）
type ChatMessageResponse struct {
	MessageID       string    `json:"message_id"`
	RoomID          string    `json:"room_id"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name"`
	UserEmail       string    `json:"user_email"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty"`
	Message         string    `json:"message"`
	IsFlagged       bool      `json:"is_flagged"`
	CreatedAt       time.Time `json:"created_at"`
}
