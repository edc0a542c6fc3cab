package dto

import "time"

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数（管理员）
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin staff"`
	Status  string `form:"status"  binding:"omitempty,oneof=active inactive"`
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

// UpdateUserRequest 更新个人资料请求
type UpdateUserRequest struct {
	Name        *string `json:"name"         binding:"omitempty,min=2,max=100"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=30"`
}

// SetUserStatusRequest 启用/停用账号请求（管理员）
type SetUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	Status          string    `json:"status"`
	PhoneNumber     *string   `json:"phone_number,omitempty"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
