package dto

import "time"

// ── 班次（报名生命周期）模块 DTO ──

// DecideSignupRequest 审批报名请求（管理员）
type DecideSignupRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// SignupResponse 报名记录响应
type SignupResponse struct {
	SignupID  string     `json:"signup_id"`
	EventID   string     `json:"event_id"`
	UserID    string     `json:"user_id"`
	Status    string     `json:"status"`
	AppliedAt time.Time  `json:"applied_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	DecidedBy *string    `json:"decided_by,omitempty"`
}

// AvailableShiftsRequest 可报名班次查询参数
type AvailableShiftsRequest struct {
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to"   binding:"omitempty,datetime=2006-01-02"`
	Location string `form:"location"  binding:"omitempty,max=300"`
}

// MyShiftsRequest 我的班次查询参数
type MyShiftsRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected withdrawn all"`
}

// MyShiftResponse 我的班次（报名 + 活动信息）
type MyShiftResponse struct {
	EventResponse
	SignupStatus string     `json:"signup_status"`
	AppliedAt    time.Time  `json:"applied_at"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
}
