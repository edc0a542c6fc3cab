package dto

import "time"

// ── 仪表盘模块 DTO ──

// AdminStats 管理端统计
type AdminStats struct {
	UpcomingEvents      int64 `json:"upcoming_events"`
	ActiveEvents        int64 `json:"active_events"`
	ActiveStaff         int64 `json:"active_staff"`
	PendingSignups      int64 `json:"pending_signups"`
	OnDutyCount         int64 `json:"on_duty_count"`
	UnreadNotifications int64 `json:"unread_notifications"`
}

// PendingSignupResponse 待审批报名（管理端最近列表）
type PendingSignupResponse struct {
	SignupID   string    `json:"signup_id"`
	EventID    string    `json:"event_id"`
	EventTitle string    `json:"event_title"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	AppliedAt  time.Time `json:"applied_at"`
}

// AdminDashboardResponse 管理端仪表盘
type AdminDashboardResponse struct {
	Stats         AdminStats              `json:"stats"`
	RecentEvents  []EventResponse         `json:"recent_events"`
	RecentSignups []PendingSignupResponse `json:"recent_signups"`
}

// StaffStats 员工端统计
type StaffStats struct {
	ApprovedShifts      int64 `json:"approved_shifts"`
	PendingShifts       int64 `json:"pending_shifts"`
	OnDutyCount         int64 `json:"on_duty_count"`
	UnreadNotifications int64 `json:"unread_notifications"`
}

// StaffDashboardResponse 员工端仪表盘
type StaffDashboardResponse struct {
	Stats          StaffStats      `json:"stats"`
	UpcomingShifts []EventResponse `json:"upcoming_shifts"`
}
