package dto

import "time"

// ── 活动模块 DTO ──

// CreateEventRequest 创建活动请求（管理员）
type CreateEventRequest struct {
	Title        string    `json:"title"        binding:"required,max=200"`
	Description  *string   `json:"description"  binding:"omitempty,max=5000"`
	Date         string    `json:"date"         binding:"required,datetime=2006-01-02"`
	StartTime    string    `json:"start_time"   binding:"required,datetime=15:04"`
	EndTime      string    `json:"end_time"     binding:"required,datetime=15:04"`
	Location     string    `json:"location"     binding:"required,max=300"`
	Coordinates  *GeoPoint `json:"coordinates"  binding:"omitempty"`
	Requirements *string   `json:"requirements" binding:"omitempty,max=5000"`
	MaxStaff     *int      `json:"max_staff"    binding:"omitempty,min=1"`
}

// UpdateEventRequest 更新活动请求（管理员，全部字段可选）
type UpdateEventRequest struct {
	Title        *string   `json:"title"        binding:"omitempty,max=200"`
	Description  *string   `json:"description"  binding:"omitempty,max=5000"`
	Date         *string   `json:"date"         binding:"omitempty,datetime=2006-01-02"`
	StartTime    *string   `json:"start_time"   binding:"omitempty,datetime=15:04"`
	EndTime      *string   `json:"end_time"     binding:"omitempty,datetime=15:04"`
	Location     *string   `json:"location"     binding:"omitempty,max=300"`
	Coordinates  *GeoPoint `json:"coordinates"  binding:"omitempty"`
	Requirements *string   `json:"requirements" binding:"omitempty,max=5000"`
	MaxStaff     *int      `json:"max_staff"    binding:"omitempty,min=1"`
	Status       *string   `json:"status"       binding:"omitempty,oneof=upcoming active completed cancelled"`
}

// EventListRequest 活动列表查询参数
type EventListRequest struct {
	Status   string `form:"status"    binding:"omitempty,oneof=upcoming active completed cancelled"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to"   binding:"omitempty,datetime=2006-01-02"`
	Location string `form:"location"  binding:"omitempty,max=300"`
}

// EventResponse 活动响应，附带已批准人数与调用者自身报名状态
type EventResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        *string   `json:"description,omitempty"`
	Date               string    `json:"date"`
	StartTime          string    `json:"start_time"`
	EndTime            string    `json:"end_time"`
	Location           string    `json:"location"`
	Coordinates        *GeoPoint `json:"coordinates,omitempty"`
	Requirements       *string   `json:"requirements,omitempty"`
	MaxStaff           *int      `json:"max_staff,omitempty"`
	Status             string    `json:"status"`
	CreatedByName      string    `json:"created_by_name,omitempty"`
	ApprovedStaffCount int64     `json:"approved_staff_count"`
	MySignupStatus     *string   `json:"my_signup_status,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// AssignedStaffResponse 活动已批准员工
type AssignedStaffResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	ProfilePhotoURL *string    `json:"profile_photo_url,omitempty"`
	AppliedAt       time.Time  `json:"applied_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
}

// EventDetailResponse 活动详情，含已批准员工列表
type EventDetailResponse struct {
	EventResponse
	AssignedStaff []AssignedStaffResponse `json:"assigned_staff"`
}
