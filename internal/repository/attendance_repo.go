package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"staffhub/backend/internal/model"
	apperrors "staffhub/backend/pkg/errors"
)

// AttendanceFilters 考勤记录查询过滤条件
type AttendanceFilters struct {
	UserID   string
	EventID  string
	DateFrom string // "2006-01-02"，按活动日期过滤
	DateTo   string
}

// ReportRow 考勤报表原始行（仅 off_duty 会话）
type ReportRow struct {
	UserID          string
	UserName        string
	UserEmail       string
	EventID         string
	EventTitle      string
	EventDate       time.Time
	ClockIn         time.Time
	ClockOut        time.Time
	IsLate          bool
	IsEarlyClockout bool
}

// AttendanceRepository 考勤数据访问接口
//
// ClockIn 依赖部分唯一索引 uq_attendance_on_duty 防止同一用户
// 在同一活动下并发产生多条 on_duty 记录；ClockOut 用条件更新闭合会话。
type AttendanceRepository interface {
	ClockIn(ctx context.Context, log *model.AttendanceLog) error
	ClockOut(ctx context.Context, eventID, userID string, at time.Time, lat, lng *float64, isEarly bool) (*model.AttendanceLog, error)
	Latest(ctx context.Context, eventID, userID string) (*model.AttendanceLog, error)
	List(ctx context.Context, f *AttendanceFilters) ([]model.AttendanceLog, error)
	Report(ctx context.Context, f *AttendanceFilters) ([]ReportRow, error)
	CountOnDuty(ctx context.Context) (int64, error)
	CountOnDutyByUser(ctx context.Context, userID string) (int64, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// ClockIn 插入 on_duty 考勤记录；命中部分唯一索引时返回 Conflict
func (r *attendanceRepo) ClockIn(ctx context.Context, log *model.AttendanceLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: 已处于上岗状态", apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

// ClockOut 闭合当前 on_duty 会话：条件更新保证只有一个请求成功，
// 无 on_duty 记录时返回 InvalidState
func (r *attendanceRepo) ClockOut(ctx context.Context, eventID, userID string, at time.Time, lat, lng *float64, isEarly bool) (*model.AttendanceLog, error) {
	var log model.AttendanceLog
	res := r.db.WithContext(ctx).Model(&log).
		Clauses(clause.Returning{}).
		Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, model.AttendanceStatusOnDuty).
		Updates(map[string]interface{}{
			"status":            model.AttendanceStatusOffDuty,
			"clock_out":         at,
			"clock_out_lat":     lat,
			"clock_out_lng":     lng,
			"is_early_clockout": isEarly,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: 当前不在上岗状态", apperrors.ErrInvalidState)
	}
	return &log, nil
}

// Latest 获取某用户在某活动下最近一条考勤记录
func (r *attendanceRepo) Latest(ctx context.Context, eventID, userID string) (*model.AttendanceLog, error) {
	var log model.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Order("clock_in DESC").
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *attendanceRepo) List(ctx context.Context, f *AttendanceFilters) ([]model.AttendanceLog, error) {
	db := r.db.WithContext(ctx).Model(&model.AttendanceLog{}).
		Preload("User").
		Preload("Event").
		Joins("JOIN events ON events.event_id = attendance_logs.event_id")

	db = applyAttendanceFilters(db, f)

	var logs []model.AttendanceLog
	err := db.Order("attendance_logs.clock_in DESC").Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// Report 报表行查询：只统计已闭合（off_duty）的会话
func (r *attendanceRepo) Report(ctx context.Context, f *AttendanceFilters) ([]ReportRow, error) {
	db := r.db.WithContext(ctx).Model(&model.AttendanceLog{}).
		Select(`users.user_id, users.name AS user_name, users.email AS user_email,
			events.event_id, events.title AS event_title, events.date AS event_date,
			attendance_logs.clock_in, attendance_logs.clock_out,
			attendance_logs.is_late, attendance_logs.is_early_clockout`).
		Joins("JOIN users ON users.user_id = attendance_logs.user_id").
		Joins("JOIN events ON events.event_id = attendance_logs.event_id").
		Where("attendance_logs.status = ?", model.AttendanceStatusOffDuty)

	db = applyAttendanceFilters(db, f)

	var rows []ReportRow
	err := db.Order("events.date ASC, users.name ASC, attendance_logs.clock_in ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *attendanceRepo) CountOnDuty(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.AttendanceLog{}).
		Where("status = ?", model.AttendanceStatusOnDuty).
		Count(&n).Error
	return n, err
}

func (r *attendanceRepo) CountOnDutyByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.AttendanceLog{}).
		Where("user_id = ? AND status = ?", userID, model.AttendanceStatusOnDuty).
		Count(&n).Error
	return n, err
}

func applyAttendanceFilters(db *gorm.DB, f *AttendanceFilters) *gorm.DB {
	if f == nil {
		return db
	}
	if f.UserID != "" {
		db = db.Where("attendance_logs.user_id = ?", f.UserID)
	}
	if f.EventID != "" {
		db = db.Where("attendance_logs.event_id = ?", f.EventID)
	}
	if f.DateFrom != "" {
		db = db.Where("events.date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		db = db.Where("events.date <= ?", f.DateTo)
	}
	return db
}
