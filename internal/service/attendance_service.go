package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
	apperrors "staffhub/backend/pkg/errors"
)

// lateGrace 上班打卡宽限期：超过活动开始时间 15 分钟才算迟到
const lateGrace = 15 * time.Minute

// AttendanceService 考勤业务接口。
//
// 打卡前置条件：必须持有该活动的 approved 报名。
// 迟到判定：clock_in > start + 15min（恰好在边界上不算迟到）；
// 早退判定：clock_out < end（跨午夜班次的 end 顺延到次日）。
type AttendanceService interface {
	ClockIn(ctx context.Context, userID string, req *dto.ClockInRequest) (*dto.AttendanceResponse, error)
	ClockOut(ctx context.Context, userID string, req *dto.ClockOutRequest) (*dto.AttendanceResponse, error)
	Status(ctx context.Context, eventID, userID string) (*dto.AttendanceStatusResponse, error)
	Logs(ctx context.Context, req *dto.AttendanceLogsRequest) ([]dto.AttendanceLogResponse, error)
	MyLogs(ctx context.Context, userID string, req *dto.AttendanceLogsRequest) ([]dto.AttendanceLogResponse, error)
}

type attendanceService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
	now      func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) AttendanceService {
	return &attendanceService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *attendanceService) ClockIn(ctx context.Context, userID string, req *dto.ClockInRequest) (*dto.AttendanceResponse, error) {
	event, err := s.requireApprovedSignup(ctx, req.EventID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	log := &model.AttendanceLog{
		EventID: req.EventID,
		UserID:  userID,
		ClockIn: now,
		Status:  model.AttendanceStatusOnDuty,
		IsLate:  now.After(event.StartAt().Add(lateGrace)),
	}
	if req.Location != nil {
		log.ClockInLat = &req.Location.Lat
		log.ClockInLng = &req.Location.Lng
	}

	if err := s.repo.Attendance.ClockIn(ctx, log); err != nil {
		return nil, err
	}
	s.logger.Info("上班打卡成功",
		zap.String("event_id", req.EventID),
		zap.String("user_id", userID),
		zap.Bool("is_late", log.IsLate))

	if log.IsLate {
		if user, err := s.repo.User.GetByID(ctx, userID); err == nil {
			s.notifier.NotifyAttendanceAlert(ctx, event, user, true)
		}
	}

	resp := toAttendanceResponse(log)
	return &resp, nil
}

func (s *attendanceService) ClockOut(ctx context.Context, userID string, req *dto.ClockOutRequest) (*dto.AttendanceResponse, error) {
	event, err := s.getEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	isEarly := now.Before(event.EndAt())

	var lat, lng *float64
	if req.Location != nil {
		lat, lng = &req.Location.Lat, &req.Location.Lng
	}

	log, err := s.repo.Attendance.ClockOut(ctx, req.EventID, userID, now, lat, lng, isEarly)
	if err != nil {
		return nil, err
	}
	s.logger.Info("下班打卡成功",
		zap.String("event_id", req.EventID),
		zap.String("user_id", userID),
		zap.Bool("is_early", isEarly),
		zap.Float64("hours_worked", log.HoursWorked()))

	if isEarly {
		if user, err := s.repo.User.GetByID(ctx, userID); err == nil {
			s.notifier.NotifyAttendanceAlert(ctx, event, user, false)
		}
	}

	resp := toAttendanceResponse(log)
	return &resp, nil
}

// Status 查询某活动下当前考勤状态；从未打卡时返回 not_clocked_in
func (s *attendanceService) Status(ctx context.Context, eventID, userID string) (*dto.AttendanceStatusResponse, error) {
	log, err := s.repo.Attendance.Latest(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.AttendanceStatusResponse{Status: model.AttendanceStatusNotClockedIn}, nil
		}
		return nil, err
	}

	resp := toAttendanceResponse(log)
	return &dto.AttendanceStatusResponse{
		Status:     log.Status,
		Attendance: &resp,
	}, nil
}

// Logs 管理端考勤记录列表（可按用户/活动/日期过滤）
func (s *attendanceService) Logs(ctx context.Context, req *dto.AttendanceLogsRequest) ([]dto.AttendanceLogResponse, error) {
	return s.listLogs(ctx, &repository.AttendanceFilters{
		UserID:   req.UserID,
		EventID:  req.EventID,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	})
}

// MyLogs 员工查询自己的考勤记录
func (s *attendanceService) MyLogs(ctx context.Context, userID string, req *dto.AttendanceLogsRequest) ([]dto.AttendanceLogResponse, error) {
	return s.listLogs(ctx, &repository.AttendanceFilters{
		UserID:   userID,
		EventID:  req.EventID,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	})
}

func (s *attendanceService) listLogs(ctx context.Context, f *repository.AttendanceFilters) ([]dto.AttendanceLogResponse, error) {
	logs, err := s.repo.Attendance.List(ctx, f)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, err
	}

	resps := make([]dto.AttendanceLogResponse, 0, len(logs))
	for i := range logs {
		lr := dto.AttendanceLogResponse{
			AttendanceResponse: toAttendanceResponse(&logs[i]),
		}
		if u := logs[i].User; u != nil {
			lr.UserName = u.Name
			lr.UserEmail = u.Email
		}
		if e := logs[i].Event; e != nil {
			lr.EventTitle = e.Title
			lr.EventDate = e.Date.Format(dateLayout)
			lr.EventLocation = e.Location
		}
		resps = append(resps, lr)
	}
	return resps, nil
}

// requireApprovedSignup 打卡资格校验：活动存在且调用者持有 approved 报名
func (s *attendanceService) requireApprovedSignup(ctx context.Context, eventID, userID string) (*model.Event, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	signup, err := s.repo.Signup.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 未报名该活动", apperrors.ErrForbidden)
		}
		return nil, err
	}
	if signup.Status != model.SignupStatusApproved {
		return nil, fmt.Errorf("%w: 报名未获批准", apperrors.ErrForbidden)
	}
	return event, nil
}

func (s *attendanceService) getEvent(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 活动不存在", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return event, nil
}

func toAttendanceResponse(log *model.AttendanceLog) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		AttendanceID:    log.AttendanceID,
		EventID:         log.EventID,
		UserID:          log.UserID,
		ClockIn:         log.ClockIn,
		ClockOut:        log.ClockOut,
		Status:          log.Status,
		IsLate:          log.IsLate,
		IsEarlyClockout: log.IsEarlyClockout,
	}
	if log.ClockInLat != nil && log.ClockInLng != nil {
		resp.ClockInLoc = &dto.GeoPoint{Lat: *log.ClockInLat, Lng: *log.ClockInLng}
	}
	if log.ClockOutLat != nil && log.ClockOutLng != nil {
		resp.ClockOutLoc = &dto.GeoPoint{Lat: *log.ClockOutLat, Lng: *log.ClockOutLng}
	}
	return resp
}
