package service

import (
	"context"

	"go.uber.org/zap"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
)

// DashboardService 仪表盘业务接口
type DashboardService interface {
	Admin(ctx context.Context, viewerID string) (*dto.AdminDashboardResponse, error)
	Staff(ctx context.Context, userID string) (*dto.StaffDashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

func (s *dashboardService) Admin(ctx context.Context, viewerID string) (*dto.AdminDashboardResponse, error) {
	var stats dto.AdminStats
	var err error

	if stats.UpcomingEvents, err = s.repo.Event.CountByStatus(ctx, model.EventStatusUpcoming); err != nil {
		return nil, err
	}
	if stats.ActiveEvents, err = s.repo.Event.CountByStatus(ctx, model.EventStatusActive); err != nil {
		return nil, err
	}
	if stats.ActiveStaff, err = s.repo.User.CountActiveByRole(ctx, model.RoleStaff); err != nil {
		return nil, err
	}
	if stats.PendingSignups, err = s.repo.Signup.CountByStatus(ctx, model.SignupStatusPending); err != nil {
		return nil, err
	}
	if stats.OnDutyCount, err = s.repo.Attendance.CountOnDuty(ctx); err != nil {
		return nil, err
	}
	if stats.UnreadNotifications, err = s.repo.Notification.UnreadCount(ctx, viewerID); err != nil {
		return nil, err
	}

	events, err := s.repo.Event.List(ctx, &repository.EventFilters{
		Status: model.EventStatusUpcoming,
		Limit:  5,
	}, viewerID)
	if err != nil {
		s.logger.Error("查询近期活动失败", zap.Error(err))
		return nil, err
	}
	recentEvents := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		recentEvents = append(recentEvents, toEventResponse(&events[i]))
	}

	signups, err := s.repo.Signup.ListPendingRecent(ctx, 10)
	if err != nil {
		s.logger.Error("查询待审批报名失败", zap.Error(err))
		return nil, err
	}
	recentSignups := make([]dto.PendingSignupResponse, 0, len(signups))
	for i := range signups {
		ps := dto.PendingSignupResponse{
			SignupID:  signups[i].SignupID,
			EventID:   signups[i].EventID,
			UserID:    signups[i].UserID,
			AppliedAt: signups[i].AppliedAt,
		}
		if u := signups[i].User; u != nil {
			ps.UserName = u.Name
			ps.UserEmail = u.Email
		}
		if e := signups[i].Event; e != nil {
			ps.EventTitle = e.Title
		}
		recentSignups = append(recentSignups, ps)
	}

	return &dto.AdminDashboardResponse{
		Stats:         stats,
		RecentEvents:  recentEvents,
		RecentSignups: recentSignups,
	}, nil
}

func (s *dashboardService) Staff(ctx context.Context, userID string) (*dto.StaffDashboardResponse, error) {
	var stats dto.StaffStats
	var err error

	if stats.ApprovedShifts, err = s.repo.Signup.CountByUserAndStatus(ctx, userID, model.SignupStatusApproved); err != nil {
		return nil, err
	}
	if stats.PendingShifts, err = s.repo.Signup.CountByUserAndStatus(ctx, userID, model.SignupStatusPending); err != nil {
		return nil, err
	}
	if stats.OnDutyCount, err = s.repo.Attendance.CountOnDutyByUser(ctx, userID); err != nil {
		return nil, err
	}
	if stats.UnreadNotifications, err = s.repo.Notification.UnreadCount(ctx, userID); err != nil {
		return nil, err
	}

	signups, err := s.repo.Signup.ListApprovedUpcomingByUser(ctx, userID, 5)
	if err != nil {
		s.logger.Error("查询即将到来的班次失败", zap.Error(err))
		return nil, err
	}

	status := model.SignupStatusApproved
	upcoming := make([]dto.EventResponse, 0, len(signups))
	for i := range signups {
		e := signups[i].Event
		if e == nil {
			continue
		}
		er := dto.EventResponse{
			ID:             e.EventID,
			Title:          e.Title,
			Description:    e.Description,
			Date:           e.Date.Format(dateLayout),
			StartTime:      e.StartTime,
			EndTime:        e.EndTime,
			Location:       e.Location,
			MaxStaff:       e.MaxStaff,
			Status:         e.Status,
			MySignupStatus: &status,
			CreatedAt:      e.CreatedAt,
		}
		if e.LocationLat != nil && e.LocationLng != nil {
			er.Coordinates = &dto.GeoPoint{Lat: *e.LocationLat, Lng: *e.LocationLng}
		}
		upcoming = append(upcoming, er)
	}

	return &dto.StaffDashboardResponse{
		Stats:          stats,
		UpcomingShifts: upcoming,
	}, nil
}
