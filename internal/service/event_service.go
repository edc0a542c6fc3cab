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

const dateLayout = "2006-01-02"

// EventService 活动业务接口
type EventService interface {
	Create(ctx context.Context, creatorID string, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	Get(ctx context.Context, id, viewerID string) (*dto.EventDetailResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, viewerID string, req *dto.EventListRequest) ([]dto.EventResponse, error)
}

type eventService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewEventService 创建 EventService 实例
func NewEventService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) EventService {
	return &eventService{repo: repo, notifier: notifier, logger: logger}
}

func (s *eventService) Create(ctx context.Context, creatorID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: 日期格式错误", apperrors.ErrValidation)
	}

	event := &model.Event{
		Title:        req.Title,
		Description:  req.Description,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Location:     req.Location,
		Requirements: req.Requirements,
		MaxStaff:     req.MaxStaff,
		Status:       model.EventStatusUpcoming,
		CreatedBy:    creatorID,
	}
	if req.Coordinates != nil {
		event.LocationLat = &req.Coordinates.Lat
		event.LocationLng = &req.Coordinates.Lng
	}

	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.logger.Error("创建活动失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("活动已创建",
		zap.String("event_id", event.EventID), zap.String("title", event.Title))

	row, err := s.repo.Event.GetWithStats(ctx, event.EventID, creatorID)
	if err != nil {
		return nil, err
	}
	resp := toEventResponse(row)
	return &resp, nil
}

func (s *eventService) Get(ctx context.Context, id, viewerID string) (*dto.EventDetailResponse, error) {
	row, err := s.repo.Event.GetWithStats(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 活动不存在", apperrors.ErrNotFound)
		}
		return nil, err
	}

	signups, err := s.repo.Signup.ListApprovedByEvent(ctx, id)
	if err != nil {
		s.logger.Error("查询已批准员工失败", zap.Error(err))
		return nil, err
	}

	staff := make([]dto.AssignedStaffResponse, 0, len(signups))
	for i := range signups {
		sr := dto.AssignedStaffResponse{
			ID:        signups[i].UserID,
			AppliedAt: signups[i].AppliedAt,
			DecidedAt: signups[i].DecidedAt,
		}
		if u := signups[i].User; u != nil {
			sr.Name = u.Name
			sr.Email = u.Email
			sr.ProfilePhotoURL = u.ProfilePhotoURL
		}
		staff = append(staff, sr)
	}

	return &dto.EventDetailResponse{
		EventResponse: toEventResponse(row),
		AssignedStaff: staff,
	}, nil
}

func (s *eventService) Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 活动不存在", apperrors.ErrNotFound)
		}
		return nil, err
	}

	// 排班相关字段变更才触发员工通知
	materialChange := false
	if req.Title != nil && *req.Title != event.Title {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: 日期格式错误", apperrors.ErrValidation)
		}
		if !date.Equal(event.Date) {
			event.Date = date
			materialChange = true
		}
	}
	if req.StartTime != nil && *req.StartTime != event.StartTime {
		event.StartTime = *req.StartTime
		materialChange = true
	}
	if req.EndTime != nil && *req.EndTime != event.EndTime {
		event.EndTime = *req.EndTime
		materialChange = true
	}
	if req.Location != nil && *req.Location != event.Location {
		event.Location = *req.Location
		materialChange = true
	}
	if req.Coordinates != nil {
		event.LocationLat = &req.Coordinates.Lat
		event.LocationLng = &req.Coordinates.Lng
	}
	if req.Requirements != nil {
		event.Requirements = req.Requirements
	}
	if req.MaxStaff != nil {
		event.MaxStaff = req.MaxStaff
	}

	cancelled := false
	if req.Status != nil && *req.Status != event.Status {
		event.Status = *req.Status
		cancelled = event.Status == model.EventStatusCancelled
	}
	event.UpdatedAt = time.Now()

	if err := s.repo.Event.Update(ctx, event); err != nil {
		s.logger.Error("更新活动失败", zap.String("event_id", id), zap.Error(err))
		return nil, err
	}

	if cancelled {
		s.notifier.NotifyEventChanged(ctx, event, true)
	} else if materialChange {
		s.notifier.NotifyEventChanged(ctx, event, false)
	}

	row, err := s.repo.Event.GetWithStats(ctx, id, "")
	if err != nil {
		return nil, err
	}
	resp := toEventResponse(row)
	return &resp, nil
}

// Delete 删除活动。删除前按取消处理通知已批准员工。
func (s *eventService) Delete(ctx context.Context, id string) error {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 活动不存在", apperrors.ErrNotFound)
		}
		return err
	}

	s.notifier.NotifyEventChanged(ctx, event, true)

	if err := s.repo.Event.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 活动不存在", apperrors.ErrNotFound)
		}
		s.logger.Error("删除活动失败", zap.String("event_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("活动已删除", zap.String("event_id", id))
	return nil
}

func (s *eventService) List(ctx context.Context, viewerID string, req *dto.EventListRequest) ([]dto.EventResponse, error) {
	rows, err := s.repo.Event.List(ctx, &repository.EventFilters{
		Status:   req.Status,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Location: req.Location,
	}, viewerID)
	if err != nil {
		s.logger.Error("查询活动列表失败", zap.Error(err))
		return nil, err
	}

	resps := make([]dto.EventResponse, 0, len(rows))
	for i := range rows {
		resps = append(resps, toEventResponse(&rows[i]))
	}
	return resps, nil
}

func toEventResponse(row *repository.EventWithStats) dto.EventResponse {
	resp := dto.EventResponse{
		ID:                 row.EventID,
		Title:              row.Title,
		Description:        row.Description,
		Date:               row.Date.Format(dateLayout),
		StartTime:          row.StartTime,
		EndTime:            row.EndTime,
		Location:           row.Location,
		Requirements:       row.Requirements,
		MaxStaff:           row.MaxStaff,
		Status:             row.Status,
		CreatedByName:      row.CreatedByName,
		ApprovedStaffCount: row.ApprovedStaffCount,
		MySignupStatus:     row.MySignupStatus,
		CreatedAt:          row.CreatedAt,
	}
	if row.LocationLat != nil && row.LocationLng != nil {
		resp.Coordinates = &dto.GeoPoint{Lat: *row.LocationLat, Lng: *row.LocationLng}
	}
	return resp
}
