package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
	apperrors "staffhub/backend/pkg/errors"
)

// ShiftService 班次（报名生命周期）业务接口。
//
// 状态机：(none) → pending → approved/rejected；pending|approved → withdrawn。
// withdrawn/rejected 之后允许重新报名，产生新的 pending 记录。
type ShiftService interface {
	ListAvailable(ctx context.Context, userID string, req *dto.AvailableShiftsRequest) ([]dto.EventResponse, error)
	SignUp(ctx context.Context, eventID, userID string) (*dto.SignupResponse, error)
	Withdraw(ctx context.Context, eventID, userID string) (*dto.SignupResponse, error)
	Decide(ctx context.Context, eventID, targetUserID, deciderID, action string) (*dto.SignupResponse, error)
	MyShifts(ctx context.Context, userID string, req *dto.MyShiftsRequest) ([]dto.MyShiftResponse, error)
}

type shiftService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, notifier: notifier, logger: logger}
}

func (s *shiftService) ListAvailable(ctx context.Context, userID string, req *dto.AvailableShiftsRequest) ([]dto.EventResponse, error) {
	rows, err := s.repo.Event.ListAvailable(ctx, userID, &repository.EventFilters{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Location: req.Location,
	})
	if err != nil {
		s.logger.Error("查询可报名班次失败", zap.Error(err))
		return nil, err
	}

	resps := make([]dto.EventResponse, 0, len(rows))
	for i := range rows {
		resps = append(resps, toEventResponse(&rows[i]))
	}
	return resps, nil
}

func (s *shiftService) SignUp(ctx context.Context, eventID, userID string) (*dto.SignupResponse, error) {
	signup, err := s.repo.Signup.SignUp(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("报名已提交",
		zap.String("event_id", eventID), zap.String("user_id", userID))

	// 事务已提交，通知失败不回滚报名
	event, eventErr := s.repo.Event.GetByID(ctx, eventID)
	applicant, userErr := s.repo.User.GetByID(ctx, userID)
	if eventErr != nil || userErr != nil {
		s.logger.Error("查询报名上下文失败，跳过新报名通知",
			zap.String("event_id", eventID),
			zap.String("user_id", userID),
			zap.NamedError("event_err", eventErr),
			zap.NamedError("user_err", userErr))
	} else {
		s.notifier.NotifyNewSignup(ctx, event, applicant)
	}

	resp := toSignupResponse(signup)
	return &resp, nil
}

func (s *shiftService) Withdraw(ctx context.Context, eventID, userID string) (*dto.SignupResponse, error) {
	signup, err := s.repo.Signup.Withdraw(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("报名已撤回",
		zap.String("event_id", eventID), zap.String("user_id", userID))

	resp := toSignupResponse(signup)
	return &resp, nil
}

func (s *shiftService) Decide(ctx context.Context, eventID, targetUserID, deciderID, action string) (*dto.SignupResponse, error) {
	var status string
	switch action {
	case "approve":
		status = model.SignupStatusApproved
	case "reject":
		status = model.SignupStatusRejected
	default:
		return nil, fmt.Errorf("%w: 未知操作 %q", apperrors.ErrValidation, action)
	}

	signup, err := s.repo.Signup.Decide(ctx, eventID, targetUserID, status, deciderID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("报名已审批",
		zap.String("event_id", eventID),
		zap.String("user_id", targetUserID),
		zap.String("status", status),
		zap.String("decided_by", deciderID))

	if event, err := s.repo.Event.GetByID(ctx, eventID); err == nil {
		s.notifier.NotifySignupDecision(ctx, event, signup)
	}

	resp := toSignupResponse(signup)
	return &resp, nil
}

func (s *shiftService) MyShifts(ctx context.Context, userID string, req *dto.MyShiftsRequest) ([]dto.MyShiftResponse, error) {
	signups, err := s.repo.Signup.ListByUser(ctx, userID, req.Status)
	if err != nil {
		s.logger.Error("查询我的班次失败", zap.Error(err))
		return nil, err
	}

	resps := make([]dto.MyShiftResponse, 0, len(signups))
	for i := range signups {
		sr := dto.MyShiftResponse{
			SignupStatus: signups[i].Status,
			AppliedAt:    signups[i].AppliedAt,
			DecidedAt:    signups[i].DecidedAt,
		}
		if e := signups[i].Event; e != nil {
			sr.EventResponse = dto.EventResponse{
				ID:           e.EventID,
				Title:        e.Title,
				Description:  e.Description,
				Date:         e.Date.Format(dateLayout),
				StartTime:    e.StartTime,
				EndTime:      e.EndTime,
				Location:     e.Location,
				Requirements: e.Requirements,
				MaxStaff:     e.MaxStaff,
				Status:       e.Status,
				CreatedAt:    e.CreatedAt,
			}
			if e.LocationLat != nil && e.LocationLng != nil {
				sr.Coordinates = &dto.GeoPoint{Lat: *e.LocationLat, Lng: *e.LocationLng}
			}
		}
		resps = append(resps, sr)
	}
	return resps, nil
}

func toSignupResponse(signup *model.EventSignup) dto.SignupResponse {
	return dto.SignupResponse{
		SignupID:  signup.SignupID,
		EventID:   signup.EventID,
		UserID:    signup.UserID,
		Status:    signup.Status,
		AppliedAt: signup.AppliedAt,
		DecidedAt: signup.DecidedAt,
		DecidedBy: signup.DecidedBy,
	}
}
