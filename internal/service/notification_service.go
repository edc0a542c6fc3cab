package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/realtime"
	"staffhub/backend/internal/repository"
	apperrors "staffhub/backend/pkg/errors"
)

// Publisher WebSocket 推送入口，由 realtime.Hub 实现
type Publisher interface {
	PublishToUser(userID string, env realtime.Envelope)
	PublishToRoom(roomID string, env realtime.Envelope, exceptUserID string)
}

// NotificationService 通知业务接口。
//
// Notify* 系列为状态流转后的派发钩子：先落库再尽力推送，
// 推送失败只记录日志，绝不反向影响已提交的业务事务。
type NotificationService interface {
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error)

	NotifySignupDecision(ctx context.Context, event *model.Event, signup *model.EventSignup)
	NotifyNewSignup(ctx context.Context, event *model.Event, applicant *model.User)
	NotifyAttendanceAlert(ctx context.Context, event *model.Event, user *model.User, late bool)
	NotifyEventChanged(ctx context.Context, event *model.Event, cancelled bool)
	NotifyChatMessage(ctx context.Context, room *model.ChatRoom, msg *dto.ChatMessageResponse)
}

type notificationService struct {
	repo      *repository.Repository
	publisher Publisher
	logger    *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, publisher Publisher, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, publisher: publisher, logger: logger}
}

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	f := &repository.NotificationFilters{
		Offset: req.GetOffset(),
		Limit:  req.GetPageSize(),
	}
	if req.IsRead != nil && !*req.IsRead {
		f.UnreadOnly = true
	}

	ns, total, err := s.repo.Notification.List(ctx, userID, f)
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.Error(err))
		return nil, 0, err
	}

	resps := make([]dto.NotificationResponse, 0, len(ns))
	for i := range ns {
		resps = append(resps, toNotificationResponse(&ns[i]))
	}
	return resps, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.Notification.UnreadCount(ctx, userID)
}

// MarkRead 标记已读。通知存在但属于他人时返回 Forbidden，
// 与"通知不存在"（NotFound）区分开
func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	err := s.repo.Notification.MarkRead(ctx, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if n, getErr := s.repo.Notification.GetByID(ctx, id); getErr == nil && n.UserID != userID {
			return fmt.Errorf("%w: 无权操作他人通知", apperrors.ErrForbidden)
		}
		return fmt.Errorf("%w: 通知不存在", apperrors.ErrNotFound)
	}
	return err
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.Notification.MarkAllRead(ctx, userID)
}

// Create 管理员手动创建通知
func (s *notificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 接收用户不存在", apperrors.ErrNotFound)
		}
		return nil, err
	}

	n := &model.Notification{
		UserID:         req.UserID,
		Type:           req.Type,
		Title:          req.Title,
		Message:        req.Message,
		RelatedEventID: req.RelatedEventID,
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Error("创建通知失败", zap.Error(err))
		return nil, err
	}

	resp := toNotificationResponse(n)
	s.push(n.UserID, resp)
	return &resp, nil
}

// ── 状态流转派发钩子 ──

// NotifySignupDecision 审批结果通知报名者
func (s *notificationService) NotifySignupDecision(ctx context.Context, event *model.Event, signup *model.EventSignup) {
	var title, verb string
	if signup.Status == model.SignupStatusApproved {
		title, verb = "Shift Approved", "approved"
	} else {
		title, verb = "Shift Rejected", "rejected"
	}

	s.deliver(ctx, model.Notification{
		UserID:         signup.UserID,
		Type:           model.NotificationTypeShiftApproval,
		Title:          title,
		Message:        fmt.Sprintf("Your signup for %q has been %s.", event.Title, verb),
		RelatedEventID: &event.EventID,
	})
}

// NotifyNewSignup 新报名通知全体管理员
func (s *notificationService) NotifyNewSignup(ctx context.Context, event *model.Event, applicant *model.User) {
	s.broadcastToAdmins(ctx, model.Notification{
		Type:           model.NotificationTypeShiftUpdate,
		Title:          "New Shift Sign-Up",
		Message:        fmt.Sprintf("%s signed up for %q.", applicant.Name, event.Title),
		RelatedEventID: &event.EventID,
	})
}

// NotifyAttendanceAlert 迟到/早退告警通知全体管理员
func (s *notificationService) NotifyAttendanceAlert(ctx context.Context, event *model.Event, user *model.User, late bool) {
	var title, verb string
	if late {
		title, verb = "Late Clock-In", "clocked in late"
	} else {
		title, verb = "Early Clock-Out", "clocked out early"
	}

	s.broadcastToAdmins(ctx, model.Notification{
		Type:           model.NotificationTypeAttendanceAlert,
		Title:          title,
		Message:        fmt.Sprintf("%s %s for %q.", user.Name, verb, event.Title),
		RelatedEventID: &event.EventID,
	})
}

// NotifyEventChanged 活动变更/取消通知所有已批准员工
func (s *notificationService) NotifyEventChanged(ctx context.Context, event *model.Event, cancelled bool) {
	signups, err := s.repo.Signup.ListApprovedByEvent(ctx, event.EventID)
	if err != nil {
		s.logger.Error("查询已批准报名失败，跳过活动变更通知",
			zap.String("event_id", event.EventID), zap.Error(err))
		return
	}
	if len(signups) == 0 {
		return
	}

	title := "Shift Updated"
	message := fmt.Sprintf("Details for %q have changed. Please review your shift.", event.Title)
	if cancelled {
		title = "Shift Cancelled"
		message = fmt.Sprintf("The event %q has been cancelled.", event.Title)
	}

	ns := make([]model.Notification, 0, len(signups))
	for i := range signups {
		ns = append(ns, model.Notification{
			UserID:         signups[i].UserID,
			Type:           model.NotificationTypeShiftUpdate,
			Title:          title,
			Message:        message,
			RelatedEventID: &event.EventID,
		})
	}
	if err := s.repo.Notification.CreateBatch(ctx, ns); err != nil {
		s.logger.Error("批量写入通知失败", zap.Error(err))
		return
	}
	for i := range ns {
		s.push(ns[i].UserID, toNotificationResponse(&ns[i]))
	}
}

// NotifyChatMessage 新消息实时推送到聊天室订阅者，并为历史参与者
// （发送者除外）落库 chat_message 通知后逐人推送
func (s *notificationService) NotifyChatMessage(ctx context.Context, room *model.ChatRoom, msg *dto.ChatMessageResponse) {
	if s.publisher != nil {
		s.publisher.PublishToRoom(room.RoomID, realtime.Envelope{
			Type: "chat_message",
			Data: msg,
		}, msg.UserID)
	}

	participantIDs, err := s.repo.Chat.ListParticipantIDs(ctx, room.RoomID)
	if err != nil {
		s.logger.Error("查询聊天室参与者失败，跳过消息通知",
			zap.String("room_id", room.RoomID), zap.Error(err))
		return
	}

	ns := make([]model.Notification, 0, len(participantIDs))
	for _, id := range participantIDs {
		if id == msg.UserID {
			continue
		}
		ns = append(ns, model.Notification{
			UserID:         id,
			Type:           model.NotificationTypeChatMessage,
			Title:          "New Chat Message",
			Message:        fmt.Sprintf("%s posted in %q.", msg.UserName, room.Name),
			RelatedEventID: room.EventID,
		})
	}
	if len(ns) == 0 {
		return
	}
	if err := s.repo.Notification.CreateBatch(ctx, ns); err != nil {
		s.logger.Error("批量写入通知失败", zap.Error(err))
		return
	}
	for i := range ns {
		s.push(ns[i].UserID, toNotificationResponse(&ns[i]))
	}
}

// deliver 单接收者：落库 + 推送
func (s *notificationService) deliver(ctx context.Context, n model.Notification) {
	if err := s.repo.Notification.Create(ctx, &n); err != nil {
		s.logger.Error("写入通知失败",
			zap.String("user_id", n.UserID), zap.String("type", n.Type), zap.Error(err))
		return
	}
	s.push(n.UserID, toNotificationResponse(&n))
}

// broadcastToAdmins 向全体活跃管理员派发同一通知
func (s *notificationService) broadcastToAdmins(ctx context.Context, tmpl model.Notification) {
	adminIDs, err := s.repo.User.ListIDsByRole(ctx, model.RoleAdmin)
	if err != nil {
		s.logger.Error("查询管理员列表失败，跳过通知派发", zap.Error(err))
		return
	}
	if len(adminIDs) == 0 {
		return
	}

	ns := make([]model.Notification, 0, len(adminIDs))
	for _, id := range adminIDs {
		n := tmpl
		n.UserID = id
		ns = append(ns, n)
	}
	if err := s.repo.Notification.CreateBatch(ctx, ns); err != nil {
		s.logger.Error("批量写入通知失败", zap.Error(err))
		return
	}
	for i := range ns {
		s.push(ns[i].UserID, toNotificationResponse(&ns[i]))
	}
}

func (s *notificationService) push(userID string, resp dto.NotificationResponse) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishToUser(userID, realtime.Envelope{
		Type: "notification",
		Data: resp,
	})
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	resp := dto.NotificationResponse{
		ID:             n.NotificationID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		RelatedEventID: n.RelatedEventID,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
	}
	if n.RelatedEvent != nil {
		resp.EventTitle = &n.RelatedEvent.Title
	}
	return resp
}
