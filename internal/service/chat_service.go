package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
	apperrors "staffhub/backend/pkg/errors"
)

// ChatService 聊天业务接口。
//
// 活动聊天室与活动 1:1，首次访问时惰性创建；
// 发言资格：管理员或持有该活动 approved 报名的员工。
type ChatService interface {
	ListRooms(ctx context.Context, userID string, isAdmin bool) ([]dto.ChatRoomResponse, error)
	EventRoom(ctx context.Context, eventID, userID string, isAdmin bool) (*dto.ChatRoomResponse, error)
	Messages(ctx context.Context, roomID, userID string, isAdmin bool, before string, limit int) ([]dto.ChatMessageResponse, error)
	SendMessage(ctx context.Context, roomID, userID string, isAdmin bool, req *dto.SendMessageRequest) (*dto.ChatMessageResponse, error)
	FlagMessage(ctx context.Context, messageID string) error
}

type chatService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewChatService 创建 ChatService 实例
func NewChatService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) ChatService {
	return &chatService{repo: repo, notifier: notifier, logger: logger}
}

func (s *chatService) ListRooms(ctx context.Context, userID string, isAdmin bool) ([]dto.ChatRoomResponse, error) {
	rooms, err := s.repo.Chat.ListRooms(ctx, userID, isAdmin)
	if err != nil {
		s.logger.Error("查询聊天室列表失败", zap.Error(err))
		return nil, err
	}

	resps := make([]dto.ChatRoomResponse, 0, len(rooms))
	for i := range rooms {
		r := dto.ChatRoomResponse{
			RoomID:        rooms[i].RoomID,
			EventID:       rooms[i].EventID,
			Name:          rooms[i].Name,
			Type:          rooms[i].Type,
			EventTitle:    rooms[i].EventTitle,
			MessageCount:  rooms[i].MessageCount,
			LastMessageAt: rooms[i].LastMessageAt,
		}
		if rooms[i].EventDate != nil {
			d := rooms[i].EventDate.Format(dateLayout)
			r.EventDate = &d
		}
		resps = append(resps, r)
	}
	return resps, nil
}

// EventRoom 获取活动聊天室，不存在则惰性创建
func (s *chatService) EventRoom(ctx context.Context, eventID, userID string, isAdmin bool) (*dto.ChatRoomResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 活动不存在", apperrors.ErrNotFound)
		}
		return nil, err
	}

	if err := s.requireParticipant(ctx, eventID, userID, isAdmin); err != nil {
		return nil, err
	}

	room, err := s.repo.Chat.GetRoomByEvent(ctx, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		room = &model.ChatRoom{
			EventID: &event.EventID,
			Name:    event.Title,
			Type:    model.ChatRoomTypeEvent,
		}
		if err := s.repo.Chat.CreateRoom(ctx, room); err != nil {
			s.logger.Error("创建聊天室失败", zap.String("event_id", eventID), zap.Error(err))
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	d := event.Date.Format(dateLayout)
	return &dto.ChatRoomResponse{
		RoomID:     room.RoomID,
		EventID:    room.EventID,
		Name:       room.Name,
		Type:       room.Type,
		EventTitle: &event.Title,
		EventDate:  &d,
	}, nil
}

func (s *chatService) Messages(ctx context.Context, roomID, userID string, isAdmin bool, before string, limit int) ([]dto.ChatMessageResponse, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.EventID != nil {
		if err := s.requireParticipant(ctx, *room.EventID, userID, isAdmin); err != nil {
			return nil, err
		}
	}

	msgs, err := s.repo.Chat.ListMessages(ctx, roomID, before, limit)
	if err != nil {
		s.logger.Error("查询聊天消息失败", zap.Error(err))
		return nil, err
	}

	resps := make([]dto.ChatMessageResponse, 0, len(msgs))
	for i := range msgs {
		resps = append(resps, toChatMessageResponse(&msgs[i]))
	}
	return resps, nil
}

func (s *chatService) SendMessage(ctx context.Context, roomID, userID string, isAdmin bool, req *dto.SendMessageRequest) (*dto.ChatMessageResponse, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.EventID != nil {
		if err := s.requireParticipant(ctx, *room.EventID, userID, isAdmin); err != nil {
			return nil, err
		}
	}

	msg := &model.ChatMessage{
		RoomID:  roomID,
		UserID:  userID,
		Message: req.Message,
	}
	if err := s.repo.Chat.CreateMessage(ctx, msg); err != nil {
		s.logger.Error("写入聊天消息失败", zap.Error(err))
		return nil, err
	}

	full, err := s.repo.Chat.GetMessageWithUser(ctx, msg.MessageID)
	if err != nil {
		return nil, err
	}
	resp := toChatMessageResponse(full)

	// 实时推送给房间订阅者，失败不影响已落库的消息
	s.notifier.NotifyChatMessage(ctx, room, &resp)

	return &resp, nil
}

// FlagMessage 标记违规消息（管理员）
func (s *chatService) FlagMessage(ctx context.Context, messageID string) error {
	err := s.repo.Chat.FlagMessage(ctx, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: 消息不存在", apperrors.ErrNotFound)
	}
	return err
}

func (s *chatService) getRoom(ctx context.Context, roomID string) (*model.ChatRoom, error) {
	room, err := s.repo.Chat.GetRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 聊天室不存在", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return room, nil
}

// requireParticipant 活动聊天室访问资格：管理员或 approved 报名者
func (s *chatService) requireParticipant(ctx context.Context, eventID, userID string, isAdmin bool) error {
	if isAdmin {
		return nil
	}
	signup, err := s.repo.Signup.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 非活动参与者", apperrors.ErrForbidden)
		}
		return err
	}
	if signup.Status != model.SignupStatusApproved {
		return fmt.Errorf("%w: 非活动参与者", apperrors.ErrForbidden)
	}
	return nil
}

func toChatMessageResponse(msg *model.ChatMessage) dto.ChatMessageResponse {
	resp := dto.ChatMessageResponse{
		MessageID: msg.MessageID,
		RoomID:    msg.RoomID,
		UserID:    msg.UserID,
		Message:   msg.Message,
		IsFlagged: msg.IsFlagged,
		CreatedAt: msg.CreatedAt,
	}
	if u := msg.User; u != nil {
		resp.UserName = u.Name
		resp.UserEmail = u.Email
		resp.ProfilePhotoURL = u.ProfilePhotoURL
	}
	return resp
}
