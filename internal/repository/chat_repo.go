package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"staffhub/backend/internal/model"
)

// ChatRoomWithMeta 聊天室 + 活动信息与消息统计
type ChatRoomWithMeta struct {
	model.ChatRoom
	EventTitle    *string    `json:"event_title,omitempty"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	MessageCount  int64      `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// ChatRepository 聊天数据访问接口
type ChatRepository interface {
	GetRoomByEvent(ctx context.Context, eventID string) (*model.ChatRoom, error)
	CreateRoom(ctx context.Context, room *model.ChatRoom) error
	GetRoomByID(ctx context.Context, roomID string) (*model.ChatRoom, error)
	ListRooms(ctx context.Context, userID string, isAdmin bool) ([]ChatRoomWithMeta, error)
	ListMessages(ctx context.Context, roomID string, before string, limit int) ([]model.ChatMessage, error)
	ListParticipantIDs(ctx context.Context, roomID string) ([]string, error)
	CreateMessage(ctx context.Context, msg *model.ChatMessage) error
	GetMessageWithUser(ctx context.Context, messageID string) (*model.ChatMessage, error)
	FlagMessage(ctx context.Context, messageID string) error
}

// chatRepo ChatRepository 的 GORM 实现
type chatRepo struct {
	db *gorm.DB
}

// NewChatRepo 创建 ChatRepository 实例
func NewChatRepo(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) GetRoomByEvent(ctx context.Context, eventID string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND type = ?", eventID, model.ChatRoomTypeEvent).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateRoom 创建聊天室。活动聊天室受唯一索引 uq_chat_room_event 保护，
// 并发惰性创建时落败方回读已有房间。
func (r *chatRepo) CreateRoom(ctx context.Context, room *model.ChatRoom) error {
	err := r.db.WithContext(ctx).Create(room).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) && room.EventID != nil {
		existing, getErr := r.GetRoomByEvent(ctx, *room.EventID)
		if getErr != nil {
			return err
		}
		*room = *existing
		return nil
	}
	return err
}

func (r *chatRepo) GetRoomByID(ctx context.Context, roomID string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms 列出可见聊天室：管理员看全部活动聊天室，
// 员工只看自己已批准报名的活动聊天室
func (r *chatRepo) ListRooms(ctx context.Context, userID string, isAdmin bool) ([]ChatRoomWithMeta, error) {
	db := r.db.WithContext(ctx).Model(&model.ChatRoom{}).
		Select(`chat_rooms.*,
			(SELECT e.title FROM events e WHERE e.event_id = chat_rooms.event_id) AS event_title,
			(SELECT e.date FROM events e WHERE e.event_id = chat_rooms.event_id) AS event_date,
			(SELECT COUNT(*) FROM chat_messages m WHERE m.room_id = chat_rooms.room_id) AS message_count,
			(SELECT MAX(m.created_at) FROM chat_messages m WHERE m.room_id = chat_rooms.room_id) AS last_message_at`)

	if !isAdmin {
		db = db.Where(`chat_rooms.event_id IN (
			SELECT s.event_id FROM event_signups s
			WHERE s.user_id = ? AND s.status = ?)`, userID, model.SignupStatusApproved)
	}

	var rooms []ChatRoomWithMeta
	err := db.Order("chat_rooms.created_at DESC").Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListMessages 按时间倒序分页拉取消息，before 为游标（消息创建时间，RFC3339）
func (r *chatRepo) ListMessages(ctx context.Context, roomID string, before string, limit int) ([]model.ChatMessage, error) {
	db := r.db.WithContext(ctx).
		Preload("User").
		Where("room_id = ?", roomID)
	if before != "" {
		db = db.Where("created_at < ?", before)
	}
	if limit <= 0 {
		limit = 50
	}

	var msgs []model.ChatMessage
	err := db.Order("created_at DESC").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListParticipantIDs 聊天室历史参与者（发过言的去重用户）
func (r *chatRepo) ListParticipantIDs(ctx context.Context, roomID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Distinct("user_id").
		Where("room_id = ?", roomID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *chatRepo) CreateMessage(ctx context.Context, msg *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *chatRepo) GetMessageWithUser(ctx context.Context, messageID string) (*model.ChatMessage, error) {
	var msg model.ChatMessage
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("message_id = ?", messageID).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatRepo) FlagMessage(ctx context.Context, messageID string) error {
	res := r.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Where("message_id = ?", messageID).
		Update("is_flagged", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
