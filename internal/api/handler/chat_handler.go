package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/service"
	"staffhub/backend/pkg/response"
)

// ChatHandler 聊天模块 HTTP 处理器
type ChatHandler struct {
	chatSvc service.ChatService
}

// NewChatHandler 创建 ChatHandler
func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// ListRooms 我的聊天室列表
// GET /api/v1/chat/rooms
func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rooms, err := h.chatSvc.ListRooms(c.Request.Context(), userID, isAdmin(c))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, rooms)
}

// EventRoom 获取活动聊天室（不存在则创建）
// GET /api/v1/chat/events/:eventId/room
func (h *ChatHandler) EventRoom(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	room, err := h.chatSvc.EventRoom(c.Request.Context(), c.Param("eventId"), userID, isAdmin(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, room)
}

// ListMessages 聊天消息（倒序分页，before 为时间游标）
// GET /api/v1/chat/rooms/:roomId/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.chatSvc.Messages(c.Request.Context(),
		c.Param("roomId"), userID, isAdmin(c), c.Query("before"), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, messages)
}

// SendMessage 发送消息
// POST /api/v1/chat/rooms/:roomId/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	message, err := h.chatSvc.SendMessage(c.Request.Context(),
		c.Param("roomId"), userID, isAdmin(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, message)
}

// FlagMessage 标记违规消息（管理员）
// PUT /api/v1/chat/messages/:id/flag
func (h *ChatHandler) FlagMessage(c *gin.Context) {
	if err := h.chatSvc.FlagMessage(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
