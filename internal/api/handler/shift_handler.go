package handler

import (
	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/service"
	"staffhub/backend/pkg/response"
)

// ShiftHandler 班次（报名生命周期）模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ListAvailable 可报名班次（upcoming 且未满员）
// GET /api/v1/shifts/available
func (h *ShiftHandler) ListAvailable(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AvailableShiftsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shifts, err := h.shiftSvc.ListAvailable(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, shifts)
}

// SignUp 报名班次
// POST /api/v1/shifts/:eventId/signup
func (h *ShiftHandler) SignUp(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	signup, err := h.shiftSvc.SignUp(c.Request.Context(), c.Param("eventId"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, signup)
}

// Withdraw 撤回报名
// DELETE /api/v1/shifts/:eventId/signup
func (h *ShiftHandler) Withdraw(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	signup, err := h.shiftSvc.Withdraw(c.Request.Context(), c.Param("eventId"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, signup)
}

// DecideSignup 审批报名（管理员）
// PUT /api/v1/shifts/:eventId/signups/:userId
func (h *ShiftHandler) DecideSignup(c *gin.Context) {
	deciderID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DecideSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	signup, err := h.shiftSvc.Decide(c.Request.Context(),
		c.Param("eventId"), c.Param("userId"), deciderID, req.Action)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, signup)
}

// MyShifts 我的班次
// GET /api/v1/shifts/my
func (h *ShiftHandler) MyShifts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MyShiftsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shifts, err := h.shiftSvc.MyShifts(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, shifts)
}
