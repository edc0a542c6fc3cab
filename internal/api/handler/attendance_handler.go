package handler

import (
	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/service"
	"staffhub/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// ClockIn 上班打卡
// POST /api/v1/attendance/clock-in
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	log, err := h.attendanceSvc.ClockIn(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, log)
}

// ClockOut 下班打卡
// POST /api/v1/attendance/clock-out
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ClockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	log, err := h.attendanceSvc.ClockOut(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, log)
}

// Status 当前考勤状态
// GET /api/v1/attendance/status/:eventId
func (h *AttendanceHandler) Status(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	status, err := h.attendanceSvc.Status(c.Request.Context(), c.Param("eventId"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, status)
}

// MyLogs 我的考勤记录
// GET /api/v1/attendance/my-logs
func (h *AttendanceHandler) MyLogs(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AttendanceLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logs, err := h.attendanceSvc.MyLogs(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, logs)
}

// Logs 考勤记录列表（管理员）
// GET /api/v1/attendance/logs
func (h *AttendanceHandler) Logs(c *gin.Context) {
	var req dto.AttendanceLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logs, err := h.attendanceSvc.Logs(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, logs)
}
