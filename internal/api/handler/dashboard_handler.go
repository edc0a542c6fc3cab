package handler

import (
	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/service"
	"staffhub/backend/pkg/response"
)

// DashboardHandler 仪表盘模块 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// AdminDashboard 管理端仪表盘
// GET /api/v1/dashboard/admin
func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, err := h.dashboardSvc.Admin(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, data)
}

// StaffDashboard 员工端仪表盘
// GET /api/v1/dashboard/staff
func (h *DashboardHandler) StaffDashboard(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, err := h.dashboardSvc.Staff(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, data)
}
