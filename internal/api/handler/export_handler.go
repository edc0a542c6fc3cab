package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/service"
	"staffhub/backend/pkg/response"
)

// ExportHandler 考勤报表导出 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// AttendanceReport 考勤报表（管理员）
// GET /api/v1/attendance/report?format=json|csv|xlsx
func (h *ExportHandler) AttendanceReport(c *gin.Context) {
	var req dto.AttendanceReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	switch req.Format {
	case "csv":
		buf, filename, err := h.exportSvc.ReportCSV(c.Request.Context(), &req)
		if err != nil {
			response.InternalError(c)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())

	case "xlsx":
		buf, filename, err := h.exportSvc.ReportExcel(c.Request.Context(), &req)
		if err != nil {
			response.InternalError(c)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())

	default:
		rows, err := h.exportSvc.Report(c.Request.Context(), &req)
		if err != nil {
			response.InternalError(c)
			return
		}
		response.OK(c, rows)
	}
}
