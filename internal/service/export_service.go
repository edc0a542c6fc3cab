package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/repository"
)

// 报表列顺序（CSV 与 Excel 共用）
var reportHeader = []string{
	"User Name", "Email", "Event", "Date",
	"Clock In", "Clock Out", "Hours Worked", "Is Late", "Early Clockout",
}

// ExportService 考勤报表导出业务接口
//
// 设计说明：
//   - 报表只统计已闭合（off_duty）的考勤会话，在岗记录不计工时
//   - CSV / Excel 以 bytes.Buffer 返回，由 Handler 层设置响应头后写入
//   - JSON 形态复用同一行数据，供前端表格直接渲染
type ExportService interface {
	Report(ctx context.Context, req *dto.AttendanceReportRequest) ([]dto.AttendanceReportRow, error)
	ReportCSV(ctx context.Context, req *dto.AttendanceReportRequest) (*bytes.Buffer, string, error)
	ReportExcel(ctx context.Context, req *dto.AttendanceReportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) Report(ctx context.Context, req *dto.AttendanceReportRequest) ([]dto.AttendanceReportRow, error) {
	raw, err := s.repo.Attendance.Report(ctx, &repository.AttendanceFilters{
		UserID:   req.UserID,
		EventID:  req.EventID,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	})
	if err != nil {
		s.logger.Error("查询考勤报表失败", zap.Error(err))
		return nil, err
	}

	rows := make([]dto.AttendanceReportRow, 0, len(raw))
	for i := range raw {
		r := raw[i]
		rows = append(rows, dto.AttendanceReportRow{
			UserID:          r.UserID,
			UserName:        r.UserName,
			UserEmail:       r.UserEmail,
			EventID:         r.EventID,
			EventTitle:      r.EventTitle,
			EventDate:       r.EventDate.Format(dateLayout),
			ClockIn:         r.ClockIn,
			ClockOut:        r.ClockOut,
			HoursWorked:     r.ClockOut.Sub(r.ClockIn).Hours(),
			IsLate:          r.IsLate,
			IsEarlyClockout: r.IsEarlyClockout,
		})
	}
	return rows, nil
}

// ReportCSV 导出 CSV，列顺序与 Excel 一致
func (s *exportService) ReportCSV(ctx context.Context, req *dto.AttendanceReportRequest) (*bytes.Buffer, string, error) {
	rows, err := s.Report(ctx, req)
	if err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(reportHeader); err != nil {
		return nil, "", err
	}
	for _, r := range rows {
		record := []string{
			r.UserName,
			r.UserEmail,
			r.EventTitle,
			r.EventDate,
			r.ClockIn.Format(time.RFC3339),
			r.ClockOut.Format(time.RFC3339),
			strconv.FormatFloat(r.HoursWorked, 'f', 2, 64),
			yesNo(r.IsLate),
			yesNo(r.IsEarlyClockout),
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	return buf, reportFilename("csv"), nil
}

// ReportExcel 导出 Excel (.xlsx)
func (s *exportService) ReportExcel(ctx context.Context, req *dto.AttendanceReportRequest) (*bytes.Buffer, string, error) {
	rows, err := s.Report(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Attendance Report"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	f.SetColWidth(sheetName, "A", "B", 22)
	f.SetColWidth(sheetName, "C", "C", 28)
	f.SetColWidth(sheetName, "D", "F", 20)
	f.SetColWidth(sheetName, "G", "I", 14)

	// 表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for col, title := range reportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheetName, cell, title)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, r := range rows {
		values := []interface{}{
			r.UserName,
			r.UserEmail,
			r.EventTitle,
			r.EventDate,
			r.ClockIn.Format("2006-01-02 15:04"),
			r.ClockOut.Format("2006-01-02 15:04"),
			strconv.FormatFloat(r.HoursWorked, 'f', 2, 64),
			yesNo(r.IsLate),
			yesNo(r.IsEarlyClockout),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 文件失败", zap.Error(err))
		return nil, "", err
	}
	return buf, reportFilename("xlsx"), nil
}

func reportFilename(ext string) string {
	return fmt.Sprintf("attendance-report-%s.%s", time.Now().Format("20060102"), ext)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
