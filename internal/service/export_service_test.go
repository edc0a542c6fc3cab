package service

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
)

func setupExportTest() (ExportService, *mockStore) {
	repo, store := newTestRepository()
	svc := NewExportService(repo, testLogger())
	return svc, store
}

func seedClosedLog(s *mockStore, eventID, userID string, clockIn, clockOut time.Time, isLate, isEarly bool) {
	early := isEarly
	s.logs = append(s.logs, &model.AttendanceLog{
		AttendanceID:    s.nextID("att"),
		EventID:         eventID,
		UserID:          userID,
		ClockIn:         clockIn,
		ClockOut:        &clockOut,
		Status:          model.AttendanceStatusOffDuty,
		IsLate:          isLate,
		IsEarlyClockout: &early,
	})
}

func seedExportFixture(store *mockStore) {
	seedUser(store, "staff-1", "Alice Zhang", "alice@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	start := event.StartAt()
	seedClosedLog(store, "event-1", "staff-1", start, start.Add(8*time.Hour), false, false)
}

func TestReport_OnlyClosedSessions(t *testing.T) {
	svc, store := setupExportTest()
	seedExportFixture(store)
	// 在岗会话不计入报表
	store.logs = append(store.logs, &model.AttendanceLog{
		AttendanceID: store.nextID("att"),
		EventID:      "event-1",
		UserID:       "staff-1",
		ClockIn:      time.Now(),
		Status:       model.AttendanceStatusOnDuty,
	})

	rows, err := svc.Report(context.Background(), &dto.AttendanceReportRequest{})
	if err != nil {
		t.Fatalf("Report 失败: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("报表只应含已闭合会话，期望 1 行，实际 %d 行", len(rows))
	}
	r := rows[0]
	if r.UserName != "Alice Zhang" || r.UserEmail != "alice@example.com" {
		t.Errorf("报表行用户信息不符: %s / %s", r.UserName, r.UserEmail)
	}
	if r.EventTitle != "Music Festival" {
		t.Errorf("报表行活动标题不符: %q", r.EventTitle)
	}
	if r.EventDate != "2026-12-01" {
		t.Errorf("活动日期格式应为 2006-01-02，实际为 %q", r.EventDate)
	}
	if r.HoursWorked != 8 {
		t.Errorf("工时应为 8 小时，实际为 %v", r.HoursWorked)
	}
}

func TestReportCSV_ColumnOrder(t *testing.T) {
	svc, store := setupExportTest()
	seedExportFixture(store)

	buf, filename, err := svc.ReportCSV(context.Background(), &dto.AttendanceReportRequest{})
	if err != nil {
		t.Fatalf("ReportCSV 失败: %v", err)
	}
	if !strings.HasPrefix(filename, "attendance-report-") || !strings.HasSuffix(filename, ".csv") {
		t.Errorf("CSV 文件名不符: %q", filename)
	}

	records, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV 解析失败: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("应含表头 + 1 行数据，实际 %d 行", len(records))
	}

	wantHeader := []string{
		"User Name", "Email", "Event", "Date",
		"Clock In", "Clock Out", "Hours Worked", "Is Late", "Early Clockout",
	}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("表头第 %d 列应为 %q，实际为 %q", i+1, col, records[0][i])
		}
	}

	row := records[1]
	if row[0] != "Alice Zhang" || row[1] != "alice@example.com" {
		t.Errorf("数据行用户信息不符: %v", row[:2])
	}
	if row[3] != "2026-12-01" {
		t.Errorf("日期列不符: %q", row[3])
	}
	if row[6] != "8.00" {
		t.Errorf("工时应保留两位小数 8.00，实际为 %q", row[6])
	}
	if row[7] != "No" || row[8] != "No" {
		t.Errorf("布尔列应为 Yes/No，实际为 %q / %q", row[7], row[8])
	}
}

func TestReportCSV_LateAndEarlyFlags(t *testing.T) {
	svc, store := setupExportTest()
	seedUser(store, "staff-1", "Alice Zhang", "alice@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	start := event.StartAt()
	seedClosedLog(store, "event-1", "staff-1", start.Add(30*time.Minute), start.Add(6*time.Hour), true, true)

	buf, _, err := svc.ReportCSV(context.Background(), &dto.AttendanceReportRequest{})
	if err != nil {
		t.Fatalf("ReportCSV 失败: %v", err)
	}
	records, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV 解析失败: %v", err)
	}
	row := records[1]
	if row[7] != "Yes" {
		t.Errorf("迟到列应为 Yes，实际为 %q", row[7])
	}
	if row[8] != "Yes" {
		t.Errorf("早退列应为 Yes，实际为 %q", row[8])
	}
	if row[6] != "5.50" {
		t.Errorf("工时应为 5.50，实际为 %q", row[6])
	}
}

func TestReportExcel(t *testing.T) {
	svc, store := setupExportTest()
	seedExportFixture(store)

	buf, filename, err := svc.ReportExcel(context.Background(), &dto.AttendanceReportRequest{})
	if err != nil {
		t.Fatalf("ReportExcel 失败: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("Excel 文件名应以 .xlsx 结尾: %q", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("Excel 文件打开失败: %v", err)
	}
	defer f.Close()

	const sheet = "Attendance Report"
	if a1, _ := f.GetCellValue(sheet, "A1"); a1 != "User Name" {
		t.Errorf("A1 应为 User Name，实际为 %q", a1)
	}
	if a2, _ := f.GetCellValue(sheet, "A2"); a2 != "Alice Zhang" {
		t.Errorf("A2 应为 Alice Zhang，实际为 %q", a2)
	}
	if g2, _ := f.GetCellValue(sheet, "G2"); g2 != "8.00" {
		t.Errorf("G2 工时应为 8.00，实际为 %q", g2)
	}
}
