package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	apperrors "staffhub/backend/pkg/errors"
)

func setupAttendanceTest() (*attendanceService, *mockStore, *capturePublisher) {
	repo, store := newTestRepository()
	pub := newCapturePublisher()
	notifier := NewNotificationService(repo, pub, testLogger())
	svc := NewAttendanceService(repo, notifier, testLogger()).(*attendanceService)
	return svc, store, pub
}

// 固定时钟
func atFixedTime(svc *attendanceService, t time.Time) {
	svc.now = func() time.Time { return t }
}

func TestClockIn_OnTime(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	seedSignup(store, "event-1", "staff-1", model.SignupStatusApproved)
	atFixedTime(svc, event.StartAt())

	resp, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-1"})
	if err != nil {
		t.Fatalf("ClockIn 应成功，但返回错误: %v", err)
	}
	if resp.Status != model.AttendanceStatusOnDuty {
		t.Errorf("打卡后状态应为 on_duty，实际为 %s", resp.Status)
	}
	if resp.IsLate {
		t.Error("准点打卡不应判定为迟到")
	}
}

func TestClockIn_GraceBoundaryNotLate(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	seedSignup(store, "event-1", "staff-1", model.SignupStatusApproved)
	// 恰好在宽限期边界上（start + 15min）不算迟到
	atFixedTime(svc, event.StartAt().Add(lateGrace))

	resp, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-1"})
	if err != nil {
		t.Fatalf("ClockIn 应成功，但返回错误: %v", err)
	}
	if resp.IsLate {
		t.Error("宽限期边界打卡不应判定为迟到")
	}
}

func TestClockIn_Late(t *testing.T) {
	svc, store, pub := setupAttendanceTest()
	seedUser(store, "admin-1", "管理员", "admin@example.com", model.RoleAdmin)
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	seedSignup(store, "event-1", "staff-1", model.SignupStatusApproved)
	atFixedTime(svc, event.StartAt().Add(lateGrace+time.Second))

	resp, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-1"})
	if err != nil {
		t.Fatalf("ClockIn 应成功，但返回错误: %v", err)
	}
	if !resp.IsLate {
		t.Error("超过宽限期打卡应判定为迟到")
	}

	// 管理员应收到迟到告警
	found := false
	for _, n := range store.notifications {
		if n.UserID == "admin-1" && n.Title == "Late Clock-In" {
			found = true
		}
	}
	if !found {
		t.Error("管理员未收到迟到告警通知")
	}
	if len(pub.userEnvs["admin-1"]) != 1 {
		t.Errorf("管理员应收到 1 条推送，实际 %d 条", len(pub.userEnvs["admin-1"]))
	}
}

func TestClockIn_RequiresApprovedSignup(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	seedSignup(store, "event-1", "staff-1", model.SignupStatusPending)
	atFixedTime(svc, event.StartAt())

	_, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-1"})
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("报名未批准时打卡应返回 ErrForbidden，实际: %v", err)
	}
}

func TestClockIn_NoSignup(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	atFixedTime(svc, event.StartAt())

	_, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-1"})
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("未报名时打卡应返回 ErrForbidden，实际: %v", err)
	}
}

func TestClockIn_EventNotFound(t *testing.T) {
	svc, _, _ := setupAttendanceTest()

	_, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-404"})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("活动不存在时打卡应返回 ErrNotFound，实际: %v", err)
	}
}

func TestClockIn_AlreadyOnDuty(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	seedSignup(store, "event-1", "staff-1", model.SignupStatusApproved)
	atFixedTime(svc, event.StartAt())

	if _, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-1"}); err != nil {
		t.Fatalf("首次打卡失败: %v", err)
	}
	_, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-1"})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("重复打卡应返回 ErrConflict，实际: %v", err)
	}
}

func TestClockOut_Early(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedUser(store, "admin-1", "管理员", "admin@example.com", model.RoleAdmin)
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	seedSignup(store, "event-1", "staff-1", model.SignupStatusApproved)

	atFixedTime(svc, event.StartAt())
	if _, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-1"}); err != nil {
		t.Fatalf("打卡上班失败: %v", err)
	}

	atFixedTime(svc, event.EndAt().Add(-time.Hour))
	resp, err := svc.ClockOut(context.Background(), "staff-1", &dto.ClockOutRequest{EventID: "event-1"})
	if err != nil {
		t.Fatalf("ClockOut 应成功，但返回错误: %v", err)
	}
	if resp.Status != model.AttendanceStatusOffDuty {
		t.Errorf("下班后状态应为 off_duty，实际为 %s", resp.Status)
	}
	if resp.IsEarlyClockout == nil || !*resp.IsEarlyClockout {
		t.Error("提前下班应判定为早退")
	}

	found := false
	for _, n := range store.notifications {
		if n.UserID == "admin-1" && n.Title == "Early Clock-Out" {
			found = true
		}
	}
	if !found {
		t.Error("管理员未收到早退告警通知")
	}
}

func TestClockOut_AtEndNotEarly(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	seedSignup(store, "event-1", "staff-1", model.SignupStatusApproved)

	atFixedTime(svc, event.StartAt())
	if _, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-1"}); err != nil {
		t.Fatalf("打卡上班失败: %v", err)
	}

	atFixedTime(svc, event.EndAt())
	resp, err := svc.ClockOut(context.Background(), "staff-1", &dto.ClockOutRequest{EventID: "event-1"})
	if err != nil {
		t.Fatalf("ClockOut 应成功，但返回错误: %v", err)
	}
	if resp.IsEarlyClockout == nil || *resp.IsEarlyClockout {
		t.Error("准点下班不应判定为早退")
	}
}

func TestClockOut_CrossMidnightShift(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Night Market", nil)
	event.StartTime = "22:00"
	event.EndTime = "02:00" // 跨午夜，结束时间顺延到次日
	seedSignup(store, "event-1", "staff-1", model.SignupStatusApproved)

	atFixedTime(svc, event.StartAt())
	if _, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-1"}); err != nil {
		t.Fatalf("打卡上班失败: %v", err)
	}

	// 次日 01:00 下班，仍早于次日 02:00 的结束时间
	atFixedTime(svc, event.StartAt().Add(3*time.Hour))
	resp, err := svc.ClockOut(context.Background(), "staff-1", &dto.ClockOutRequest{EventID: "event-1"})
	if err != nil {
		t.Fatalf("ClockOut 应成功，但返回错误: %v", err)
	}
	if resp.IsEarlyClockout == nil || !*resp.IsEarlyClockout {
		t.Error("跨午夜班次在次日结束时间前下班应判定为早退")
	}
}

func TestClockOut_NotOnDuty(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedEvent(store, "event-1", "Music Festival", nil)

	_, err := svc.ClockOut(context.Background(), "staff-1", &dto.ClockOutRequest{EventID: "event-1"})
	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Errorf("未上岗时下班打卡应返回 ErrInvalidState，实际: %v", err)
	}
}

func TestStatus_NotClockedIn(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedEvent(store, "event-1", "Music Festival", nil)

	resp, err := svc.Status(context.Background(), "event-1", "staff-1")
	if err != nil {
		t.Fatalf("Status 失败: %v", err)
	}
	if resp.Status != model.AttendanceStatusNotClockedIn {
		t.Errorf("未打卡时状态应为 not_clocked_in，实际为 %s", resp.Status)
	}
	if resp.Attendance != nil {
		t.Error("未打卡时不应返回考勤记录")
	}
}

func TestStatus_OnDuty(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	seedSignup(store, "event-1", "staff-1", model.SignupStatusApproved)
	atFixedTime(svc, event.StartAt())

	if _, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{EventID: "event-1"}); err != nil {
		t.Fatalf("打卡上班失败: %v", err)
	}

	resp, err := svc.Status(context.Background(), "event-1", "staff-1")
	if err != nil {
		t.Fatalf("Status 失败: %v", err)
	}
	if resp.Status != model.AttendanceStatusOnDuty {
		t.Errorf("打卡后状态应为 on_duty，实际为 %s", resp.Status)
	}
	if resp.Attendance == nil {
		t.Fatal("on_duty 状态应附带考勤记录")
	}
}

func TestClockIn_RecordsLocation(t *testing.T) {
	svc, store, _ := setupAttendanceTest()
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	event := seedEvent(store, "event-1", "Music Festival", nil)
	seedSignup(store, "event-1", "staff-1", model.SignupStatusApproved)
	atFixedTime(svc, event.StartAt())

	resp, err := svc.ClockIn(context.Background(), "staff-1", &dto.ClockInRequest{
		EventID:  "event-1",
		Location: &dto.GeoPoint{Lat: 31.23, Lng: 121.47},
	})
	if err != nil {
		t.Fatalf("ClockIn 应成功，但返回错误: %v", err)
	}
	if resp.ClockInLoc == nil || resp.ClockInLoc.Lat != 31.23 {
		t.Error("打卡位置未被记录")
	}
}
