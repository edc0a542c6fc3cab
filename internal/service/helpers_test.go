package service

import (
	"time"

	"go.uber.org/zap"

	"staffhub/backend/internal/model"
	"staffhub/backend/internal/realtime"
)

// capturePublisher 捕获推送内容的 Publisher 桩实现
type capturePublisher struct {
	userEnvs map[string][]realtime.Envelope
	roomEnvs map[string][]roomPush
}

type roomPush struct {
	env    realtime.Envelope
	except string
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{
		userEnvs: make(map[string][]realtime.Envelope),
		roomEnvs: make(map[string][]roomPush),
	}
}

func (p *capturePublisher) PublishToUser(userID string, env realtime.Envelope) {
	p.userEnvs[userID] = append(p.userEnvs[userID], env)
}

func (p *capturePublisher) PublishToRoom(roomID string, env realtime.Envelope, exceptUserID string) {
	p.roomEnvs[roomID] = append(p.roomEnvs[roomID], roomPush{env: env, except: exceptUserID})
}

// ── 测试数据种子 ──

func seedUser(s *mockStore, id, name, email, role string) *model.User {
	u := &model.User{
		UserID:       id,
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$placeholder",
		Role:         role,
		Status:       model.UserStatusActive,
		CreatedAt:    time.Now(),
	}
	s.users[id] = u
	return u
}

// seedEvent 默认 2026-12-01 09:00-17:00 的 upcoming 活动
func seedEvent(s *mockStore, id, title string, maxStaff *int) *model.Event {
	e := &model.Event{
		EventID:   id,
		Title:     title,
		Date:      time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "17:00",
		Location:  "市民广场",
		MaxStaff:  maxStaff,
		Status:    model.EventStatusUpcoming,
		CreatedBy: "admin-1",
		CreatedAt: time.Now(),
	}
	s.events[id] = e
	return e
}

func seedSignup(s *mockStore, eventID, userID, status string) *model.EventSignup {
	sg := &model.EventSignup{
		SignupID:  s.nextID("signup"),
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		AppliedAt: time.Now(),
	}
	s.signups = append(s.signups, sg)
	return sg
}

func intPtr(n int) *int { return &n }

func testLogger() *zap.Logger { return zap.NewNop() }
