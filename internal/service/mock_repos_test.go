package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
	apperrors "staffhub/backend/pkg/errors"
)

// mockStore 各 mock 仓储共享的内存数据，模拟同一数据库
type mockStore struct {
	users         map[string]*model.User
	events        map[string]*model.Event
	signups       []*model.EventSignup
	logs          []*model.AttendanceLog
	notifications []*model.Notification
	rooms         map[string]*model.ChatRoom
	messages      []*model.ChatMessage
	seq           int
}

func newMockStore() *mockStore {
	return &mockStore{
		users:  make(map[string]*model.User),
		events: make(map[string]*model.Event),
		rooms:  make(map[string]*model.ChatRoom),
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *mockStore) approvedCount(eventID string) int64 {
	var n int64
	for _, sg := range s.signups {
		if sg.EventID == eventID && sg.Status == model.SignupStatusApproved {
			n++
		}
	}
	return n
}

// newTestRepository 构造共享同一 mockStore 的仓储聚合
func newTestRepository() (*repository.Repository, *mockStore) {
	store := newMockStore()
	return &repository.Repository{
		User:         &mockUserRepo{store},
		Event:        &mockEventRepo{store},
		Signup:       &mockSignupRepo{store},
		Attendance:   &mockAttendanceRepo{store},
		Notification: &mockNotificationRepo{store},
		Chat:         &mockChatRepo{store},
	}, store
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *mockStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.s.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = m.s.nextID("user")
	}
	user.CreatedAt = time.Now()
	m.s.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.s.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, f *repository.UserListFilters) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		if f.Keyword != "" && !strings.Contains(u.Name, f.Keyword) && !strings.Contains(u.Email, f.Keyword) {
			continue
		}
		all = append(all, *u)
	}
	total := int64(len(all))
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	if f.Offset >= len(all) {
		return nil, total, nil
	}
	return all[f.Offset:end], total, nil
}

func (m *mockUserRepo) ListIDsByRole(_ context.Context, role string) ([]string, error) {
	var ids []string
	for _, u := range m.s.users {
		if u.Role == role && u.Status == model.UserStatusActive {
			ids = append(ids, u.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockUserRepo) CountActiveByRole(_ context.Context, role string) (int64, error) {
	ids, _ := m.ListIDsByRole(nil, role)
	return int64(len(ids)), nil
}

// ── Mock EventRepository ──

type mockEventRepo struct{ s *mockStore }

func (m *mockEventRepo) Create(_ context.Context, event *model.Event) error {
	if event.EventID == "" {
		event.EventID = m.s.nextID("event")
	}
	event.CreatedAt = time.Now()
	m.s.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	if e, ok := m.s.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) withStats(e *model.Event, viewerID string) repository.EventWithStats {
	row := repository.EventWithStats{
		Event:              *e,
		ApprovedStaffCount: m.s.approvedCount(e.EventID),
	}
	if creator, ok := m.s.users[e.CreatedBy]; ok {
		row.CreatedByName = creator.Name
	}
	if viewerID != "" {
		var latest *model.EventSignup
		for _, sg := range m.s.signups {
			if sg.EventID == e.EventID && sg.UserID == viewerID {
				if latest == nil || sg.AppliedAt.After(latest.AppliedAt) {
					latest = sg
				}
			}
		}
		if latest != nil {
			st := latest.Status
			row.MySignupStatus = &st
		}
	}
	return row
}

func (m *mockEventRepo) GetWithStats(_ context.Context, id, viewerID string) (*repository.EventWithStats, error) {
	e, ok := m.s.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	row := m.withStats(e, viewerID)
	return &row, nil
}

func (m *mockEventRepo) Update(_ context.Context, event *model.Event) error {
	m.s.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.s.events[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.s.events, id)
	return nil
}

func (m *mockEventRepo) matches(e *model.Event, f *repository.EventFilters) bool {
	if f == nil {
		return true
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.DateFrom != "" && e.Date.Format("2006-01-02") < f.DateFrom {
		return false
	}
	if f.DateTo != "" && e.Date.Format("2006-01-02") > f.DateTo {
		return false
	}
	if f.Location != "" && !strings.Contains(e.Location, f.Location) {
		return false
	}
	return true
}

func (m *mockEventRepo) List(_ context.Context, f *repository.EventFilters, viewerID string) ([]repository.EventWithStats, error) {
	var rows []repository.EventWithStats
	for _, e := range m.s.events {
		if m.matches(e, f) {
			rows = append(rows, m.withStats(e, viewerID))
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].EventID < rows[j].EventID })
	if f != nil && f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}
	return rows, nil
}

func (m *mockEventRepo) ListAvailable(_ context.Context, userID string, f *repository.EventFilters) ([]repository.EventWithStats, error) {
	var rows []repository.EventWithStats
	for _, e := range m.s.events {
		if e.Status != model.EventStatusUpcoming || !m.matches(e, f) {
			continue
		}
		if e.MaxStaff != nil && m.s.approvedCount(e.EventID) >= int64(*e.MaxStaff) {
			continue
		}
		rows = append(rows, m.withStats(e, userID))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].EventID < rows[j].EventID })
	return rows, nil
}

func (m *mockEventRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, e := range m.s.events {
		if e.Status == status {
			n++
		}
	}
	return n, nil
}

// ── Mock SignupRepository（忠实复刻状态机语义）──

type mockSignupRepo struct{ s *mockStore }

func (m *mockSignupRepo) SignUp(_ context.Context, eventID, userID string) (*model.EventSignup, error) {
	event, ok := m.s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: 活动不存在", apperrors.ErrNotFound)
	}
	if event.Status != model.EventStatusUpcoming {
		return nil, fmt.Errorf("%w: 活动不在报名阶段", apperrors.ErrInvalidState)
	}
	for _, sg := range m.s.signups {
		if sg.EventID == eventID && sg.UserID == userID && sg.Active() {
			return nil, fmt.Errorf("%w: 已报名该活动", apperrors.ErrConflict)
		}
	}
	if event.MaxStaff != nil && m.s.approvedCount(eventID) >= int64(*event.MaxStaff) {
		return nil, apperrors.ErrCapacityExceeded
	}

	signup := &model.EventSignup{
		SignupID:  m.s.nextID("signup"),
		EventID:   eventID,
		UserID:    userID,
		Status:    model.SignupStatusPending,
		AppliedAt: time.Now(),
	}
	m.s.signups = append(m.s.signups, signup)
	return signup, nil
}

func (m *mockSignupRepo) Withdraw(_ context.Context, eventID, userID string) (*model.EventSignup, error) {
	for _, sg := range m.s.signups {
		if sg.EventID == eventID && sg.UserID == userID && sg.Active() {
			sg.Status = model.SignupStatusWithdrawn
			return sg, nil
		}
	}
	return nil, fmt.Errorf("%w: 无可撤回的报名", apperrors.ErrNotFound)
}

func (m *mockSignupRepo) Decide(_ context.Context, eventID, userID, status, deciderID string) (*model.EventSignup, error) {
	if status == model.SignupStatusApproved {
		if event, ok := m.s.events[eventID]; ok && event.MaxStaff != nil {
			if m.s.approvedCount(eventID) >= int64(*event.MaxStaff) {
				return nil, apperrors.ErrCapacityExceeded
			}
		}
	}

	var latest *model.EventSignup
	for _, sg := range m.s.signups {
		if sg.EventID == eventID && sg.UserID == userID {
			if latest == nil || sg.AppliedAt.After(latest.AppliedAt) || sg.AppliedAt.Equal(latest.AppliedAt) {
				latest = sg
			}
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: 报名不存在", apperrors.ErrNotFound)
	}

	switch latest.Status {
	case model.SignupStatusPending:
		now := time.Now()
		latest.Status = status
		latest.DecidedAt = &now
		latest.DecidedBy = &deciderID
		return latest, nil
	case model.SignupStatusApproved, model.SignupStatusRejected:
		return nil, fmt.Errorf("%w: 报名已审批", apperrors.ErrConflict)
	default:
		return nil, fmt.Errorf("%w: 报名已撤回", apperrors.ErrInvalidState)
	}
}

func (m *mockSignupRepo) GetByEventAndUser(_ context.Context, eventID, userID string) (*model.EventSignup, error) {
	var latest *model.EventSignup
	for _, sg := range m.s.signups {
		if sg.EventID == eventID && sg.UserID == userID {
			if latest == nil || !sg.AppliedAt.Before(latest.AppliedAt) {
				latest = sg
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockSignupRepo) ListApprovedByEvent(_ context.Context, eventID string) ([]model.EventSignup, error) {
	var result []model.EventSignup
	for _, sg := range m.s.signups {
		if sg.EventID == eventID && sg.Status == model.SignupStatusApproved {
			cp := *sg
			cp.User = m.s.users[sg.UserID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockSignupRepo) ListByUser(_ context.Context, userID, status string) ([]model.EventSignup, error) {
	var result []model.EventSignup
	for _, sg := range m.s.signups {
		if sg.UserID != userID {
			continue
		}
		if status != "" && status != "all" && sg.Status != status {
			continue
		}
		cp := *sg
		cp.Event = m.s.events[sg.EventID]
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockSignupRepo) ListPendingRecent(_ context.Context, limit int) ([]model.EventSignup, error) {
	var result []model.EventSignup
	for _, sg := range m.s.signups {
		if sg.Status == model.SignupStatusPending {
			cp := *sg
			cp.User = m.s.users[sg.UserID]
			cp.Event = m.s.events[sg.EventID]
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AppliedAt.After(result[j].AppliedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockSignupRepo) ListApprovedUpcomingByUser(_ context.Context, userID string, limit int) ([]model.EventSignup, error) {
	var result []model.EventSignup
	for _, sg := range m.s.signups {
		if sg.UserID != userID || sg.Status != model.SignupStatusApproved {
			continue
		}
		event, ok := m.s.events[sg.EventID]
		if !ok || event.Status != model.EventStatusUpcoming {
			continue
		}
		cp := *sg
		cp.Event = event
		result = append(result, cp)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockSignupRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, sg := range m.s.signups {
		if sg.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *mockSignupRepo) CountByUserAndStatus(_ context.Context, userID, status string) (int64, error) {
	var n int64
	for _, sg := range m.s.signups {
		if sg.UserID == userID && sg.Status == status {
			n++
		}
	}
	return n, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct{ s *mockStore }

func (m *mockAttendanceRepo) ClockIn(_ context.Context, log *model.AttendanceLog) error {
	for _, l := range m.s.logs {
		if l.EventID == log.EventID && l.UserID == log.UserID && l.Status == model.AttendanceStatusOnDuty {
			return fmt.Errorf("%w: 已处于上岗状态", apperrors.ErrConflict)
		}
	}
	if log.AttendanceID == "" {
		log.AttendanceID = m.s.nextID("att")
	}
	log.CreatedAt = time.Now()
	m.s.logs = append(m.s.logs, log)
	return nil
}

func (m *mockAttendanceRepo) ClockOut(_ context.Context, eventID, userID string, at time.Time, lat, lng *float64, isEarly bool) (*model.AttendanceLog, error) {
	for _, l := range m.s.logs {
		if l.EventID == eventID && l.UserID == userID && l.Status == model.AttendanceStatusOnDuty {
			l.Status = model.AttendanceStatusOffDuty
			l.ClockOut = &at
			l.ClockOutLat = lat
			l.ClockOutLng = lng
			early := isEarly
			l.IsEarlyClockout = &early
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: 当前不在上岗状态", apperrors.ErrInvalidState)
}

func (m *mockAttendanceRepo) Latest(_ context.Context, eventID, userID string) (*model.AttendanceLog, error) {
	var latest *model.AttendanceLog
	for _, l := range m.s.logs {
		if l.EventID == eventID && l.UserID == userID {
			if latest == nil || !l.ClockIn.Before(latest.ClockIn) {
				latest = l
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockAttendanceRepo) matches(l *model.AttendanceLog, f *repository.AttendanceFilters) bool {
	if f == nil {
		return true
	}
	if f.UserID != "" && l.UserID != f.UserID {
		return false
	}
	if f.EventID != "" && l.EventID != f.EventID {
		return false
	}
	event := m.s.events[l.EventID]
	if event != nil {
		d := event.Date.Format("2006-01-02")
		if f.DateFrom != "" && d < f.DateFrom {
			return false
		}
		if f.DateTo != "" && d > f.DateTo {
			return false
		}
	}
	return true
}

func (m *mockAttendanceRepo) List(_ context.Context, f *repository.AttendanceFilters) ([]model.AttendanceLog, error) {
	var result []model.AttendanceLog
	for _, l := range m.s.logs {
		if m.matches(l, f) {
			cp := *l
			cp.User = m.s.users[l.UserID]
			cp.Event = m.s.events[l.EventID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) Report(_ context.Context, f *repository.AttendanceFilters) ([]repository.ReportRow, error) {
	var rows []repository.ReportRow
	for _, l := range m.s.logs {
		if l.Status != model.AttendanceStatusOffDuty || !m.matches(l, f) {
			continue
		}
		row := repository.ReportRow{
			UserID:  l.UserID,
			EventID: l.EventID,
			ClockIn: l.ClockIn,
			IsLate:  l.IsLate,
		}
		if l.ClockOut != nil {
			row.ClockOut = *l.ClockOut
		}
		if l.IsEarlyClockout != nil {
			row.IsEarlyClockout = *l.IsEarlyClockout
		}
		if u := m.s.users[l.UserID]; u != nil {
			row.UserName = u.Name
			row.UserEmail = u.Email
		}
		if e := m.s.events[l.EventID]; e != nil {
			row.EventTitle = e.Title
			row.EventDate = e.Date
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *mockAttendanceRepo) CountOnDuty(_ context.Context) (int64, error) {
	var n int64
	for _, l := range m.s.logs {
		if l.Status == model.AttendanceStatusOnDuty {
			n++
		}
	}
	return n, nil
}

func (m *mockAttendanceRepo) CountOnDutyByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, l := range m.s.logs {
		if l.UserID == userID && l.Status == model.AttendanceStatusOnDuty {
			n++
		}
	}
	return n, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct{ s *mockStore }

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.NotificationID == "" {
		n.NotificationID = m.s.nextID("ntf")
	}
	n.CreatedAt = time.Now()
	m.s.notifications = append(m.s.notifications, n)
	return nil
}

func (m *mockNotificationRepo) CreateBatch(_ context.Context, ns []model.Notification) error {
	for i := range ns {
		cp := ns[i]
		_ = m.Create(nil, &cp)
		ns[i] = cp
	}
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	for _, n := range m.s.notifications {
		if n.NotificationID == id {
			return n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) List(_ context.Context, userID string, f *repository.NotificationFilters) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.s.notifications {
		if n.UserID != userID {
			continue
		}
		if f != nil && f.UnreadOnly && n.IsRead {
			continue
		}
		cp := *n
		if n.RelatedEventID != nil {
			cp.RelatedEvent = m.s.events[*n.RelatedEventID]
		}
		all = append(all, cp)
	}
	total := int64(len(all))
	if f != nil && f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for _, n := range m.s.notifications {
		if n.NotificationID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, ntf := range m.s.notifications {
		if ntf.UserID == userID && !ntf.IsRead {
			ntf.IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) UnreadCount(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, ntf := range m.s.notifications {
		if ntf.UserID == userID && !ntf.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) CountAllUnread(_ context.Context) (int64, error) {
	var n int64
	for _, ntf := range m.s.notifications {
		if !ntf.IsRead {
			n++
		}
	}
	return n, nil
}

// ── Mock ChatRepository ──

type mockChatRepo struct{ s *mockStore }

func (m *mockChatRepo) GetRoomByEvent(_ context.Context, eventID string) (*model.ChatRoom, error) {
	for _, r := range m.s.rooms {
		if r.EventID != nil && *r.EventID == eventID && r.Type == model.ChatRoomTypeEvent {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChatRepo) CreateRoom(_ context.Context, room *model.ChatRoom) error {
	if room.EventID != nil {
		if existing, err := m.GetRoomByEvent(nil, *room.EventID); err == nil {
			*room = *existing
			return nil
		}
	}
	if room.RoomID == "" {
		room.RoomID = m.s.nextID("room")
	}
	room.CreatedAt = time.Now()
	m.s.rooms[room.RoomID] = room
	return nil
}

func (m *mockChatRepo) GetRoomByID(_ context.Context, roomID string) (*model.ChatRoom, error) {
	if r, ok := m.s.rooms[roomID]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChatRepo) ListRooms(_ context.Context, userID string, isAdmin bool) ([]repository.ChatRoomWithMeta, error) {
	approved := make(map[string]bool)
	for _, sg := range m.s.signups {
		if sg.UserID == userID && sg.Status == model.SignupStatusApproved {
			approved[sg.EventID] = true
		}
	}

	var result []repository.ChatRoomWithMeta
	for _, r := range m.s.rooms {
		if !isAdmin {
			if r.EventID == nil || !approved[*r.EventID] {
				continue
			}
		}
		row := repository.ChatRoomWithMeta{ChatRoom: *r}
		if r.EventID != nil {
			if e, ok := m.s.events[*r.EventID]; ok {
				row.EventTitle = &e.Title
				d := e.Date
				row.EventDate = &d
			}
		}
		for _, msg := range m.s.messages {
			if msg.RoomID == r.RoomID {
				row.MessageCount++
				t := msg.CreatedAt
				if row.LastMessageAt == nil || t.After(*row.LastMessageAt) {
					row.LastMessageAt = &t
				}
			}
		}
		result = append(result, row)
	}
	return result, nil
}

func (m *mockChatRepo) ListMessages(_ context.Context, roomID string, before string, limit int) ([]model.ChatMessage, error) {
	var result []model.ChatMessage
	for _, msg := range m.s.messages {
		if msg.RoomID != roomID {
			continue
		}
		cp := *msg
		cp.User = m.s.users[msg.UserID]
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockChatRepo) ListParticipantIDs(_ context.Context, roomID string) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, msg := range m.s.messages {
		if msg.RoomID == roomID && !seen[msg.UserID] {
			seen[msg.UserID] = true
			ids = append(ids, msg.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockChatRepo) CreateMessage(_ context.Context, msg *model.ChatMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = m.s.nextID("msg")
	}
	msg.CreatedAt = time.Now()
	m.s.messages = append(m.s.messages, msg)
	return nil
}

func (m *mockChatRepo) GetMessageWithUser(_ context.Context, messageID string) (*model.ChatMessage, error) {
	for _, msg := range m.s.messages {
		if msg.MessageID == messageID {
			cp := *msg
			cp.User = m.s.users[msg.UserID]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChatRepo) FlagMessage(_ context.Context, messageID string) error {
	for _, msg := range m.s.messages {
		if msg.MessageID == messageID {
			msg.IsFlagged = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
