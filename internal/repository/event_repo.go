package repository

import (
	"context"

	"gorm.io/gorm"

	"staffhub/backend/internal/model"
)

// EventFilters 活动列表过滤条件
type EventFilters struct {
	Status   string
	DateFrom string // "2006-01-02"
	DateTo   string
	Location string // 模糊匹配
	Limit    int    // 0 表示不限制
}

// EventWithStats 活动 + 派生统计（已批准人数、创建者姓名、调用者报名状态）
type EventWithStats struct {
	model.Event
	ApprovedStaffCount int64   `json:"approved_staff_count"`
	CreatedByName      string  `json:"created_by_name"`
	MySignupStatus     *string `json:"my_signup_status,omitempty"`
}

// EventRepository 活动数据访问接口
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetWithStats(ctx context.Context, id, viewerID string) (*EventWithStats, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f *EventFilters, viewerID string) ([]EventWithStats, error)
	ListAvailable(ctx context.Context, userID string, f *EventFilters) ([]EventWithStats, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// eventRepo EventRepository 的 GORM 实现
type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo 创建 EventRepository 实例
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

const approvedCountExpr = `(SELECT COUNT(*) FROM event_signups es
	WHERE es.event_id = events.event_id AND es.status = 'approved')`

const createdByNameExpr = `(SELECT u.name FROM users u WHERE u.user_id = events.created_by)`

// mySignupStatusExpr 调用者最近一次报名的状态（含 rejected/withdrawn，供前端展示）
const mySignupStatusExpr = `(SELECT s.status FROM event_signups s
	WHERE s.event_id = events.event_id AND s.user_id = ?
	ORDER BY s.applied_at DESC LIMIT 1)`

func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Where("event_id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) GetWithStats(ctx context.Context, id, viewerID string) (*EventWithStats, error) {
	var row EventWithStats
	err := r.db.WithContext(ctx).Model(&model.Event{}).
		Select("events.*, "+approvedCountExpr+" AS approved_staff_count, "+
			createdByNameExpr+" AS created_by_name, "+
			mySignupStatusExpr+" AS my_signup_status", viewerID).
		Where("events.event_id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *eventRepo) Update(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("event_id = ?", id).Delete(&model.Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepo) List(ctx context.Context, f *EventFilters, viewerID string) ([]EventWithStats, error) {
	db := r.applyFilters(ctx, f, viewerID)

	var rows []EventWithStats
	if err := db.Order("events.date ASC, events.start_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAvailable 可报名活动：upcoming 且未满员（容量仅按 approved 计）
func (r *eventRepo) ListAvailable(ctx context.Context, userID string, f *EventFilters) ([]EventWithStats, error) {
	db := r.applyFilters(ctx, f, userID).
		Where("events.status = ?", model.EventStatusUpcoming).
		Where("events.max_staff IS NULL OR " + approvedCountExpr + " < events.max_staff")

	var rows []EventWithStats
	if err := db.Order("events.date ASC, events.start_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *eventRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *eventRepo) applyFilters(ctx context.Context, f *EventFilters, viewerID string) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Event{}).
		Select("events.*, "+approvedCountExpr+" AS approved_staff_count, "+
			createdByNameExpr+" AS created_by_name, "+
			mySignupStatusExpr+" AS my_signup_status", viewerID)

	if f == nil {
		return db
	}
	if f.Status != "" {
		db = db.Where("events.status = ?", f.Status)
	}
	if f.DateFrom != "" {
		db = db.Where("events.date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		db = db.Where("events.date <= ?", f.DateTo)
	}
	if f.Location != "" {
		db = db.Where("events.location ILIKE ?", "%"+f.Location+"%")
	}
	if f.Limit > 0 {
		db = db.Limit(f.Limit)
	}
	return db
}
