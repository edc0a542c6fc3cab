package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Event        EventRepository
	Signup       SignupRepository
	Attendance   AttendanceRepository
	Notification NotificationRepository
	Chat         ChatRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Event:        NewEventRepo(db),
		Signup:       NewSignupRepo(db),
		Attendance:   NewAttendanceRepo(db),
		Notification: NewNotificationRepo(db),
		Chat:         NewChatRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
