package errors

import "errors"

// 核心状态机的六类业务错误。
// Service / Repository 层以 fmt.Errorf("%w: ...") 包装补充上下文，
// Handler 层用 errors.Is 统一映射为 HTTP 状态码。
var (
	// ErrNotFound 引用的活动/报名/记录不存在
	ErrNotFound = errors.New("资源不存在")

	// ErrForbidden 调用者缺少所需角色或关联关系
	ErrForbidden = errors.New("无权操作")

	// ErrConflict 重复或重叠的状态（已报名、已打卡、已审批）
	ErrConflict = errors.New("状态冲突")

	// ErrInvalidState 当前生命周期状态不允许该操作
	ErrInvalidState = errors.New("当前状态不允许该操作")

	// ErrCapacityExceeded 活动已满员
	ErrCapacityExceeded = errors.New("活动人数已满")

	// ErrValidation 输入参数不合法
	ErrValidation = errors.New("参数校验失败")
)
