package service

import (
	"context"
	"errors"
	"testing"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	apperrors "staffhub/backend/pkg/errors"
)

func setupUserTest() (UserService, *mockStore) {
	repo, store := newTestRepository()
	svc := NewUserService(repo, testLogger())
	return svc, store
}

func TestUserGet_NotFound(t *testing.T) {
	svc, _ := setupUserTest()

	_, err := svc.Get(context.Background(), "user-404")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("用户不存在应返回 ErrNotFound，实际: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, store := setupUserTest()
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)

	name := "王大锤"
	phone := "13800138000"
	resp, err := svc.UpdateProfile(context.Background(), "staff-1", &dto.UpdateUserRequest{
		Name:        &name,
		PhoneNumber: &phone,
	})
	if err != nil {
		t.Fatalf("UpdateProfile 应成功，但返回错误: %v", err)
	}
	if resp.Name != "王大锤" {
		t.Errorf("姓名未更新: %q", resp.Name)
	}
	if resp.PhoneNumber == nil || *resp.PhoneNumber != "13800138000" {
		t.Error("手机号未更新")
	}
	// 邮箱不可通过资料更新修改
	if resp.Email != "wang@example.com" {
		t.Errorf("邮箱不应被修改: %q", resp.Email)
	}
}

func TestSetStatus(t *testing.T) {
	svc, store := setupUserTest()
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)

	resp, err := svc.SetStatus(context.Background(), "staff-1", model.UserStatusInactive)
	if err != nil {
		t.Fatalf("SetStatus 应成功，但返回错误: %v", err)
	}
	if resp.Status != model.UserStatusInactive {
		t.Errorf("账号状态应为 inactive，实际为 %s", resp.Status)
	}
	if store.users["staff-1"].Status != model.UserStatusInactive {
		t.Error("状态未落库")
	}
}

func TestUserList_Filters(t *testing.T) {
	svc, store := setupUserTest()
	seedUser(store, "admin-1", "管理员", "admin@example.com", model.RoleAdmin)
	seedUser(store, "staff-1", "小王", "wang@example.com", model.RoleStaff)
	seedUser(store, "staff-2", "小李", "li@example.com", model.RoleStaff)

	resps, total, err := svc.List(context.Background(), &dto.UserListRequest{Role: model.RoleStaff})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 2 || len(resps) != 2 {
		t.Errorf("按角色过滤应返回 2 名员工，实际 total=%d len=%d", total, len(resps))
	}
}
