package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "staffhub/backend/pkg/errors"
	"staffhub/backend/pkg/response"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应体解析失败: %v", err)
	}
	return resp
}

func TestHandleServiceError_Mapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"参数校验", apperrors.ErrValidation, http.StatusBadRequest, 10001},
		{"无权操作", apperrors.ErrForbidden, http.StatusForbidden, 10003},
		{"资源不存在", apperrors.ErrNotFound, http.StatusNotFound, 20001},
		{"状态冲突", apperrors.ErrConflict, http.StatusConflict, 20002},
		{"活动满员", apperrors.ErrCapacityExceeded, http.StatusConflict, 20003},
		{"状态不允许", apperrors.ErrInvalidState, http.StatusUnprocessableEntity, 20004},
		{"未知错误", fmt.Errorf("数据库连接断开"), http.StatusInternalServerError, 50000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newTestContext()
			handleServiceError(c, fmt.Errorf("%w: 上下文信息", tc.err))

			if w.Code != tc.wantStatus {
				t.Errorf("HTTP 状态码应为 %d，实际为 %d", tc.wantStatus, w.Code)
			}
			resp := decodeResponse(t, w)
			if resp.Code != tc.wantCode {
				t.Errorf("业务码应为 %d，实际为 %d", tc.wantCode, resp.Code)
			}
		})
	}
}

func TestHandleServiceError_HidesInternalDetails(t *testing.T) {
	c, w := newTestContext()
	handleServiceError(c, fmt.Errorf("pq: connection refused at 10.0.0.3:5432"))

	resp := decodeResponse(t, w)
	if resp.Message != "服务器内部错误" {
		t.Errorf("未识别错误不应泄漏内部细节，实际消息: %q", resp.Message)
	}
}

func TestMustGetUserID(t *testing.T) {
	c, w := newTestContext()
	if _, ok := MustGetUserID(c); ok {
		t.Error("上下文缺少 user_id 时应返回 false")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("应写入 401，实际为 %d", w.Code)
	}

	c2, _ := newTestContext()
	c2.Set("user_id", "user-1")
	id, ok := MustGetUserID(c2)
	if !ok || id != "user-1" {
		t.Errorf("应成功提取 user_id，实际 id=%q ok=%v", id, ok)
	}
}

func TestIsAdmin(t *testing.T) {
	c, _ := newTestContext()
	c.Set("role", "admin")
	if !isAdmin(c) {
		t.Error("role=admin 时 isAdmin 应为 true")
	}

	c2, _ := newTestContext()
	c2.Set("role", "staff")
	if isAdmin(c2) {
		t.Error("role=staff 时 isAdmin 应为 false")
	}

	c3, _ := newTestContext()
	if isAdmin(c3) {
		t.Error("未设置 role 时 isAdmin 应为 false")
	}
}
