package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"staffhub/backend/internal/realtime"
	"staffhub/backend/pkg/jwt"
	"staffhub/backend/pkg/response"
)

// WSHandler WebSocket 接入处理器
//
// 浏览器 WebSocket 无法携带 Authorization 头，认证通过
// 查询参数 ?token=<access_token> 完成。
type WSHandler struct {
	hub      *realtime.Hub
	jwtMgr   *jwt.Manager
	upgrader websocket.Upgrader
}

// NewWSHandler 创建 WSHandler
func NewWSHandler(hub *realtime.Hub, jwtMgr *jwt.Manager) *WSHandler {
	return &WSHandler{
		hub:    hub,
		jwtMgr: jwtMgr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 跨域已由 CORS 中间件约束，升级阶段不重复校验 Origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve 建立 WebSocket 连接
// GET /ws?token=<access_token>
func (h *WSHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, 10002, "缺少 token")
		return
	}

	claims, err := h.jwtMgr.ParseToken(token)
	if err != nil || claims.TokenType != "access" {
		response.Unauthorized(c, 10002, "Token 无效或已过期")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时 gorilla 已写入响应
		return
	}

	client := realtime.NewClient(h.hub, conn, claims.UserID, claims.Role)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
