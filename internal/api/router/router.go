package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"staffhub/backend/config"
	"staffhub/backend/internal/api/handler"
	"staffhub/backend/internal/api/middleware"
	"staffhub/backend/internal/model"
	"staffhub/backend/pkg/jwt"
	"staffhub/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── WebSocket ──
	r.GET("/ws", h.WS.Serve)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录/注册接口限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Register)
			auth.POST("/login", middleware.RateLimit(rdb, 20, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.PUT("/me", h.User.UpdateProfile)
				users.GET("", middleware.RoleAuth(model.RoleAdmin), h.User.ListUsers)
				users.GET("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.GetUser)
				users.PUT("/:id/status", middleware.RoleAuth(model.RoleAdmin), h.User.SetUserStatus)
			}

			// 活动模块
			events := authorized.Group("/events")
			{
				events.GET("", h.Event.ListEvents)
				events.GET("/:id", h.Event.GetEvent)
				events.POST("", middleware.RoleAuth(model.RoleAdmin), h.Event.CreateEvent)
				events.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Event.UpdateEvent)
				events.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Event.DeleteEvent)
			}

			// 班次模块（报名生命周期）
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("/available", h.Shift.ListAvailable)
				shifts.GET("/my", h.Shift.MyShifts)
				shifts.POST("/:eventId/signup", h.Shift.SignUp)
				shifts.DELETE("/:eventId/signup", h.Shift.Withdraw)
				shifts.PUT("/:eventId/signups/:userId", middleware.RoleAuth(model.RoleAdmin), h.Shift.DecideSignup)
			}

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/clock-in", h.Attendance.ClockIn)
				attendance.POST("/clock-out", h.Attendance.ClockOut)
				attendance.GET("/status/:eventId", h.Attendance.Status)
				attendance.GET("/my-logs", h.Attendance.MyLogs)
				attendance.GET("/logs", middleware.RoleAuth(model.RoleAdmin), h.Attendance.Logs)
				attendance.GET("/report", middleware.RoleAuth(model.RoleAdmin), h.Export.AttendanceReport)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.POST("", middleware.RoleAuth(model.RoleAdmin), h.Notification.CreateNotification)
			}

			// 聊天模块
			chat := authorized.Group("/chat")
			{
				chat.GET("/rooms", h.Chat.ListRooms)
				chat.GET("/events/:eventId/room", h.Chat.EventRoom)
				chat.GET("/rooms/:roomId/messages", h.Chat.ListMessages)
				chat.POST("/rooms/:roomId/messages", h.Chat.SendMessage)
				chat.PUT("/messages/:id/flag", middleware.RoleAuth(model.RoleAdmin), h.Chat.FlagMessage)
			}

			// 仪表盘模块
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("/admin", middleware.RoleAuth(model.RoleAdmin), h.Dashboard.AdminDashboard)
				dashboard.GET("/staff", h.Dashboard.StaffDashboard)
			}
		}
	}

	return r
}
