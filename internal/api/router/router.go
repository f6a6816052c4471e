package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutoros/backend/config"
	"tutoros/backend/internal/api/handler"
	"tutoros/backend/internal/api/middleware"
	"tutoros/backend/pkg/jwt"
	"tutoros/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：此时黑名单与限流降级跳过
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── 健康检查 ──
	r.GET("/health", h.Health.Health)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, blacklist))
	v1.Use(middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	{
		// 认证模块
		v1.POST("/auth/logout", h.Auth.Logout)
		v1.GET("/auth/me", h.Auth.Me)

		// 课程模块
		occurrences := v1.Group("/occurrences")
		{
			occurrences.POST("", h.Occurrence.CreateOccurrence)
			occurrences.POST("/series", h.Occurrence.CreateSeries)
			occurrences.GET("", h.Occurrence.ListOccurrences)
			occurrences.GET("/:id", h.Occurrence.GetOccurrence)
			occurrences.PUT("/:id", h.Occurrence.UpdateOccurrence)
			occurrences.DELETE("/:id", h.Occurrence.DeleteOccurrence)
			occurrences.POST("/:id/drag", h.Occurrence.DragOccurrence)
			occurrences.POST("/:id/resize", h.Occurrence.ResizeOccurrence)
			occurrences.POST("/:id/reschedule-request", h.Occurrence.RequestReschedule)
			occurrences.POST("/:id/reschedule-approve", middleware.RoleAuth("admin", "tutor"), h.Occurrence.ApproveReschedule)
			occurrences.POST("/:id/reschedule-reject", middleware.RoleAuth("admin", "tutor"), h.Occurrence.RejectReschedule)
		}

		// 日历视图
		v1.GET("/calendar", h.Calendar.GetCalendar)

		// 可授课时间
		availability := v1.Group("/availability")
		{
			availability.GET("", h.Availability.ListSlots)
			availability.PUT("", middleware.RoleAuth("admin", "tutor"), h.Availability.ReplaceSlots)
			availability.GET("/overview", h.Availability.Overview)
		}

		// ICS 导入导出
		ics := v1.Group("/ics")
		{
			ics.POST("/import", middleware.RoleAuth("admin", "tutor"), h.Interchange.ImportICS)
			ics.GET("/feed", h.Interchange.FeedICS)
		}

		// Excel 导出
		v1.GET("/export/week", h.Export.ExportWeek)
	}

	return r
}
