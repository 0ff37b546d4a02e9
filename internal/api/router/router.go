package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tamu-thinktank/website-sub002/config"
	"github.com/tamu-thinktank/website-sub002/internal/api/handler"
	"github.com/tamu-thinktank/website-sub002/internal/api/middleware"
	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/pkg/jwt"
	"github.com/tamu-thinktank/website-sub002/pkg/metrics"
	"github.com/tamu-thinktank/website-sub002/pkg/redis"
)

const resumeRoute = "/api/v1/applications/:id/resume"

// Setup 初始化并返回 Gin 路由引擎
// rdb 与 m 可为 nil
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	// 避免 *redis.Client(nil) 被包装成非 nil 接口
	var (
		blacklist middleware.TokenChecker
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	if m != nil {
		r.Use(m.Middleware())
	}
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, resumeRoute, "/api/v1/officers/import"))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if m != nil && cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, m.Handler())
	}

	admin := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/session", middleware.RateLimit(limiter, 30, time.Minute), h.Auth.CreateSession)

		// 公开接口
		v1.GET("/teams", h.Team.ListTeams)
		v1.GET("/research-areas", h.Team.ListResearchAreas)
		v1.GET("/cycles/active", h.Cycle.GetActiveCycle)
		v1.POST("/applications",
			middleware.RateLimit(limiter, cfg.Server.SubmitRateLimit, time.Hour),
			h.Application.SubmitApplication)
		v1.GET("/applications/status",
			middleware.RateLimit(limiter, 60, time.Minute),
			h.Application.LookupStatus)
		// 申请人凭查询码或干事凭 Token 上传
		v1.POST("/applications/:id/resume",
			middleware.RateLimit(limiter, 20, time.Hour),
			middleware.OptionalJWT(jwtMgr, blacklist),
			h.Application.UploadResume)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentOfficer)

			// 干事模块
			officers := authorized.Group("/officers")
			{
				officers.GET("", h.Officer.ListOfficers)
				officers.GET("/:id", h.Officer.GetOfficer)
				officers.POST("", admin, h.Officer.CreateOfficer)
				officers.POST("/import", admin, h.Officer.ImportOfficers)
				officers.PUT("/:id", admin, h.Officer.UpdateOfficer)
				officers.DELETE("/:id", admin, h.Officer.DeleteOfficer)
			}

			// 小组与研究方向
			teams := authorized.Group("/teams")
			{
				teams.GET("/:id", h.Team.GetTeam)
				teams.POST("", admin, h.Team.CreateTeam)
				teams.PUT("/:id", admin, h.Team.UpdateTeam)
				teams.DELETE("/:id", admin, h.Team.DeleteTeam)
			}
			areas := authorized.Group("/research-areas")
			{
				areas.POST("", admin, h.Team.CreateResearchArea)
				areas.PUT("/:id", admin, h.Team.UpdateResearchArea)
				areas.DELETE("/:id", admin, h.Team.DeleteResearchArea)
			}

			// 纳新周期
			cycles := authorized.Group("/cycles")
			{
				cycles.GET("", h.Cycle.ListCycles)
				cycles.GET("/:id", h.Cycle.GetCycle)
				cycles.POST("", admin, h.Cycle.CreateCycle)
				cycles.PUT("/:id", admin, h.Cycle.UpdateCycle)
				cycles.POST("/:id/activate", admin, h.Cycle.ActivateCycle)
				cycles.DELETE("/:id", admin, h.Cycle.DeleteCycle)
			}

			// 面试时间段
			slots := authorized.Group("/time-slots")
			{
				slots.GET("", h.TimeSlot.ListTimeSlots)
				slots.GET("/:id", h.TimeSlot.GetTimeSlot)
				slots.POST("", admin, h.TimeSlot.CreateTimeSlot)
				slots.POST("/generate", admin, h.TimeSlot.GenerateTimeSlots)
				slots.PUT("/:id", admin, h.TimeSlot.UpdateTimeSlot)
				slots.DELETE("/:id", admin, h.TimeSlot.DeleteTimeSlot)
			}

			// 纳新配置
			authorized.GET("/config", h.Config.GetConfig)
			authorized.PUT("/config", admin, h.Config.UpdateConfig)

			// 申请与评审
			apps := authorized.Group("/applications")
			{
				apps.GET("", h.Application.ListApplications)
				apps.PUT("/transfer", admin, h.Application.Transfer)
				apps.GET("/:id", h.Application.GetApplication)
				apps.PATCH("/:id/status", h.Application.UpdateStatus)
				apps.PATCH("/:id/team", admin, h.Application.AssignTeam)
				apps.GET("/:id/reviews", h.Application.ListReviews)
				apps.POST("/:id/reviews", h.Application.UpsertReview)
			}

			// 面试
			interviews := authorized.Group("/interviews")
			{
				interviews.GET("", h.Interview.ListInterviews)
				interviews.POST("/match", admin, h.Interview.Match)
				interviews.GET("/candidates", admin, h.Interview.Candidates)
				interviews.GET("/:id", h.Interview.GetInterview)
				interviews.PATCH("/:id/status", h.Interview.UpdateStatus)
				interviews.GET("/:id/notes", h.Interview.ListNotes)
				interviews.POST("/:id/notes", h.Interview.AddNote)
			}

			// 可用时间与可用性表
			authorized.GET("/officer-times/me", h.Availability.GetMyTimes)
			authorized.PUT("/officer-times/me", h.Availability.SetMyTimes)
			authorized.GET("/availability", h.Availability.GetTable)
			authorized.GET("/availability/ws", h.Availability.Live)

			// 导出
			export := authorized.Group("/export")
			{
				export.GET("/applications", admin, h.Export.ExportApplications)
				export.GET("/interviews.ics", h.Export.ExportInterviewCalendar)
			}
		}
	}

	return r
}
