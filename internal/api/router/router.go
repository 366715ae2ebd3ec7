package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nascimento1980/SmartCHAPP-sub000/config"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/api/handler"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/api/middleware"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/jwt"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/redis"
)

// Setup builds the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── health check ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// auth (no token required)
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// authenticated routes
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// user directory
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth(model.RoleAdmin, model.RoleGestor), h.User.List)
				users.GET("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleGestor), h.User.Get)
				users.POST("", middleware.RoleAuth(model.RoleAdmin, model.RoleGestor), h.User.Create)
				users.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.Deactivate)
			}

			// contacts
			contacts := authorized.Group("/contacts")
			{
				contacts.GET("", h.Contact.List)
				contacts.GET("/:id", h.Contact.Get)
				contacts.POST("", h.Contact.Create)
				contacts.PATCH("/:id", h.Contact.Update)
				contacts.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleGestor), h.Contact.Delete)
				contacts.POST("/:id/geocode", h.Contact.Geocode)
			}

			// weekly plannings
			plannings := authorized.Group("/plannings")
			{
				plannings.GET("", h.Planning.List)
				plannings.GET("/slots", h.Planning.AvailableSlots)
				plannings.GET("/:id", h.Planning.Get)
				plannings.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleGestor), h.Planning.Delete)

				// lifecycle
				plannings.POST("/:id/start", h.Planning.StartExecution)
				plannings.POST("/:id/complete", h.Planning.Complete)
				plannings.POST("/:id/evaluate", middleware.RoleAuth(model.RoleAdmin, model.RoleGestor), h.Planning.Evaluate)
				plannings.POST("/:id/reopen", h.Planning.Reopen)
				plannings.POST("/:id/cancel", h.Planning.Cancel)

				// items
				plannings.POST("/items", h.Planning.CreateItem)
				plannings.POST("/items/:id/reschedule", h.Planning.RescheduleItem)
				plannings.POST("/items/:id/cancel", h.Planning.CancelItem)
				plannings.POST("/items/:id/check-in", h.Planning.CheckInItem)
				plannings.POST("/items/:id/check-out", h.Planning.CheckOutItem)

				// collaborators and invites
				plannings.GET("/:id/collaborators", h.Invite.ListCollaborators)
				plannings.POST("/:id/collaborators", h.Invite.AddCollaborator)
				plannings.DELETE("/:id/collaborators/:user_id", h.Invite.RemoveCollaborator)
				plannings.GET("/:id/invites", h.Invite.ListInvites)

				// exports
				plannings.GET("/:id/export/xlsx", h.Export.ExportXLSX)
				plannings.GET("/:id/export/ics", h.Export.ExportICS)
			}

			// invites
			invites := authorized.Group("/invites")
			{
				invites.POST("", h.Invite.CreateInvite)
				invites.POST("/:id/respond", h.Invite.Respond)
			}
		}
	}

	return r
}
