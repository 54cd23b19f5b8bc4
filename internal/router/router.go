package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mirador-dev/mirador/internal/handlers"
	"github.com/mirador-dev/mirador/internal/middleware"
	"github.com/mirador-dev/mirador/internal/types"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.NotificationFeed)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", h.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), h.Me)
		}

		rules := api.Group("/rules", middleware.AuthMiddleware())
		{
			rules.GET("", h.ListRules)
			rules.POST("", h.CreateRule)
			rules.PATCH("/:rule_id", h.UpdateRule)
			rules.DELETE("/:rule_id", h.DeleteRule)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", h.ListNotifications)
			notifications.POST("", h.CreateNotification)
			notifications.PATCH("/:notification_id/status", h.UpdateNotificationStatus)
			notifications.POST("/read-all", h.MarkAllNotificationsRead)
		}

		sources := api.Group("/sources", middleware.AuthMiddleware())
		{
			sources.GET("", h.ListSources)
			sources.POST("", h.CreateSource)
			sources.PATCH("/:source_id", h.UpdateSource)
			sources.DELETE("/:source_id", h.DeleteSource)
		}

		queries := api.Group("/queries", middleware.AuthMiddleware())
		{
			queries.GET("", h.ListQueries)
			queries.POST("", h.SaveQuery)
			queries.DELETE("/:query_id", h.DeleteQuery)
		}
	}

	return r
}
