package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nkyriakou/themis/internal/handlers"
	"github.com/nkyriakou/themis/internal/middleware"
	"github.com/nkyriakou/themis/internal/models"
)

func registerNotificationRoutes(api *gin.RouterGroup, handler *handlers.NotificationHandler) {
	// Creating and re-dispatching notifications is reserved for office staff;
	// clients only consume their own feed.
	staffOnly := middleware.RequireRole(models.RoleAdmin, models.RoleSupervisor, models.RoleSecretary)

	group := api.Group("/notifications")
	{
		group.GET("", handler.List)
		group.GET("/unread-count", handler.UnreadCount)
		group.GET("/:id", handler.Get)

		group.POST("/:id/read", handler.MarkRead)
		group.POST("/read", handler.MarkManyRead)
		group.POST("/read-all", handler.MarkAllRead)
		group.DELETE("/:id", handler.Delete)

		group.POST("", staffOnly, handler.Create)
		group.POST("/:id/send", staffOnly, handler.Resend)
	}
}
