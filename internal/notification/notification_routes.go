package notification

import (
	"github.com/jackson951/flexileave-app-sub001/internal/middleware"
	"github.com/jackson951/flexileave-app-sub001/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	read := middleware.RBACAuthorize(rbacService, rbac.ResourceNotification, rbac.ActionRead)

	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", read, handler.List)
		notifications.GET("/unread-count", read, handler.UnreadCount)
		notifications.PATCH("/read-all", read, handler.MarkAllRead)
		notifications.PATCH("/:id/read", read, handler.MarkRead)
		notifications.DELETE("/read", read, handler.DeleteAllRead)
		notifications.DELETE("/:id", read, handler.Delete)
		notifications.POST("/system", middleware.RBACAuthorize(rbacService, rbac.ResourceNotification, rbac.ActionSend), handler.SendSystem)
	}
}
