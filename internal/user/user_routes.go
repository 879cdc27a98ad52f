package user

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
	manage := middleware.RBACAuthorize(rbacService, rbac.ResourceUser, rbac.ActionManage)

	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me/balances",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead),
			handler.MyBalances,
		)

		users.GET("", manage, handler.GetAll)
		users.GET("/:id", manage, handler.GetByID)

		users.POST("",
			middleware.RateLimitByUser(0.5, 5),
			manage,
			handler.Create,
		)

		users.PATCH("/:id/status", manage, handler.ToggleStatus)
		users.PUT("/:id/balances", manage, handler.UpdateBalances)
		users.DELETE("/:id", manage, handler.Delete)
	}
}
