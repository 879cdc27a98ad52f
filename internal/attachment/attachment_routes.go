package attachment

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
	files := r.Group("/files")
	files.Use(middleware.AuthMiddleware())
	{
		files.POST("", middleware.RBACAuthorize(rbacService, rbac.ResourceFile, rbac.ActionWrite), handler.Upload)
		files.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceFile, rbac.ActionRead), handler.GetByID)
		files.GET("/:id/download", middleware.RBACAuthorize(rbacService, rbac.ResourceFile, rbac.ActionRead), handler.Download)
		files.DELETE("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceFile, rbac.ActionWrite), handler.Delete)
	}
}
