package importer

import (
	"github.com/AdamWu1996/YCS/internal/middleware"
	"github.com/AdamWu1996/YCS/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	imports := r.Group("/imports")
	imports.Use(middleware.AuthMiddleware())
	{
		imports.POST("", middleware.RBACAuthorize(rbacService, "import", "create"), h.Import)
		imports.POST("/headers/preview", middleware.RBACAuthorize(rbacService, "import", "read"), h.PreviewHeaders)
	}
}
