package staff

import (
	"github.com/AdamWu1996/YCS/internal/middleware"
	"github.com/AdamWu1996/YCS/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	profiles := r.Group("/staff")
	profiles.Use(middleware.AuthMiddleware())
	{
		profiles.GET("", middleware.RBACAuthorize(rbacService, "staff", "read"), h.ListProfiles)
		profiles.POST("", middleware.RBACAuthorize(rbacService, "staff", "create"), h.CreateProfile)
	}
}
