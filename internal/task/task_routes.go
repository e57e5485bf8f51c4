package task

import (
	"github.com/AdamWu1996/YCS/internal/middleware"
	"github.com/AdamWu1996/YCS/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	tasks := r.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware())
	{
		tasks.GET("/claimable", middleware.RBACAuthorize(rbacService, "task", "read"), h.ListClaimable)
		tasks.GET("/resolve", middleware.RBACAuthorize(rbacService, "task", "read"), h.ResolveByCodes)
	}
}
