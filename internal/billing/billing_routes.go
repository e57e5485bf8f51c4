package billing

import (
	"github.com/AdamWu1996/YCS/internal/middleware"
	"github.com/AdamWu1996/YCS/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service, rdb *redis.Client) {
	decisions := r.Group("/billing")
	decisions.Use(middleware.AuthMiddleware())
	{
		decisions.GET("/pending", middleware.RBACAuthorize(rbacService, "billing", "read"), h.ListPending)
		decisions.GET("/decisions/:id", middleware.RBACAuthorize(rbacService, "billing", "read"), h.GetDecision)
		decisions.GET("/tasks/:taskId/decisions", middleware.RBACAuthorize(rbacService, "billing", "read"), h.ListByTask)
		decisions.POST("/decisions",
			middleware.RBACAuthorize(rbacService, "billing", "create"),
			middleware.Idempotency(rdb),
			h.CreateDecision,
		)
	}
}
