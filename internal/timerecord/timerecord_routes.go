package timerecord

import (
	"github.com/AdamWu1996/YCS/internal/middleware"
	"github.com/AdamWu1996/YCS/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	records := r.Group("/time-records")
	records.Use(middleware.AuthMiddleware())
	{
		records.GET("/unclaimed", middleware.RBACAuthorize(rbacService, "billing", "read"), h.ListUnclaimed)
	}
}
