package assignment

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService middleware.RBACService,
) {
	assignments := r.Group("/assignments")
	{
		assignments.GET("", middleware.RBACAuthorize(rbacService, "assignment", "read"), h.GetAll)
		assignments.POST("", middleware.RBACAuthorize(rbacService, "assignment", "create"), middleware.RateLimitByUser(5, 10), h.Create)
		assignments.GET("/resolve", middleware.RBACAuthorize(rbacService, "assignment", "read"), h.Resolve)
		assignments.GET("/history", middleware.RBACAuthorize(rbacService, "assignment", "read"), h.History)
		assignments.GET("/:id", middleware.RBACAuthorize(rbacService, "assignment", "read"), h.GetById)
		assignments.PUT("/:id", middleware.RBACAuthorize(rbacService, "assignment", "update"), middleware.RateLimitByUser(5, 10), h.Update)
		assignments.DELETE("/:id", middleware.RBACAuthorize(rbacService, "assignment", "delete"), h.Delete)
	}
}
