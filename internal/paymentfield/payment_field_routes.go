package paymentfield

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService middleware.RBACService,
) {
	fields := r.Group("/payment-fields")
	{
		fields.GET("", middleware.RBACAuthorize(rbacService, "payment_field", "read"), h.GetAll)
		fields.POST("", middleware.RBACAuthorize(rbacService, "payment_field", "create"), middleware.RateLimitByUser(5, 10), h.Create)
		fields.GET("/:id", middleware.RBACAuthorize(rbacService, "payment_field", "read"), h.GetById)
		fields.PUT("/:id", middleware.RBACAuthorize(rbacService, "payment_field", "update"), middleware.RateLimitByUser(5, 10), h.Update)
		fields.DELETE("/:id", middleware.RBACAuthorize(rbacService, "payment_field", "delete"), h.Delete)
	}
}
