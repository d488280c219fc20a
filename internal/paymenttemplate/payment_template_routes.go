package paymenttemplate

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService middleware.RBACService,
) {
	templates := r.Group("/payment-templates")
	{
		templates.GET("", middleware.RBACAuthorize(rbacService, "payment_template", "read"), h.GetAll)
		templates.POST("", middleware.RBACAuthorize(rbacService, "payment_template", "create"), middleware.RateLimitByUser(5, 10), h.Create)
		templates.GET("/:id", middleware.RBACAuthorize(rbacService, "payment_template", "read"), h.GetById)
		templates.PUT("/:id", middleware.RBACAuthorize(rbacService, "payment_template", "update"), middleware.RateLimitByUser(5, 10), h.Update)
		templates.DELETE("/:id", middleware.RBACAuthorize(rbacService, "payment_template", "delete"), h.Delete)
	}
}
