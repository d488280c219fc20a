package payroll

import (
	"time"

	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	redisClient *redis.Client,
	idempotencyLockTTL time.Duration,
) {
	entries := r.Group("/payroll-entries")
	{
		entries.POST("/build", middleware.RBACAuthorize(rbacService, "payroll", "create"), middleware.RateLimitByUser(5, 10), handler.BuildEntry)
		entries.GET("", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.ListEntries)
		entries.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetEntry)
		entries.DELETE("/:id", middleware.RBACAuthorize(rbacService, "payroll", "delete"), handler.DeleteEntry)
		entries.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "payroll", "approve"), handler.ApproveEntry)
		entries.GET("/:id/payslip", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.DownloadPayslip)
	}

	runs := r.Group("/payroll-runs")
	{
		runs.GET("", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.ListRuns)
		if redisClient != nil {
			runs.POST(
				"",
				middleware.Idempotency(redisClient, idempotencyLockTTL),
				middleware.RBACAuthorize(rbacService, "payroll", "create"),
				handler.CreateRun,
			)
		} else {
			runs.POST("", middleware.RBACAuthorize(rbacService, "payroll", "create"), handler.CreateRun)
		}
		runs.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetRun)
		runs.POST("/:id/entries", middleware.RBACAuthorize(rbacService, "payroll", "create"), handler.RebuildRunEntry)
		runs.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "payroll", "approve"), handler.ApproveRun)
	}
}
