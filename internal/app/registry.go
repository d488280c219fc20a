package app

import (
	"database/sql"

	"go-payroll/internal/assignment"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/config"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/middleware"
	"go-payroll/internal/paymentfield"
	"go-payroll/internal/paymenttemplate"
	"go-payroll/internal/payroll"
	"go-payroll/internal/rbac"
	"go-payroll/internal/rbac/infra"
	"go-payroll/internal/shared/counter"
	"go-payroll/internal/statutory"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	audit := bootstrap.NewZapAuditLogger(logger)

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	fieldRepo := paymentfield.NewRepository(gormDB)
	templateRepo := paymenttemplate.NewRepository(gormDB)
	assignmentRepo := assignment.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.App.RBACModelPath)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)

	// --- Services ---
	fieldService := paymentfield.NewService(db, fieldRepo, logger)
	templateService := paymenttemplate.NewService(db, templateRepo, logger)
	assignmentService := assignment.NewService(
		db,
		assignmentRepo,
		outboxRepo,
		rdb,
		audit,
		cfg.Payroll.ResolveCacheTTL,
		logger,
	)
	payrollService := payroll.NewService(
		db,
		payrollRepo,
		assignmentRepo,
		templateRepo,
		counterRepo,
		outboxRepo,
		statutory.NewCalculator(statutory.RulesFromConfig(cfg.Statutory)),
		audit,
		payroll.Options{
			BuildConcurrency: cfg.Payroll.BuildConcurrency,
			PayslipDir:       cfg.Payroll.PayslipDir,
		},
		logger,
	)

	// --- Handlers ---
	fieldHandler := paymentfield.NewHandler(fieldService, logger)
	templateHandler := paymenttemplate.NewHandler(templateService, logger)
	assignmentHandler := assignment.NewHandler(assignmentService, logger)
	payrollHandler := payroll.NewHandlerWithRedis(payrollService, rdb, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret),
		middleware.ExtractUserID(),
		middleware.ContextLogger(logger),
	)
	{
		paymentfield.RegisterRoutes(api, fieldHandler, rbacService)
		paymenttemplate.RegisterRoutes(api, templateHandler, rbacService)
		assignment.RegisterRoutes(api, assignmentHandler, rbacService)
		payroll.RegisterRoutes(api, payrollHandler, rbacService, rdb, cfg.Payroll.IdempotencyLockTTL)
		rbac.RegisterRoutes(api, rbacHandler)
	}

	return nil
}
