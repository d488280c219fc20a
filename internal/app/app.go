package app

import (
	"go-payroll/internal/config"
	"go-payroll/internal/middleware"
	"go-payroll/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure and mounts every module on router.
func BuildApp(router *gin.Engine, cfg *config.Config) error {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	router.Use(middleware.RequestID(), middleware.RateLimitByIP(20, 40))

	// 2. Register Modules & Routes
	return registerModules(router, cfg, sqlDB, gormDB, redisClient, zap.L())
}
