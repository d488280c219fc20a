package main

import (
	"os"
	"time"

	"go-payroll/internal/app"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/config"
	"go-payroll/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	newLogger := zap.NewDevelopment
	if os.Getenv("APP_ENV") == "production" {
		newLogger = zap.NewProduction
	}
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	apperror.Init()
	r := gin.Default()

	// build dependency + routes
	if err := app.BuildApp(r, cfg); err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:            cfg.App.Port,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		bootstrap.NewZapAuditLogger(logger),
	)
}
