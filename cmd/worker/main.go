package main

import (
	"os"

	"go-payroll/internal/app"
	"go-payroll/internal/config"
	"go-payroll/internal/shared/apperror"

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

	apperror.Init()

	if err := app.RunWorker(cfg); err != nil {
		logger.Fatal("run worker failed", zap.Error(err))
	}
}
