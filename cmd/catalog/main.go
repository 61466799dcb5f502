package main

import (
	stdLog "log"
	"time"

	"github.com/bookcat/catalog-service/app"
	"github.com/bookcat/catalog-service/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// @title        Book Catalog API
// @version      1.0
// @description  CRUD service for authors, books and cover images.
// @BasePath     /
func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Print("load envs from .env ", zap.Error(err))
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	app.Run(cfg)
}
