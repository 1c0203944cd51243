package main

import (
	"jar-backend/internal/config"
	"jar-backend/internal/database"
	"jar-backend/internal/logger"
	"jar-backend/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := server.New(cfg)

	log := logger.Get()
	log.Info("server listening", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
