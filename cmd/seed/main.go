package main

import (
	"context"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/config"
	models "github.com/CLDWare/csi-survey-backend/pkg/db"
	"github.com/CLDWare/csi-survey-backend/pkg/logger"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := config.MustLoad()
	log := logger.Must(cfg)
	defer log.Sync()

	db, err := models.InitialiseDatabase(cfg.Database.Path, log)
	if err != nil {
		log.Fatal("Failed to initialise database", zap.Error(err))
	}

	result, err := models.Seed(context.Background(), db)
	if err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	log.Info("Database seeded",
		zap.String("path", cfg.Database.Path),
		zap.Int("questions", result.Questions),
		zap.Int("projects", result.Projects),
		zap.Int("users", result.Users),
		zap.Int("assignments", result.Assignments),
	)
}
