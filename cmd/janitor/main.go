package main

import (
	"github.com/joho/godotenv"

	"github.com/CLDWare/csi-survey-backend/config"
	"github.com/CLDWare/csi-survey-backend/internal/janitor"
	"github.com/CLDWare/csi-survey-backend/pkg/logger"
)

func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	// Load configuration
	cfg := config.MustLoad()

	log := logger.Must(cfg)
	defer log.Sync()

	if envErr != nil {
		log.Info(".env file not found, proceeding with environment variables")
	}

	// no server is running, so there is no rate limiter state to evict
	jan := janitor.NewJanitor(cfg, log, nil, true)

	jan.RunFull()
}
