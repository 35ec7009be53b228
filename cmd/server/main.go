package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/api"
	"github.com/CLDWare/csi-survey-backend/config"
	_ "github.com/CLDWare/csi-survey-backend/docs"
	"github.com/CLDWare/csi-survey-backend/internal/export"
	"github.com/CLDWare/csi-survey-backend/internal/janitor"
	"github.com/CLDWare/csi-survey-backend/internal/results"
	"github.com/CLDWare/csi-survey-backend/internal/survey"
	models "github.com/CLDWare/csi-survey-backend/pkg/db"
	"github.com/CLDWare/csi-survey-backend/pkg/logger"
)

// @title			CSI Survey API
// @version		1.0
// @description	Collects systems analysis satisfaction surveys and exports the results to the admin chat.
// @BasePath		/api
func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger with the loaded configuration
	log := logger.Must(cfg)
	defer log.Sync()

	if envErr != nil {
		log.Info(".env file not found, proceeding with environment variables")
	}

	// Initialise Database
	db, err := models.InitialiseDatabase(cfg.Database.Path, log)
	if err != nil {
		log.Fatal("Failed to initialise database", zap.Error(err))
	}
	store := models.NewStore(db)

	policy, err := survey.ParseScorePolicy(cfg.Survey.ScorePolicy)
	if err != nil {
		log.Fatal("Invalid score policy", zap.Error(err))
	}

	channel, err := export.NewTelegramChannel(cfg)
	if err != nil {
		log.Fatal("Failed to create export channel", zap.Error(err))
	}
	if !channel.Configured() {
		log.Warn("TELEGRAM_BOT_TOKEN or ADMIN_CHAT_ID missing, survey results will not be exported")
	}

	// Create API instance
	apiInstance := api.NewAPI(api.Dependencies{
		Config:     cfg,
		Log:        log,
		Store:      store,
		Engine:     survey.NewEngine(store, store, store, policy, log),
		Aggregator: results.NewAggregator(store, log),
		Notifier:   export.NewNotifier(channel, cfg, log),
	})

	// Initialize the janitor
	jan := janitor.NewJanitor(cfg, log, apiInstance.RateLimiter(), false)
	jan.Start()
	defer jan.Stop()

	// Create mux with routes and apply middleware
	handler := apiInstance.ApplyMiddleware(apiInstance.CreateMux())

	// Server configuration
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Create interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.String("environment", cfg.App.Environment),
			zap.Bool("debug", cfg.App.Debug),
			zap.String("score_policy", string(policy)),
			zap.Bool("export_channel", channel.Configured()),
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-quit

	log.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("Server exited")
}
