package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/config"
	"github.com/CLDWare/csi-survey-backend/internal/export"
	"github.com/CLDWare/csi-survey-backend/pkg/logger"
)

// probe checks the export channel settings and sends a test message.
// The bot token itself is never printed.
func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := config.MustLoad()
	log := logger.Must(cfg)
	defer log.Sync()

	log.Info("Export channel settings",
		zap.Bool("bot_token_set", cfg.Telegram.BotToken != ""),
		zap.Bool("admin_chat_id_set", cfg.Telegram.AdminChatID != ""),
	)

	channel, err := export.NewTelegramChannel(cfg)
	if err != nil {
		log.Fatal("Failed to create export channel", zap.Error(err))
	}
	if !channel.Configured() {
		log.Error("Export channel is not configured, set TELEGRAM_BOT_TOKEN and ADMIN_CHAT_ID")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	notifier := export.NewNotifier(channel, cfg, log)
	if !notifier.TestChannel(ctx) {
		log.Error("Telegram bot is not working")
		os.Exit(1)
	}
	log.Info("Telegram bot is working")
}
