package export

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/CLDWare/csi-survey-backend/config"
	"github.com/CLDWare/csi-survey-backend/internal/apperrors"
)

const telegramTimeout = 30 * time.Second

// Channel is the external destination export documents are delivered to.
type Channel interface {
	// Configured reports whether the channel has a token and a destination.
	Configured() bool
	SendMessage(ctx context.Context, text string) error
	SendDocument(ctx context.Context, path, caption string) error
}

// TelegramChannel delivers to one fixed Telegram chat through the Bot API.
type TelegramChannel struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	username string
}

// NewTelegramChannel builds the channel from configuration. The bot is not
// contacted until the first send. A channel without a token or destination
// is returned unconfigured.
func NewTelegramChannel(cfg *config.Config) (*TelegramChannel, error) {
	return newTelegramChannel(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID, tgbotapi.APIEndpoint, &http.Client{Timeout: telegramTimeout})
}

func newTelegramChannel(token, destination, endpoint string, client tgbotapi.HTTPClient) (*TelegramChannel, error) {
	ch := &TelegramChannel{}
	if token == "" || destination == "" {
		return ch, nil
	}

	if strings.HasPrefix(destination, "@") {
		ch.username = destination
	} else {
		id, err := strconv.ParseInt(destination, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram chat id %q: %w", destination, err)
		}
		ch.chatID = id
	}

	// built by hand: NewBotAPI calls getMe and would need the network at startup
	ch.bot = &tgbotapi.BotAPI{
		Token:  token,
		Client: client,
		Buffer: 100,
	}
	ch.bot.SetAPIEndpoint(endpoint)
	return ch, nil
}

func (c *TelegramChannel) Configured() bool {
	return c.bot != nil
}

func (c *TelegramChannel) SendMessage(ctx context.Context, text string) error {
	if !c.Configured() {
		return apperrors.ErrChannelNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg tgbotapi.MessageConfig
	if c.username != "" {
		msg = tgbotapi.NewMessageToChannel(c.username, text)
	} else {
		msg = tgbotapi.NewMessage(c.chatID, text)
	}
	_, err := c.bot.Send(msg)
	return mapTelegramError(err)
}

func (c *TelegramChannel) SendDocument(ctx context.Context, path, caption string) error {
	if !c.Configured() {
		return apperrors.ErrChannelNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := tgbotapi.NewDocument(c.chatID, tgbotapi.FilePath(path))
	doc.ChannelUsername = c.username
	doc.Caption = caption
	_, err := c.bot.Send(doc)
	return mapTelegramError(err)
}

// mapTelegramError turns Bot API throttling into a RateLimitedError.
func mapTelegramError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.RetryAfter > 0 {
			retryAfter := time.Duration(apiErr.RetryAfter) * time.Second
			if retryAfter <= 0 {
				retryAfter = apperrors.DefaultRetryAfter
			}
			return &apperrors.RateLimitedError{RetryAfter: retryAfter, Err: err}
		}
		return fmt.Errorf("telegram api error %d: %s", apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("telegram request failed: %w", err)
}
