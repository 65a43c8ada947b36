package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"alpha/internal/adapters/config"
	"alpha/pkg/errors"
	"alpha/pkg/logger"
)

const maxNotificationLength = 4000 // Telegram message hard limit is 4096

// Notifier delivers out-of-band alerts to the system owner's chat.
// Delivery failure is reported as a boolean, never as an error: the
// callers treat escalation as best-effort.
type Notifier struct {
	api         *tgbotapi.BotAPI
	ownerChatID int64
	limiter     *rate.Limiter
	log         *logger.Logger
}

// NewNotifier creates a Telegram owner notifier.
// Returns an error when the token is missing or rejected by Telegram.
func NewNotifier(cfg config.TelegramConfig) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, errors.Wrap(errors.ErrNotConfigured, "telegram bot token missing")
	}
	if cfg.OwnerChatID == 0 {
		return nil, errors.Wrap(errors.ErrNotConfigured, "telegram owner chat id missing")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}

	return &Notifier{
		api:         api,
		ownerChatID: cfg.OwnerChatID,
		limiter:     rate.NewLimiter(rate.Limit(20), 30),
		log:         logger.Get().With("component", "owner_notifier"),
	}, nil
}

// Notify sends a titled alert to the owner chat and reports success
func (n *Notifier) Notify(ctx context.Context, title, content string) bool {
	if title == "" || content == "" {
		n.log.Warnw("Skipping notification with empty title or content")
		return false
	}

	text := truncate(fmt.Sprintf("*%s*\n\n%s", title, content), maxNotificationLength)

	if err := n.limiter.Wait(ctx); err != nil {
		n.log.Warnw("Notification rate limit wait cancelled", "error", err)
		return false
	}

	msg := tgbotapi.NewMessage(n.ownerChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.api.Send(msg); err != nil {
		n.log.Errorw("Failed to deliver owner notification", "title", title, "error", err)
		return false
	}

	return true
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
