package progress

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"airbnb-price-analyzer/utils"
)

// apiEndpoint is the bot API URL format; tests point it at a local server.
var apiEndpoint = tgbotapi.APIEndpoint

// sender is the part of *tgbotapi.BotAPI the sink needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink forwards progress messages to a Telegram chat. Delivery
// failures are logged and never interrupt the run.
type TelegramSink struct {
	bot     sender
	chatID  int64
	enabled bool
	logger  *utils.Logger
}

// NewTelegramSink connects to the bot API. A disabled or token-less
// configuration yields a sink that drops everything.
func NewTelegramSink(botToken string, chatID int64, enabled bool, logger *utils.Logger) (*TelegramSink, error) {
	if !enabled || botToken == "" {
		return &TelegramSink{enabled: false, logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(botToken, apiEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}

	return &TelegramSink{bot: bot, chatID: chatID, enabled: true, logger: logger}, nil
}

func (s *TelegramSink) Emit(message string) {
	if !s.enabled {
		return
	}

	text := strings.TrimSpace(message)
	if text == "" {
		return
	}

	msg := tgbotapi.NewMessage(s.chatID, "<b>Airbnb analyzer</b>\n"+escapeHTML(text))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := s.bot.Send(msg); err != nil {
		s.logger.Warn("[telegram] Failed to send progress message: %v", err)
	}
}

func escapeHTML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
