package notify

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// Messenger is the part of *tgbotapi.BotAPI used for sending.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender sends notifications as private chat messages. A user's
// private chat ID equals their user ID.
type TelegramSender struct {
	api    Messenger
	logger *slog.Logger
}

// NewTelegramSender creates a Telegram sender.
func NewTelegramSender(api Messenger, logger *slog.Logger) *TelegramSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramSender{api: api, logger: logger}
}

// Send sends msg to userID's private chat.
func (s *TelegramSender) Send(ctx context.Context, userID int64, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := tgbotapi.NewMessage(userID, msg.Text)
	if msg.Markup != nil {
		out.ReplyMarkup = *msg.Markup
	}
	if _, err := s.api.Send(out); err != nil {
		return errors.Wrapf(err, "failed to send telegram message to %d", userID)
	}

	s.logger.Debug("telegram notification sent", "user_id", userID, "event", msg.Event)
	return nil
}

// Name returns the sender name.
func (s *TelegramSender) Name() string {
	return string(ChannelTelegram)
}
