// Package bot is the Telegram front end: it long-polls updates and turns
// messages into Todoist appointments.
package bot

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hrygo/haircutbot/plugin/notify"
	boterrors "github.com/hrygo/haircutbot/server/internal/errors"
	"github.com/hrygo/haircutbot/server/internal/observability"
	"github.com/hrygo/haircutbot/server/middleware"
	"github.com/hrygo/haircutbot/server/service/appointment"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Access is the user registry as seen by the bot.
type Access interface {
	IsAllowed(userID int64) bool
	HasTodoist(userID int64) bool
	NotifyTargets(creator int64) []int64
}

// Config holds the bot settings.
type Config struct {
	// PollTimeout is the long polling timeout in seconds.
	PollTimeout int
	// Duration is the appointment length shown in replies.
	Duration time.Duration
	// DefaultTime is shown in /help, e.g. "14:00".
	DefaultTime string
	// ListLimit caps /list output.
	ListLimit int
}

// Bot handles Telegram updates.
type Bot struct {
	api          API
	access       Access
	appointments appointment.Service
	dispatcher   *notify.Dispatcher
	limiter      *middleware.RateLimiter
	metrics      *observability.Metrics
	config       Config
	logger       *slog.Logger
	now          func() time.Time

	wg sync.WaitGroup
}

// New creates a bot. The dispatcher must have the telegram channel
// registered; a webhook channel is used when present.
func New(api API, access Access, appointments appointment.Service, dispatcher *notify.Dispatcher,
	limiter *middleware.RateLimiter, metrics *observability.Metrics, config Config, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	if limiter == nil {
		limiter = middleware.NewRateLimiter(0)
	}
	if config.PollTimeout <= 0 {
		config.PollTimeout = 60
	}
	if config.Duration <= 0 {
		config.Duration = 90 * time.Minute
	}
	if config.DefaultTime == "" {
		config.DefaultTime = "14:00"
	}
	if config.ListLimit <= 0 {
		config.ListLimit = 10
	}
	return &Bot{
		api:          api,
		access:       access,
		appointments: appointments,
		dispatcher:   dispatcher,
		limiter:      limiter,
		metrics:      metrics,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// Metrics returns the update counters.
func (b *Bot) Metrics() *observability.Metrics {
	return b.metrics
}

// Run polls updates until ctx is done, then waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.PollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("telegram polling started", "timeout", b.config.PollTimeout)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate processes one update synchronously. Panics are recovered and
// logged.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	handler, userID, chatID := classify(update)
	if handler == "" {
		b.logger.Debug("unsupported update", "update_id", update.UpdateID)
		return
	}

	reqCtx := observability.NewRequestContext(b.logger, handler, userID)
	reqCtx.ChatID = chatID
	ctx = observability.WithRequestContext(ctx, reqCtx)

	defer func() {
		if r := recover(); r != nil {
			b.metrics.RecordFailure(handler)
			reqCtx.Error("panic while handling update", nil,
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	var err error
	switch handler {
	case handlerCommand:
		err = b.handleCommand(ctx, update.Message)
	case handlerMessage:
		err = b.handleAppointment(ctx, update.Message)
	case handlerCallback:
		err = b.handleCallback(ctx, update.CallbackQuery)
	}

	b.metrics.RecordUpdate(handler, reqCtx.Duration())
	if err != nil {
		b.metrics.RecordFailure(handler)
		code, _ := boterrors.CodeOf(err)
		reqCtx.Error("update failed", err, slog.String(observability.LogFieldErrorCode, string(code)))
		return
	}
	reqCtx.Debug("update handled", slog.Int64(observability.LogFieldDuration, reqCtx.Duration().Milliseconds()))
}

const (
	handlerCommand  = "command"
	handlerMessage  = "message"
	handlerCallback = "callback"
)

func classify(update tgbotapi.Update) (handler string, userID, chatID int64) {
	switch {
	case update.Message != nil && update.Message.Text != "" && update.Message.From != nil:
		m := update.Message
		handler = handlerMessage
		if isKnownCommand(m) {
			handler = handlerCommand
		}
		if m.Chat != nil {
			chatID = m.Chat.ID
		}
		return handler, m.From.ID, chatID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		q := update.CallbackQuery
		if q.Message != nil && q.Message.Chat != nil {
			chatID = q.Message.Chat.ID
		}
		return handlerCallback, q.From.ID, chatID
	default:
		return "", 0, 0
	}
}

func isKnownCommand(m *tgbotapi.Message) bool {
	switch m.Command() {
	case "start", "help", "list":
		return true
	default:
		return false
	}
}

// reply sends text to chatID. Send failures are logged only.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		observability.LoggerFrom(ctx, b.logger).Error("failed to send message", "chat_id", chatID, "error", err)
	}
}
