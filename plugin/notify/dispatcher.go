// Package notify delivers appointment notifications to users over the
// registered channels.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

// Channel names a delivery channel.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelWebhook  Channel = "webhook"
)

// FanoutLimit caps concurrent sends of one Fanout call.
const FanoutLimit = 4

// Message is a notification. Markup is only honored by Telegram.
type Message struct {
	Event    string
	Text     string
	Markup   *tgbotapi.InlineKeyboardMarkup
	Metadata map[string]any
}

// ChannelSender defines the interface for sending notifications.
type ChannelSender interface {
	Send(ctx context.Context, userID int64, msg Message) error
	Name() string
}

// Dispatcher routes notifications to the registered channels.
type Dispatcher struct {
	channels map[Channel]ChannelSender
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		channels: make(map[Channel]ChannelSender),
		logger:   logger,
	}
}

// Register registers a channel sender.
func (d *Dispatcher) Register(channel Channel, sender ChannelSender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[channel] = sender
	d.logger.Info("registered notification channel", "channel", channel, "sender", sender.Name())
}

func (d *Dispatcher) sender(channel Channel) (ChannelSender, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sender, ok := d.channels[channel]
	return sender, ok
}

// Has reports whether channel is registered.
func (d *Dispatcher) Has(channel Channel) bool {
	_, ok := d.sender(channel)
	return ok
}

// Send sends a notification through the specified channel.
func (d *Dispatcher) Send(ctx context.Context, channel Channel, userID int64, msg Message) error {
	sender, ok := d.sender(channel)
	if !ok {
		return fmt.Errorf("channel not registered: %s", channel)
	}
	return sender.Send(ctx, userID, msg)
}

// Fanout sends msg to every recipient through channel, FanoutLimit at a time.
// A failed recipient does not stop the others; failures are returned by
// recipient.
func (d *Dispatcher) Fanout(ctx context.Context, channel Channel, recipients []int64, msg Message) map[int64]error {
	sender, ok := d.sender(channel)
	if !ok {
		failed := make(map[int64]error, len(recipients))
		for _, id := range recipients {
			failed[id] = fmt.Errorf("channel not registered: %s", channel)
		}
		return failed
	}

	var (
		mu     sync.Mutex
		failed = make(map[int64]error)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(FanoutLimit)
	for _, id := range recipients {
		id := id
		g.Go(func() error {
			if err := sender.Send(gctx, id, msg); err != nil {
				d.logger.Warn("notification failed",
					"channel", channel,
					"user_id", id,
					"error", err,
				)
				mu.Lock()
				failed[id] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failed
}
