package bot

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/hrygo/haircutbot/plugin/notify"
	boterrors "github.com/hrygo/haircutbot/server/internal/errors"
	"github.com/hrygo/haircutbot/server/internal/observability"
	"github.com/hrygo/haircutbot/server/service/appointment"
)

func (b *Bot) handleCommand(ctx context.Context, m *tgbotapi.Message) error {
	userID := m.From.ID
	switch m.Command() {
	case "start":
		if !b.access.IsAllowed(userID) {
			b.reply(ctx, m.Chat.ID, boterrors.UserMessage(boterrors.Unauthorized(userID)))
			return nil
		}
		b.reply(ctx, m.Chat.ID, formatWelcome(b.config.Duration))
	case "help":
		b.reply(ctx, m.Chat.ID, formatHelp(b.config.Duration, b.config.DefaultTime))
	case "list":
		if !b.access.IsAllowed(userID) {
			b.reply(ctx, m.Chat.ID, boterrors.UserMessage(boterrors.Unauthorized(userID)))
			return nil
		}
		list, err := b.appointments.List(ctx, userID, b.messageTime(m), b.config.ListLimit)
		if err != nil {
			b.reply(ctx, m.Chat.ID, boterrors.GenericUserMessage)
			return errors.Wrap(err, "failed to list appointments")
		}
		b.reply(ctx, m.Chat.ID, formatList(list))
	}
	return nil
}

func (b *Bot) handleAppointment(ctx context.Context, m *tgbotapi.Message) error {
	userID := m.From.ID
	logger := observability.LoggerFrom(ctx, b.logger)
	logger.Info("appointment message received", observability.LogFieldMessageLen, len(m.Text))

	if !b.access.IsAllowed(userID) {
		b.reply(ctx, m.Chat.ID, boterrors.UserMessage(boterrors.Unauthorized(userID)))
		return nil
	}
	if !b.limiter.AllowUser(userID) {
		b.reply(ctx, m.Chat.ID, boterrors.UserMessage(boterrors.RateLimitExceeded(userID)))
		return nil
	}
	if !b.access.HasTodoist(userID) {
		b.reply(ctx, m.Chat.ID, boterrors.UserMessage(boterrors.ConfigMissing(userID)))
		return nil
	}

	b.reply(ctx, m.Chat.ID, processingText)

	result, err := b.appointments.Schedule(ctx, &appointment.ScheduleRequest{
		UserID: userID,
		Text:   m.Text,
		Now:    b.messageTime(m),
	})
	if err != nil {
		b.reply(ctx, m.Chat.ID, boterrors.UserMessage(err))
		if boterrors.IsCode(err, boterrors.ErrCodeNoDateFound) {
			return nil
		}
		return err
	}

	b.notifyCreated(ctx, userID, result)
	return nil
}

// notifyCreated sends the creator a card with the delete button and tells
// every other configured user about the new booking.
func (b *Bot) notifyCreated(ctx context.Context, creator int64, result *appointment.Result) {
	logger := observability.LoggerFrom(ctx, b.logger)
	details := booking{
		Title:    result.Title,
		Start:    result.Start,
		Duration: result.Duration(),
		Comment:  result.Comment,
	}
	for _, c := range result.Conflicts {
		details.Conflicts = append(details.Conflicts, c.StartTime())
	}

	markup := deleteKeyboard(result.TaskID)
	if err := b.dispatcher.Send(ctx, notify.ChannelTelegram, creator, notify.Message{
		Event:  notify.EventAppointmentCreated,
		Text:   formatCreated(details),
		Markup: &markup,
	}); err != nil {
		logger.Error("failed to send confirmation", observability.LogFieldTaskID, result.TaskID, "error", err)
	}

	targets := b.access.NotifyTargets(creator)
	if len(targets) > 0 {
		errs := b.dispatcher.Fanout(ctx, notify.ChannelTelegram, targets, notify.Message{
			Event: notify.EventAppointmentCreated,
			Text:  formatNewBooking(details),
		})
		for userID, err := range errs {
			logger.Warn("failed to notify user", "recipient", userID, "error", err)
		}
	}

	if b.dispatcher.Has(notify.ChannelWebhook) {
		if err := b.dispatcher.Send(ctx, notify.ChannelWebhook, creator, notify.Message{
			Event: notify.EventAppointmentCreated,
			Text:  formatNewBooking(details),
			Metadata: map[string]any{
				"task_id": result.TaskID,
				"title":   result.Title,
				"start":   result.Start.Format(time.RFC3339),
				"end":     result.End.Format(time.RFC3339),
			},
		}); err != nil {
			logger.Warn("failed to call webhook", observability.LogFieldTaskID, result.TaskID, "error", err)
		}
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	userID := q.From.ID
	if !b.access.IsAllowed(userID) {
		b.answer(ctx, q, accessDeniedCallback)
		return nil
	}

	taskID, ok := strings.CutPrefix(q.Data, DeleteCallbackPrefix)
	if !ok {
		b.answer(ctx, q, unknownCallbackText)
		return nil
	}
	if !b.access.HasTodoist(userID) {
		b.answer(ctx, q, noConfigCallback)
		return nil
	}

	b.answer(ctx, q, deletingText)

	err := b.appointments.Cancel(ctx, userID, taskID)
	text := deletedText
	if err != nil {
		text = formatDeleteError(deleteReason(err))
	}
	if q.Message != nil {
		edit := tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, text)
		if _, sendErr := b.api.Send(edit); sendErr != nil {
			observability.LoggerFrom(ctx, b.logger).Error("failed to edit message", observability.LogFieldTaskID, taskID, "error", sendErr)
		}
	}
	return err
}

func deleteReason(err error) string {
	code, _ := boterrors.CodeOf(err)
	switch code {
	case boterrors.ErrCodeTaskNotFound:
		return "Запись не найдена в Todoist"
	case boterrors.ErrCodeInvalidArgument:
		return "Некорректный идентификатор записи"
	case boterrors.ErrCodeConfigMissing:
		return "Конфигурация пользователя не найдена"
	default:
		return "Todoist недоступен"
	}
}

func (b *Bot) answer(ctx context.Context, q *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, text)); err != nil {
		observability.LoggerFrom(ctx, b.logger).Warn("failed to answer callback", "callback_id", q.ID, "error", err)
	}
}

// messageTime returns when m was sent, falling back to the bot clock.
func (b *Bot) messageTime(m *tgbotapi.Message) time.Time {
	if m.Date != 0 {
		return m.Time()
	}
	return b.now()
}
