package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hrygo/haircutbot/server/timezone"
	"github.com/hrygo/haircutbot/store"
)

// DeleteCallbackPrefix prefixes the callback data of the delete button.
const DeleteCallbackPrefix = "delete_"

const (
	welcomeText = `Привет! 👋

Я бот для создания событий стрижки в Todoist.

Просто отправь мне сообщение с датой и временем стрижки, например:
• 'Стрижка 15 сентября в 14:00'
• 'Парикмахерская завтра в 10:30'
• 'Стригусь в пятницу в 16:00'

Можно добавить комментарий с новой строки:
• 'Стрижка 15 сентября в 14:00
  без бороды'

Я автоматически создам событие на %s в твоем Todoist!`

	helpText = `📋 Как пользоваться ботом:

1. Отправь сообщение с датой и временем стрижки
2. Я найду дату в твоем сообщении
3. Создам событие 'Стрижка' на %s в Todoist

Примеры сообщений:
• 'Стрижка 20 августа в 15:00'
• 'Завтра в 11:30 стригусь'
• 'В понедельник в 14:00 к парикмахеру'
• 'В следующую пятницу в 12:00'
• '25.12 в 18:00'

Без времени запись ставится на %s.

Добавить комментарий можно с новой строки:
• 'Стрижка 20 августа в 15:00
  без бороды'
• 'Завтра в 11:30 стригусь
  как в прошлый раз'

Команды:
/start - начать работу с ботом
/help - показать эту справку
/list - показать предстоящие записи`

	processingText       = "⏳ Обрабатываем сообщение..."
	deletingText         = "⏳ Удаляем запись..."
	accessDeniedCallback = "❌ Доступ запрещен"
	noConfigCallback     = "❌ Конфигурация пользователя не найдена"
	unknownCallbackText  = "❓ Неизвестная команда"
	noAppointmentsText   = "📭 У вас нет предстоящих записей."

	deletedText = `🗑 Запись успешно удалена!

❌ Событие удалено из Todoist`
)

func formatWelcome(d time.Duration) string {
	return fmt.Sprintf(welcomeText, formatDuration(d))
}

func formatHelp(d time.Duration, defaultTime string) string {
	return fmt.Sprintf(helpText, formatDuration(d), defaultTime)
}

// formatDuration renders d in hours the way the chat replies do:
// "1 час", "2 часа", "5 часов", "1.5 часа".
func formatDuration(d time.Duration) string {
	minutes := int(d / time.Minute)
	if minutes%60 != 0 {
		return strconv.FormatFloat(float64(minutes)/60, 'f', -1, 64) + " часа"
	}
	hours := minutes / 60
	switch {
	case hours%10 == 1 && hours%100 != 11:
		return fmt.Sprintf("%d час", hours)
	case hours%10 >= 2 && hours%10 <= 4 && (hours%100 < 12 || hours%100 > 14):
		return fmt.Sprintf("%d часа", hours)
	default:
		return fmt.Sprintf("%d часов", hours)
	}
}

type booking struct {
	Title     string
	Start     time.Time
	Duration  time.Duration
	Comment   string
	Conflicts []time.Time
}

func formatCreated(b booking) string {
	var sb strings.Builder
	sb.WriteString("✅ Событие успешно создано!\n\n")
	fmt.Fprintf(&sb, "📅 %s: %s\n", b.Title, timezone.FormatAppointment(b.Start, nil))
	fmt.Fprintf(&sb, "⏰ Длительность: %s\n", formatDuration(b.Duration))
	sb.WriteString("📋 Добавлено в Todoist")
	if strings.TrimSpace(b.Comment) != "" {
		fmt.Fprintf(&sb, "\n📝 Комментарий: %s", b.Comment)
	}
	for _, c := range b.Conflicts {
		fmt.Fprintf(&sb, "\n⚠️ Пересекается с записью на %s", timezone.FormatAppointment(c, nil))
	}
	return sb.String()
}

func formatNewBooking(b booking) string {
	return fmt.Sprintf("🔔 Новая запись!\n\n📅 %s: %s\n⏰ Длительность: %s\n📋 Добавлено в Todoist",
		b.Title, timezone.FormatAppointment(b.Start, nil), formatDuration(b.Duration))
}

func formatDeleteError(reason string) string {
	return fmt.Sprintf("❌ Ошибка при удалении:\n%s\n\nПопробуйте еще раз или обратитесь к администратору.", reason)
}

func formatList(list []*store.Appointment) string {
	if len(list) == 0 {
		return noAppointmentsText
	}
	var sb strings.Builder
	sb.WriteString("📅 Предстоящие записи:\n")
	for i, a := range list {
		fmt.Fprintf(&sb, "\n%d. %s: %s", i+1, a.Title, timezone.FormatAppointment(a.StartTime(), nil))
		if a.Comment != "" {
			fmt.Fprintf(&sb, " (%s)", a.Comment)
		}
	}
	return sb.String()
}

func deleteKeyboard(taskID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить запись", DeleteCallbackPrefix+taskID),
		),
	)
}
