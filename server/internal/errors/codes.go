package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific error type of a bot operation.
type ErrorCode string

const (
	// ErrCodeUnauthorized indicates the user is not on the allow list.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeRateLimitExceeded indicates the user sends messages too fast.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeNoDateFound indicates the message has no recognizable date.
	ErrCodeNoDateFound ErrorCode = "NO_DATE_FOUND"
	// ErrCodeConfigMissing indicates no Todoist configuration exists for the user.
	ErrCodeConfigMissing ErrorCode = "CONFIG_MISSING"
	// ErrCodeTodoistUnavailable indicates a failed Todoist call.
	ErrCodeTodoistUnavailable ErrorCode = "TODOIST_UNAVAILABLE"
	// ErrCodeTaskNotFound indicates the appointment is unknown.
	ErrCodeTaskNotFound ErrorCode = "TASK_NOT_FOUND"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// userMessages are the chat replies per code.
var userMessages = map[ErrorCode]string{
	ErrCodeUnauthorized:       "❌ Извините, у вас нет доступа к этому боту.\n\nОбратитесь к администратору для получения доступа.",
	ErrCodeRateLimitExceeded:  "⏳ Слишком много сообщений. Попробуйте через минуту.",
	ErrCodeNoDateFound:        "❌ Не удалось найти дату в вашем сообщении.\n\nПопробуйте написать более четко, например:\n• 'Стрижка 15 сентября в 14:00'\n• 'Парикмахерская завтра в 10:30'",
	ErrCodeConfigMissing:      "❌ Конфигурация пользователя не найдена.\n\nОбратитесь к администратору для настройки.",
	ErrCodeTodoistUnavailable: "❌ Ошибка при создании события в Todoist.\n\nПопробуйте еще раз через несколько минут.",
	ErrCodeTaskNotFound:       "❌ Запись не найдена в Todoist.",
	ErrCodeInvalidArgument:    "❌ Некорректный запрос.",
}

// GenericUserMessage is the reply for errors without a code.
const GenericUserMessage = "❌ Произошла ошибка. Попробуйте еще раз через несколько минут."

// BotError represents a structured error of a bot operation.
type BotError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *BotError) Unwrap() error {
	return e.Cause
}

// Unauthorized creates an unauthorized error.
func Unauthorized(userID int64) *BotError {
	return &BotError{Code: ErrCodeUnauthorized, Message: fmt.Sprintf("user %d is not allowed", userID)}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(userID int64) *BotError {
	return &BotError{Code: ErrCodeRateLimitExceeded, Message: fmt.Sprintf("user %d exceeded the rate limit", userID)}
}

// NoDateFound creates an error for a message without a date.
func NoDateFound(text string) *BotError {
	return &BotError{Code: ErrCodeNoDateFound, Message: fmt.Sprintf("no date found in %q", text)}
}

// ConfigMissing creates an error for a user without Todoist configuration.
func ConfigMissing(userID int64) *BotError {
	return &BotError{Code: ErrCodeConfigMissing, Message: fmt.Sprintf("no todoist config for user %d", userID)}
}

// TodoistUnavailable wraps a failed Todoist call.
func TodoistUnavailable(msg string, cause error) *BotError {
	return &BotError{Code: ErrCodeTodoistUnavailable, Message: msg, Cause: cause}
}

// TaskNotFound creates an error for an unknown task.
func TaskNotFound(taskID string) *BotError {
	return &BotError{Code: ErrCodeTaskNotFound, Message: fmt.Sprintf("task %s not found", taskID)}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *BotError {
	return &BotError{Code: ErrCodeInvalidArgument, Message: msg}
}

// Wrap wraps an existing error with a code.
func Wrap(cause error, code ErrorCode, msg string) *BotError {
	return &BotError{Code: code, Message: msg, Cause: cause}
}

// CodeOf returns the code of the first BotError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr.Code, true
	}
	return "", false
}

// IsCode checks if an error chain carries a specific code.
func IsCode(err error, code ErrorCode) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}

// UserMessage returns the chat reply for err.
func UserMessage(err error) string {
	if code, ok := CodeOf(err); ok {
		if msg, ok := userMessages[code]; ok {
			return msg
		}
	}
	return GenericUserMessage
}
