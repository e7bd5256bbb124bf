package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestBotError_Error(t *testing.T) {
	err := TodoistUnavailable("create task", stderrors.New("timeout"))
	assert.Equal(t, "[TODOIST_UNAVAILABLE] create task: timeout", err.Error())
	assert.Equal(t, "[TASK_NOT_FOUND] task 42 not found", TaskNotFound("42").Error())
}

func TestIsCode_Wrapped(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := pkgerrors.Wrap(TodoistUnavailable("create task", cause), "schedule")

	assert.True(t, IsCode(err, ErrCodeTodoistUnavailable))
	assert.False(t, IsCode(err, ErrCodeNoDateFound))
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("handle: %w", NoDateFound("привет"))
	assert.True(t, IsCode(wrapped, ErrCodeNoDateFound))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeNoDateFound))
	assert.False(t, IsCode(nil, ErrCodeNoDateFound))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", Unauthorized(1), userMessages[ErrCodeUnauthorized]},
		{"no date", NoDateFound("x"), userMessages[ErrCodeNoDateFound]},
		{"wrapped", pkgerrors.Wrap(ConfigMissing(5), "lookup"), userMessages[ErrCodeConfigMissing]},
		{"rate limit", RateLimitExceeded(1), userMessages[ErrCodeRateLimitExceeded]},
		{"plain error", stderrors.New("boom"), GenericUserMessage},
		{"unknown code", Wrap(nil, ErrorCode("OTHER"), "x"), GenericUserMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
