package users

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRegistry_IsAllowed(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		user    int64
		want    bool
	}{
		{"empty allows everyone", "", 99, true},
		{"blank allows everyone", "   ", 99, true},
		{"csv member", "111, 222", 222, true},
		{"csv stranger", "111,222", 333, false},
		{"json strings", `["111", "222"]`, 111, true},
		{"json numbers", `[111, 222]`, 222, true},
		{"json stranger", `[111]`, 222, false},
		{"broken json allows everyone", `[111`, 222, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(tt.allowed, "", "", quiet)
			assert.Equal(t, tt.want, r.IsAllowed(tt.user))
		})
	}
}

func TestRegistry_Config(t *testing.T) {
	r := NewRegistry("", `{
		"111": {"todoist_token": "token123", "event_title": "Парикмахерская", "add_comment": false},
		"222": "plain-token",
		"333": 42,
		"default": {"todoist_token": "defaultToken"}
	}`, "", quiet)

	cfg, ok := r.Config(111)
	require.True(t, ok)
	assert.Equal(t, UserConfig{TodoistToken: "token123", EventTitle: "Парикмахерская", AddComment: false}, cfg)

	cfg, ok = r.Config(222)
	require.True(t, ok)
	assert.Equal(t, UserConfig{TodoistToken: "plain-token", EventTitle: DefaultEventTitle, AddComment: true}, cfg)

	cfg, ok = r.Config(333)
	require.True(t, ok)
	assert.Empty(t, cfg.TodoistToken)
	assert.False(t, r.HasTodoist(333))

	cfg, ok = r.Config(999)
	require.True(t, ok)
	assert.Equal(t, "defaultToken", cfg.TodoistToken)
	assert.Equal(t, DefaultEventTitle, cfg.EventTitle)
	assert.True(t, cfg.AddComment)
}

func TestRegistry_NoConfig(t *testing.T) {
	r := NewRegistry("", `{"111": "token"}`, "", quiet)
	_, ok := r.Config(222)
	assert.False(t, ok)
	assert.False(t, r.HasTodoist(222))

	r = NewRegistry("", `not json`, "", quiet)
	_, ok = r.Config(111)
	assert.False(t, ok)
	assert.Empty(t, r.ConfiguredUsers())
}

func TestRegistry_FallbackToken(t *testing.T) {
	r := NewRegistry("", "", "main-token", quiet)
	cfg, ok := r.Config(5)
	require.True(t, ok)
	assert.Equal(t, "main-token", cfg.TodoistToken)
	assert.Empty(t, r.ConfiguredUsers())

	// An explicit config ignores the fallback token.
	r = NewRegistry("", `{"1": "own"}`, "main-token", quiet)
	_, ok = r.Config(5)
	assert.False(t, ok)
}

func TestRegistry_ConfiguredUsers(t *testing.T) {
	r := NewRegistry("", `{"300": "a", "100": "b", "default": "c", "alice": "d", "200": "e"}`, "", quiet)
	assert.Equal(t, []int64{100, 200, 300}, r.ConfiguredUsers())
}

func TestRegistry_NotifyTargets(t *testing.T) {
	r := NewRegistry("100,200", `{"100": "a", "200": "b", "300": "c", "default": "d"}`, "", quiet)
	// 300 is configured but not allowed; the creator is skipped.
	assert.Equal(t, []int64{200}, r.NotifyTargets(100))

	open := NewRegistry("", `{"100": "a", "200": "b"}`, "", quiet)
	assert.Equal(t, []int64{100}, open.NotifyTargets(200))
	assert.Equal(t, []int64{100, 200}, open.NotifyTargets(1))
}
