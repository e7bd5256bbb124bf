package profile

import (
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"TELEGRAM_BOT_TOKEN",
	"TODOIST_API_TOKEN",
	"TODOIST_API_BASE_URL",
	"ALLOWED_USERS",
	"USERS_CONFIG",
	"APP_TIMEZONE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

func TestProfileDefaults(t *testing.T) {
	clearEnv(t)

	p := &Profile{Data: t.TempDir()}
	p.FromEnv()
	require.NoError(t, p.Validate())

	assert.Equal(t, "demo", p.Mode)
	assert.Equal(t, DefaultTimezone, p.Timezone)
	assert.Equal(t, DefaultTodoistBaseURL, p.TodoistBaseURL)
	assert.Equal(t, DefaultDurationMinutes, p.DefaultDurationMinutes)
	assert.Equal(t, 90*time.Minute, p.Duration())
	assert.Equal(t, 14, p.DefaultHour)
	assert.Equal(t, 0, p.DefaultMinute)
	assert.Equal(t, 60, p.PollTimeout)
	assert.Equal(t, "sqlite", p.Driver)
	assert.Equal(t, filepath.Join(p.Data, "haircutbot_demo.db"), p.DSN)
	assert.True(t, p.IsDev())
}

func TestProfileFromEnv(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name     string
		envVar   string
		envValue string
		field    func(*Profile) string
	}{
		{"telegram token", "TELEGRAM_BOT_TOKEN", "123:abc", func(p *Profile) string { return p.TelegramToken }},
		{"todoist token", "TODOIST_API_TOKEN", "todo-key", func(p *Profile) string { return p.TodoistToken }},
		{"todoist base url", "TODOIST_API_BASE_URL", "http://localhost:8080", func(p *Profile) string { return p.TodoistBaseURL }},
		{"allowed users", "ALLOWED_USERS", "[1,2]", func(p *Profile) string { return p.AllowedUsers }},
		{"users config", "USERS_CONFIG", `{"1":"x"}`, func(p *Profile) string { return p.UsersConfig }},
		{"timezone", "APP_TIMEZONE", "Asia/Yekaterinburg", func(p *Profile) string { return p.Timezone }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.envValue)

			p := &Profile{}
			p.FromEnv()
			assert.Equal(t, tt.envValue, tt.field(p))
		})
	}
}

func TestProfileFromEnv_KeepsExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")

	p := &Profile{TelegramToken: "from-flag"}
	p.FromEnv()
	assert.Equal(t, "from-flag", p.TelegramToken)
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{"defaults", Profile{}, false},
		{"prod mode kept", Profile{Mode: "prod"}, false},
		{"postgres without dsn", Profile{Driver: "postgres"}, false},
		{"unknown timezone", Profile{Timezone: "Mars/Olympus"}, true},
		{"hour out of range", Profile{DefaultHour: 24}, true},
		{"negative minute", Profile{DefaultMinute: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			p.Data = t.TempDir()
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(p.Data))
		})
	}
}

func TestProfileValidate_PostgresKeepsEmptyDSN(t *testing.T) {
	p := &Profile{Driver: "postgres", Data: t.TempDir()}
	require.NoError(t, p.Validate())
	assert.Empty(t, p.DSN)
}

func TestProfileValidateBot(t *testing.T) {
	p := &Profile{}
	assert.Error(t, p.ValidateBot())

	p.TelegramToken = "  "
	assert.Error(t, p.ValidateBot())

	p.TelegramToken = "123:abc"
	assert.NoError(t, p.ValidateBot())
}
