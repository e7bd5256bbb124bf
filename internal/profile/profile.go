package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultTimezone is the calendar every appointment is resolved in.
	DefaultTimezone = "Europe/Moscow"
	// DefaultTodoistBaseURL is the Todoist REST API root.
	DefaultTodoistBaseURL = "https://api.todoist.com/rest/v2"
	// DefaultDurationMinutes is the appointment length.
	DefaultDurationMinutes = 90
	// DefaultHour and DefaultMinute are used when a message has a date but no time.
	DefaultHour   = 14
	DefaultMinute = 0
)

// Profile is the configuration to start the bot.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for the HTTP server
	Addr string
	// Port is the binding port for the HTTP server; 0 disables it
	Port int
	// Data is the data directory
	Data string
	// DSN points to where the bot stores appointments
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the bot
	Version string

	// Telegram
	TelegramToken string // TELEGRAM_BOT_TOKEN
	TelegramDebug bool
	PollTimeout   int // long polling timeout, seconds

	// Todoist
	TodoistBaseURL string // TODOIST_API_BASE_URL
	TodoistToken   string // TODOIST_API_TOKEN, used for the "default" user

	// Appointments
	Timezone               string // APP_TIMEZONE
	DefaultDurationMinutes int
	DefaultHour            int
	DefaultMinute          int

	// Users
	AllowedUsers string // ALLOWED_USERS: JSON array or comma-separated ids
	UsersConfig  string // USERS_CONFIG: JSON object keyed by user id

	// Notifications
	NotifyWebhookURL    string
	NotifyWebhookSecret string

	// RateLimitPerMinute caps appointment messages per user; 0 disables the limit.
	RateLimitPerMinute int
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Duration returns the appointment length.
func (p *Profile) Duration() time.Duration {
	return time.Duration(p.DefaultDurationMinutes) * time.Minute
}

// FromEnv fills empty fields from the plain environment names used by
// earlier deployments of the bot.
func (p *Profile) FromEnv() {
	setIfEmpty := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	setIfEmpty(&p.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setIfEmpty(&p.TodoistToken, "TODOIST_API_TOKEN")
	setIfEmpty(&p.TodoistBaseURL, "TODOIST_API_BASE_URL")
	setIfEmpty(&p.AllowedUsers, "ALLOWED_USERS")
	setIfEmpty(&p.UsersConfig, "USERS_CONFIG")
	setIfEmpty(&p.Timezone, "APP_TIMEZONE")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate fills defaults and checks the values that can be checked offline.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Timezone == "" {
		p.Timezone = DefaultTimezone
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return errors.Wrapf(err, "invalid timezone %q", p.Timezone)
	}
	if p.TodoistBaseURL == "" {
		p.TodoistBaseURL = DefaultTodoistBaseURL
	}
	if p.DefaultDurationMinutes <= 0 {
		p.DefaultDurationMinutes = DefaultDurationMinutes
	}
	// 00:00 is treated as unset.
	if p.DefaultHour == 0 && p.DefaultMinute == 0 {
		p.DefaultHour, p.DefaultMinute = DefaultHour, DefaultMinute
	}
	if p.DefaultHour < 0 || p.DefaultHour > 23 || p.DefaultMinute < 0 || p.DefaultMinute > 59 {
		return errors.Errorf("invalid default time %02d:%02d", p.DefaultHour, p.DefaultMinute)
	}
	if p.PollTimeout <= 0 {
		p.PollTimeout = 60
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "haircutbot")
		} else {
			p.Data = "/var/opt/haircutbot"
		}
	}
	if p.Data == "" {
		p.Data = "."
	}
	if err := os.MkdirAll(p.Data, 0770); err != nil {
		slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
		return errors.Wrap(err, "failed to create data directory")
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("haircutbot_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}

// ValidateBot checks the settings required to talk to Telegram.
func (p *Profile) ValidateBot() error {
	if strings.TrimSpace(p.TelegramToken) == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	return nil
}
