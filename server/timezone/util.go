// Package timezone holds the calendar helpers shared by the bot, the store
// and the Todoist client.
package timezone

import (
	"fmt"
	"time"
)

const (
	// TimezoneEuropeMoscow is the default calendar of the bot.
	TimezoneEuropeMoscow = "Europe/Moscow"

	// DisplayLayout renders appointments in chat replies ("25.12.2024 в 18:00").
	DisplayLayout = "02.01.2006 в 15:04"
	// DueLayout is the Todoist due_datetime layout: local wall time, no offset.
	DueLayout = "2006-01-02T15:04:05"
	// DateLayout is the anchor layout accepted by the HTTP API and the CLI.
	DateLayout = "2006-01-02"
)

// ParseTimezone parses an IANA timezone identifier (e.g., "Europe/Moscow").
// An empty identifier means Europe/Moscow. If the timezone is invalid,
// returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" {
		tz = TimezoneEuropeMoscow
	}
	if tz == "UTC" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// FormatAppointment formats t in tz for a chat reply.
func FormatAppointment(t time.Time, tz *time.Location) string {
	if tz == nil {
		tz = t.Location()
	}
	return t.In(tz).Format(DisplayLayout)
}

// FormatDue formats t as a Todoist floating due datetime in tz.
func FormatDue(t time.Time, tz *time.Location) string {
	if tz == nil {
		tz = t.Location()
	}
	return t.In(tz).Format(DueLayout)
}

// ParseDate parses a YYYY-MM-DD date as midnight in tz.
func ParseDate(s string, tz *time.Location) (time.Time, error) {
	if tz == nil {
		tz = time.UTC
	}
	return time.ParseInLocation(DateLayout, s, tz)
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tz)
}
