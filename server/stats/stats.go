// Package stats keeps appointment statistics for the API and startup logs.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hrygo/haircutbot/store"
)

// Lister is the store read used by the collector.
type Lister interface {
	ListAppointments(ctx context.Context, find *store.FindAppointment) ([]*store.Appointment, error)
}

// Stats represents appointment statistics.
type Stats struct {
	TotalAppointments int64 `json:"total_appointments"`
	Active            int64 `json:"active"`
	Cancelled         int64 `json:"cancelled"`
	Upcoming          int64 `json:"upcoming"`
	ThisWeek          int64 `json:"this_week"`
	NextWeek          int64 `json:"next_week"`
	// Users counts distinct creators.
	Users int64 `json:"users"`

	LastBooking time.Time `json:"last_booking"`
	LastUpdated time.Time `json:"last_updated"`
}

// Collector collects and manages appointment statistics.
type Collector struct {
	store    Lister
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	stats    Stats
	stopOnce sync.Once
	tickStop chan struct{}
}

// NewCollector creates a new statistics collector. Weeks are computed in loc.
func NewCollector(st Lister, loc *time.Location, logger *slog.Logger) *Collector {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		store:    st,
		location: loc,
		logger:   logger,
		now:      time.Now,
		tickStop: make(chan struct{}),
	}
}

// Start collects once and then every interval until ctx is done or Stop.
func (c *Collector) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	c.Collect(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Collect(ctx)
			case <-ctx.Done():
				return
			case <-c.tickStop:
				return
			}
		}
	}()
}

// Stop stops the statistics collector.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.tickStop) })
}

// GetStats returns a copy of current statistics.
func (c *Collector) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Collect recomputes the statistics from the store.
func (c *Collector) Collect(ctx context.Context) {
	list, err := c.store.ListAppointments(ctx, &store.FindAppointment{})
	if err != nil {
		c.logger.Warn("failed to collect appointment stats", "error", err)
		return
	}

	now := c.now().In(c.location)
	thisWeekStart := getWeekStart(now)
	nextWeekStart := thisWeekStart.AddDate(0, 0, 7)
	weekAfter := nextWeekStart.AddDate(0, 0, 7)

	s := Stats{TotalAppointments: int64(len(list)), LastUpdated: now}
	creators := make(map[int64]struct{})
	for _, a := range list {
		creators[a.CreatorID] = struct{}{}
		if created := time.Unix(a.CreatedTs, 0); created.After(s.LastBooking) {
			s.LastBooking = created
		}
		if a.Status == store.AppointmentCancelled {
			s.Cancelled++
			continue
		}
		s.Active++

		start := time.Unix(a.StartTs, 0)
		if !start.Before(now) {
			s.Upcoming++
		}
		switch {
		case !start.Before(thisWeekStart) && start.Before(nextWeekStart):
			s.ThisWeek++
		case !start.Before(nextWeekStart) && start.Before(weekAfter):
			s.NextWeek++
		}
	}
	s.Users = int64(len(creators))

	c.mu.Lock()
	c.stats = s
	c.mu.Unlock()
}

// GetSummary returns a human-readable summary.
func (s Stats) GetSummary() string {
	return fmt.Sprintf(`📊 Статистика (обновлено: %s)

📅 Записи
  Всего: %d
  Активных: %d
  Отменено: %d
  Предстоящих: %d

🗓 По неделям
  Эта неделя: %d
  Следующая неделя: %d

👥 Пользователей: %d
🕒 Последняя запись: %s`,
		s.LastUpdated.Format("02.01.2006 15:04"),
		s.TotalAppointments,
		s.Active,
		s.Cancelled,
		s.Upcoming,
		s.ThisWeek,
		s.NextWeek,
		s.Users,
		formatLastBooking(s.LastBooking, s.LastUpdated),
	)
}

func formatLastBooking(t, now time.Time) string {
	if t.IsZero() {
		return "нет"
	}
	d := now.Sub(t)
	switch {
	case d < time.Hour:
		return "только что"
	case d < 24*time.Hour:
		return fmt.Sprintf("%d ч. назад", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d дн. назад", int(d.Hours()/24))
	default:
		return t.In(now.Location()).Format("02.01.2006")
	}
}

// getWeekStart returns Monday 00:00 of t's week in t's location.
func getWeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -weekday+1)
}
