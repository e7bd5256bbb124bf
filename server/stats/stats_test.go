package stats

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/haircutbot/store"
	"github.com/hrygo/haircutbot/store/test"
)

var msk = time.FixedZone("MSK", 3*60*60)

func TestCollector_Collect(t *testing.T) {
	ctx := context.Background()
	ts := test.NewTestingStore(ctx, t, "sqlite")

	// Wednesday.
	now := time.Date(2024, 6, 12, 9, 41, 0, 0, msk)
	create := func(uid string, creator int64, start time.Time, status store.AppointmentStatus) {
		_, err := ts.CreateAppointment(ctx, &store.Appointment{
			UID:       uid,
			CreatorID: creator,
			TaskID:    "task-" + uid,
			Title:     "Стрижка",
			StartTs:   start.Unix(),
			EndTs:     start.Add(90 * time.Minute).Unix(),
			Timezone:  "UTC",
			Status:    status,
			CreatedTs: now.Add(-2 * time.Hour).Unix(),
		})
		require.NoError(t, err)
	}
	create("a", 1, now.Add(-24*time.Hour), store.AppointmentActive)  // this week, past
	create("b", 1, now.Add(48*time.Hour), store.AppointmentActive)   // this week
	create("c", 2, now.AddDate(0, 0, 6), store.AppointmentActive)    // next week
	create("d", 2, now.AddDate(0, 0, 1), store.AppointmentCancelled) // cancelled
	create("e", 3, now.AddDate(0, 1, 0), store.AppointmentActive)    // later

	collector := NewCollector(ts, msk, slog.New(slog.NewTextHandler(io.Discard, nil)))
	collector.now = func() time.Time { return now }
	collector.Collect(ctx)

	s := collector.GetStats()
	assert.Equal(t, int64(5), s.TotalAppointments)
	assert.Equal(t, int64(4), s.Active)
	assert.Equal(t, int64(1), s.Cancelled)
	assert.Equal(t, int64(3), s.Upcoming)
	assert.Equal(t, int64(2), s.ThisWeek)
	assert.Equal(t, int64(1), s.NextWeek)
	assert.Equal(t, int64(3), s.Users)
	assert.True(t, s.LastUpdated.Equal(now))

	summary := s.GetSummary()
	assert.Contains(t, summary, "Всего: 5")
	assert.Contains(t, summary, "Последняя запись: 2 ч. назад")
}

func TestCollector_StartStop(t *testing.T) {
	ctx := context.Background()
	ts := test.NewTestingStore(ctx, t, "sqlite")

	collector := NewCollector(ts, nil, nil)
	collector.Start(ctx, time.Hour)
	collector.Stop()
	collector.Stop()

	assert.False(t, collector.GetStats().LastUpdated.IsZero())
	assert.Equal(t, "нет", formatLastBooking(time.Time{}, time.Now()))
}

func TestGetWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 6, 12, 9, 0, 0, 0, msk), "2024-06-10"},
		{time.Date(2024, 6, 10, 0, 0, 0, 0, msk), "2024-06-10"},
		{time.Date(2024, 6, 16, 23, 59, 0, 0, msk), "2024-06-10"},
		{time.Date(2024, 6, 17, 1, 0, 0, 0, msk), "2024-06-17"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, getWeekStart(tt.in).Format("2006-01-02"))
	}
}
