package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimezone(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		want    string
		wantErr bool
	}{
		{name: "UTC", tz: "UTC", want: "UTC"},
		{name: "empty string defaults to Moscow", tz: "", want: TimezoneEuropeMoscow},
		{name: "Europe/Moscow", tz: "Europe/Moscow", want: "Europe/Moscow"},
		{name: "Asia/Yekaterinburg", tz: "Asia/Yekaterinburg", want: "Asia/Yekaterinburg"},
		{name: "invalid timezone", tz: "Invalid/Timezone", want: "UTC", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseTimezone(tt.tz)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.NotNil(t, loc)
			assert.Equal(t, tt.want, loc.String())
		})
	}
}

func TestMustParseTimezone_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseTimezone("Invalid/Timezone") })
	assert.NotPanics(t, func() { MustParseTimezone("Europe/Moscow") })
}

func TestFormat(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	at := time.Date(2024, 12, 25, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "25.12.2024 в 18:00", FormatAppointment(at, msk))
	assert.Equal(t, "25.12.2024 в 15:00", FormatAppointment(at, nil))
	assert.Equal(t, "2024-12-25T18:00:00", FormatDue(at, msk))
	assert.Equal(t, "2024-12-25T15:00:00", FormatDue(at, nil))
}

func TestParseDate(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)

	d, err := ParseDate("2024-06-12", msk)
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 6, 12, 0, 0, 0, 0, msk)))
	assert.Equal(t, "MSK", d.Location().String())

	_, err = ParseDate("12.06.2024", msk)
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	// 22:30 UTC is already the next day in Moscow.
	at := time.Date(2024, 6, 12, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 6, 13, 0, 0, 0, 0, msk), StartOfDay(at, msk))
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), StartOfDay(at, nil))
}
