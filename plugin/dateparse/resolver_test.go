package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	text := Normalize("  Стрижка ЗАВТРА, в 15:00! Ёлка  ")

	assert.Equal(t, "стрижка завтра, в 15:00! елка", text.Normalized)
	assert.Equal(t, []string{"стрижка", "завтра", "в", "15", "00", "елка"}, text.Words)
	assert.Equal(t, []string{"стрижка", "завтра", "в", "15:00", "елка"}, text.Fields)
	assert.True(t, text.HasWord("завтра"))
	assert.False(t, text.HasWord("завтр"))

	empty := Normalize("")
	assert.Empty(t, empty.Words)
	assert.Empty(t, empty.Fields)
}

func TestVocabulary_LongestFirst(t *testing.T) {
	for _, v := range []vocabulary[int]{relativeDays} {
		for i := 1; i < len(v); i++ {
			assert.GreaterOrEqual(t, v[i-1].runeLen(), v[i].runeLen())
		}
	}
	for i := 1; i < len(weekdays); i++ {
		assert.GreaterOrEqual(t, weekdays[i-1].runeLen(), weekdays[i].runeLen())
	}
	assert.Equal(t, "после завтра", relativeDays[0].phrase())
}

func TestExtractTime(t *testing.T) {
	tests := []struct {
		input string
		want  string
		field int
		ok    bool
	}{
		{"в 15:00", "15:00", 1, true},
		{"в 9:05", "09:05", 1, true},
		{"во 14.30", "14:30", 1, true},
		{"встреча 18:45 завтра", "18:45", 1, true},
		{"25.12 в 18:00", "18:00", 2, true},
		{"к 7", "07:00", 1, true},
		{"в 00:00", "00:00", 1, true},
		{"в 23:59", "23:59", 1, true},
		{"в 24:00", "", -1, false},
		{"в 12:60", "", -1, false},
		{"в 25", "", -1, false},
		{"15.09", "", -1, false},
		{"в 15 сентября", "", -1, false},
		{"в 123:00", "", -1, false},
		{"в 15:5", "", -1, false},
		{"без времени", "", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, field, ok := ExtractTime(Normalize(tt.input))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.field, field)
			if tt.ok {
				assert.Equal(t, tt.want, c.String())
			}
		})
	}
}

func TestExtractTime_MarkerBeatsEarlierColon(t *testing.T) {
	c, field, ok := ExtractTime(Normalize("перенос с 10:00 на завтра в 12.30"))
	require.True(t, ok)
	assert.Equal(t, "12:30", c.String())
	assert.Equal(t, 6, field)
}

func TestWeekdayOffset(t *testing.T) {
	tests := []struct {
		raw  int
		next bool
		want int
	}{
		{raw: 3, want: 3},
		{raw: 1, want: 1},
		{raw: 0, want: 7},
		{raw: -6, want: 1},
		{raw: -2, want: 5},
		{raw: 3, next: true, want: 10},
		{raw: 6, next: true, want: 13},
		{raw: 0, next: true, want: 14},
		{raw: -1, next: true, want: 13},
		{raw: -6, next: true, want: 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, weekdayOffset(tt.raw, tt.next), "raw=%d next=%v", tt.raw, tt.next)
	}
}

func TestWeekdayResolver_AllAnchors(t *testing.T) {
	names := map[time.Weekday]string{
		time.Monday:    "понедельник",
		time.Tuesday:   "вторник",
		time.Wednesday: "среду",
		time.Thursday:  "четверг",
		time.Friday:    "пятницу",
		time.Saturday:  "субботу",
		time.Sunday:    "воскресенье",
	}

	r := WeekdayResolver{}
	for day := 0; day < 7; day++ {
		a := anchor.AddDate(0, 0, day)
		for target, name := range names {
			plain, ok := r.Resolve(Normalize("в "+name), a)
			require.True(t, ok)
			assert.Equal(t, target, plain.Weekday())
			assert.True(t, plain.After(dateOf(a)))
			assert.LessOrEqual(t, plain.Sub(dateOf(a)), 7*24*time.Hour)

			next, ok := r.Resolve(Normalize("в следующую "+name), a)
			require.True(t, ok)
			assert.Equal(t, plain.AddDate(0, 0, 7), next, "%s from %s", name, a.Weekday())
		}
	}
}

func TestSpecificDateResolver_Rollover(t *testing.T) {
	r := SpecificDateResolver{}
	for day := 0; day < 366; day += 5 {
		a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)

		got, ok := r.Resolve(Normalize("15.09"), a)
		require.True(t, ok)
		assert.True(t, got.After(a))
		if time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC).After(a) {
			assert.Equal(t, 2024, got.Year())
		} else {
			assert.Equal(t, 2025, got.Year())
		}
	}
}

func TestFirstMatch_NoResolvers(t *testing.T) {
	_, _, ok := FirstMatch(Normalize("завтра"), anchor)
	assert.False(t, ok)
}

func TestDottedTime(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"завтра 14.30", "14:30", true},
		{"в пятницу 9.05 или 10.00", "09:05", true},
		{"в пятницу 25.12", "", false},
		{"завтра 14:30", "", false},
		{"завтра", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, ok := DottedTime(Normalize(tt.input))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, c.String())
			}
		})
	}
}
