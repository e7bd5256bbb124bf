package dateparse

import "time"

// WeekdayResolver maps a weekday name to its next occurrence after the anchor.
//
// Without a modifier the result is always 1..7 days ahead: today's weekday
// means a week from today. With "следующий" the result moves one more week:
// a weekday still ahead this week gets +7, one that already passed (or is
// today) gets +14. Either way a modified weekday lands exactly 7 days after
// the unmodified one.
type WeekdayResolver struct{}

func (WeekdayResolver) Name() string { return "weekday" }

func (WeekdayResolver) Resolve(t *Text, anchor time.Time) (time.Time, bool) {
	a, ok := weekdays.find(t.Words)
	if !ok {
		return time.Time{}, false
	}
	_, next := nextModifiers.find(t.Words)
	return addDays(anchor, weekdayOffset(isoWeekday(a.value)-isoWeekday(anchor.Weekday()), next)), true
}

// weekdayOffset applies the rollover policy to raw, the difference between the
// target and anchor weekdays (-6..6).
func weekdayOffset(raw int, next bool) int {
	switch {
	case next && raw > 0:
		return raw + 7
	case next:
		return raw + 14
	case raw <= 0:
		return raw + 7
	default:
		return raw
	}
}

// isoWeekday numbers Monday as 1 and Sunday as 7.
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
