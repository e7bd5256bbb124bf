package dateparse

import "time"

// DateResolver claims a calendar date from normalized text.
// Resolvers never fail: a miss is reported as ok == false.
type DateResolver interface {
	Name() string
	Resolve(t *Text, anchor time.Time) (date time.Time, ok bool)
}

// FirstMatch tries resolvers in order and returns the first date claimed,
// together with the name of the resolver that claimed it.
func FirstMatch(t *Text, anchor time.Time, resolvers ...DateResolver) (time.Time, string, bool) {
	for _, r := range resolvers {
		if d, ok := r.Resolve(t, anchor); ok {
			return d, r.Name(), true
		}
	}
	return time.Time{}, "", false
}

// dateOf strips the time of day, keeping the location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func addDays(anchor time.Time, days int) time.Time {
	return dateOf(anchor).AddDate(0, 0, days)
}

// RelativeResolver handles "сегодня", "завтра", "послезавтра".
type RelativeResolver struct{}

func (RelativeResolver) Name() string { return "relative" }

func (RelativeResolver) Resolve(t *Text, anchor time.Time) (time.Time, bool) {
	a, ok := relativeDays.find(t.Words)
	if !ok {
		return time.Time{}, false
	}
	return addDays(anchor, a.value), true
}
