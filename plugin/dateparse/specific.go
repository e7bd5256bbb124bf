package dateparse

import (
	"regexp"
	"strconv"
	"time"
)

var (
	dayPattern         = regexp.MustCompile(`^\d{1,2}$`)
	numericDatePattern = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})(?:[./](\d{4}))?$`)
)

// SpecificDateResolver handles explicit calendar dates: "15 сентября",
// "25.12" and "15.06.2025". Day and month names come first.
//
// Days are checked against 1..31 only; a day past the end of its month
// overflows into the next one. Without a year the date lands in the anchor's
// year, or the next one if that would not be after the anchor. An explicit
// year is used as is.
type SpecificDateResolver struct{}

func (SpecificDateResolver) Name() string { return "specific" }

func (SpecificDateResolver) Resolve(t *Text, anchor time.Time) (time.Time, bool) {
	if d, ok := dayAndMonthName(t, anchor); ok {
		return d, true
	}
	return numericDate(t, anchor)
}

func dayAndMonthName(t *Text, anchor time.Time) (time.Time, bool) {
	for i := 0; i+1 < len(t.Fields); i++ {
		if !dayPattern.MatchString(t.Fields[i]) {
			continue
		}
		month, ok := months.lookup(t.Fields[i+1])
		if !ok {
			continue
		}
		day, err := strconv.Atoi(t.Fields[i])
		if err != nil || day < 1 || day > 31 {
			continue
		}
		return nextDate(anchor, month, day), true
	}
	return time.Time{}, false
}

func numericDate(t *Text, anchor time.Time) (time.Time, bool) {
	for _, f := range t.Fields {
		m := numericDatePattern.FindStringSubmatch(f)
		if m == nil {
			continue
		}
		day, err := strconv.Atoi(m[1])
		if err != nil || day < 1 || day > 31 {
			continue
		}
		month, err := strconv.Atoi(m[2])
		if err != nil || month < 1 || month > 12 {
			continue
		}
		if m[3] == "" {
			return nextDate(anchor, time.Month(month), day), true
		}
		year, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, anchor.Location()), true
	}
	return time.Time{}, false
}

// nextDate places month/day in the anchor's year, rolling over to the next
// year when the result is on or before the anchor date.
func nextDate(anchor time.Time, month time.Month, day int) time.Time {
	d := time.Date(anchor.Year(), month, day, 0, 0, 0, 0, anchor.Location())
	if !d.After(dateOf(anchor)) {
		d = time.Date(anchor.Year()+1, month, day, 0, 0, 0, 0, anchor.Location())
	}
	return d
}
