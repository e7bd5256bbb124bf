package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	// hourMinutePattern matches "9:30", "14.05" as a whole field.
	hourMinutePattern = regexp.MustCompile(`^(\d{1,2})([:.])(\d{2})$`)
	bareHourPattern   = regexp.MustCompile(`^(\d{1,2})$`)
)

// DefaultTime is used when a message names a date but no time.
var DefaultTime = Clock{Hour: 14, Minute: 0}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Valid reports whether the clock is within 00:00..23:59.
func (c Clock) Valid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ExtractTime finds the time of day in t. It returns the clock and the index
// of the field it consumed, so date resolvers can skip that field.
//
// Candidates, in priority order:
//  1. "H[H]:MM" or "H[H].MM" right after a time marker ("в 15:00", "в 14.30");
//  2. the first "H[H]:MM" anywhere (colon only; a bare "15.09" reads as a date);
//  3. a bare hour right after a marker ("в 15"), unless a month name follows it.
//
// The chosen candidate is final: out-of-range digits mean no time at all, and
// the field stays available to the date resolvers.
func ExtractTime(t *Text) (Clock, int, bool) {
	idx := -1
	for i, f := range t.Fields {
		if hourMinutePattern.MatchString(f) && precededByMarker(t, i) {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, f := range t.Fields {
			if m := hourMinutePattern.FindStringSubmatch(f); m != nil && m[2] == ":" {
				idx = i
				break
			}
		}
	}
	if idx >= 0 {
		m := hourMinutePattern.FindStringSubmatch(t.Fields[idx])
		if c, ok := clockOf(m[1], m[3]); ok {
			return c, idx, true
		}
		return Clock{}, -1, false
	}

	for i, f := range t.Fields {
		if !bareHourPattern.MatchString(f) || !precededByMarker(t, i) || followedByMonth(t, i) {
			continue
		}
		if c, ok := clockOf(f, "0"); ok {
			return c, i, true
		}
		return Clock{}, -1, false
	}
	return Clock{}, -1, false
}

// DottedTime returns the first "H[H].MM" field as a clock. Callers use it only
// when no field can be a date. The first dotted field is final.
func DottedTime(t *Text) (Clock, bool) {
	for _, f := range t.Fields {
		if m := hourMinutePattern.FindStringSubmatch(f); m != nil && m[2] == "." {
			return clockOf(m[1], m[3])
		}
	}
	return Clock{}, false
}

func clockOf(hour, minute string) (Clock, bool) {
	h, err := strconv.Atoi(hour)
	if err != nil {
		return Clock{}, false
	}
	m, err := strconv.Atoi(minute)
	if err != nil {
		return Clock{}, false
	}
	c := Clock{Hour: h, Minute: m}
	if !c.Valid() {
		return Clock{}, false
	}
	return c, true
}

func precededByMarker(t *Text, i int) bool {
	return i > 0 && timeMarkers[t.Fields[i-1]]
}

func followedByMonth(t *Text, i int) bool {
	if i+1 >= len(t.Fields) {
		return false
	}
	_, ok := months.lookup(t.Fields[i+1])
	return ok
}
