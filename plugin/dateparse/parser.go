// Package dateparse resolves Russian free-form appointment messages
// ("следующую пятницу в 12:00", "25.12 в 18:00") into a calendar date and a
// time of day.
//
// Resolution is a pure function of the message and an anchor date supplied
// by the caller; the package never reads the clock and keeps no mutable
// state, so a Parser may be shared by any number of goroutines.
package dateparse

import (
	"io"
	"log/slog"
	"time"
)

// Appointment is a resolved date with its time of day.
type Appointment struct {
	// Date is midnight of the resolved day in the anchor's location.
	Date time.Time `json:"date"`
	Time Clock     `json:"time"`
	// Strategy names the resolver that claimed the date.
	Strategy string `json:"strategy"`
	// TimeFound is false when Time is the default.
	TimeFound bool `json:"time_found"`
}

// At combines the date and time in loc. A nil loc keeps the date's location.
func (a Appointment) At(loc *time.Location) time.Time {
	if loc == nil {
		loc = a.Date.Location()
	}
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), a.Time.Hour, a.Time.Minute, 0, 0, loc)
}

// Parser runs the resolution pipeline: relative words first, then weekdays,
// then explicit dates. The first resolver to claim a date wins.
type Parser struct {
	resolvers   []DateResolver
	defaultTime Clock
	logger      *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithDefaultTime overrides the time used when the message has none.
// Invalid clocks are ignored.
func WithDefaultTime(c Clock) Option {
	return func(p *Parser) {
		if c.Valid() {
			p.defaultTime = c
		}
	}
}

// WithLogger enables debug logging of resolution decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser creates a parser with the standard resolver order.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		resolvers: []DateResolver{
			RelativeResolver{},
			WeekdayResolver{},
			SpecificDateResolver{},
		},
		defaultTime: DefaultTime,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve finds the appointment in text relative to anchor. Only the calendar
// date of anchor matters. It reports false when no date is found, even if the
// text contains a time.
//
// The time token is hidden from the date resolvers unless no date is found
// without it. When the date came from a word ("завтра", "в пятницу"), a dotted
// "H.MM" without a marker is read as the time too.
func (p *Parser) Resolve(text string, anchor time.Time) (Appointment, bool) {
	t := Normalize(text)

	clock, field, timeFound := ExtractTime(t)
	date, strategy, ok := FirstMatch(t.withoutField(field), anchor, p.resolvers...)
	if !ok && field >= 0 {
		// The time token may be the only date in the message: "в 12.09".
		date, strategy, ok = FirstMatch(t, anchor, p.resolvers...)
	}
	if !ok {
		p.logger.Debug("no date found", "text", t.Normalized)
		return Appointment{}, false
	}
	if !timeFound && wordDate(strategy) {
		clock, timeFound = DottedTime(t)
	}
	if !timeFound {
		clock = p.defaultTime
	}

	p.logger.Debug("resolved appointment",
		"text", t.Normalized,
		"strategy", strategy,
		"date", date.Format("2006-01-02"),
		"time", clock.String(),
		"time_found", timeFound,
	)
	return Appointment{Date: date, Time: clock, Strategy: strategy, TimeFound: timeFound}, true
}

// wordDate reports whether the date came from words, leaving numeric
// tokens free to be read as a time.
func wordDate(strategy string) bool {
	return strategy == RelativeResolver{}.Name() || strategy == WeekdayResolver{}.Name()
}

// withoutField returns a copy of t with Fields[i] blanked out. Words are kept.
func (t *Text) withoutField(i int) *Text {
	if i < 0 || i >= len(t.Fields) {
		return t
	}
	fields := make([]string, len(t.Fields))
	copy(fields, t.Fields)
	fields[i] = ""
	return &Text{Normalized: t.Normalized, Words: t.Words, Fields: fields}
}
