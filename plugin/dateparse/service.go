package dateparse

import (
	"context"
	"time"
)

// DefaultDuration is the length of an appointment window.
const DefaultDuration = 90 * time.Minute

// TimeService resolves appointment messages for the bot.
type TimeService interface {
	// ResolveWindow resolves input against now, taken in the service's
	// location, and returns the appointment window.
	ResolveWindow(ctx context.Context, input string, now time.Time) (TimeRange, bool)
}

// TimeRange represents a time range.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the range length.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Service binds a Parser to a location and an appointment length.
type Service struct {
	parser   *Parser
	location *time.Location
	duration time.Duration
}

// NewService creates a time service. A nil location means time.Local and a
// non-positive duration means DefaultDuration.
func NewService(parser *Parser, location *time.Location, duration time.Duration) *Service {
	if parser == nil {
		parser = NewParser()
	}
	if location == nil {
		location = time.Local
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Service{
		parser:   parser,
		location: location,
		duration: duration,
	}
}

// Location returns the calendar location used for anchors and results.
func (s *Service) Location() *time.Location {
	return s.location
}

// Resolve resolves input with now's calendar date in the service location as the anchor.
func (s *Service) Resolve(_ context.Context, input string, now time.Time) (Appointment, bool) {
	return s.parser.Resolve(input, now.In(s.location))
}

// ResolveWindow resolves input and returns the appointment window.
func (s *Service) ResolveWindow(ctx context.Context, input string, now time.Time) (TimeRange, bool) {
	a, ok := s.Resolve(ctx, input, now)
	if !ok {
		return TimeRange{}, false
	}
	return s.Window(a), true
}

// Window returns the appointment window of a in the service location.
func (s *Service) Window(a Appointment) TimeRange {
	start := a.At(s.location)
	return TimeRange{Start: start, End: start.Add(s.duration)}
}

// Ensure Service implements TimeService
var _ TimeService = (*Service)(nil)
