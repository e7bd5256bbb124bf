package store

import (
	"context"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	// AppointmentActive is a booked appointment with a live Todoist task.
	AppointmentActive AppointmentStatus = "ACTIVE"
	// AppointmentCancelled is an appointment whose task was deleted.
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

func (s AppointmentStatus) String() string {
	return string(s)
}

// Appointment is the object representing a booked appointment.
type Appointment struct {
	ID        int32
	UID       string
	CreatorID int64
	// TaskID is the Todoist task ID.
	TaskID    string
	Title     string
	Comment   string
	StartTs   int64
	EndTs     int64
	Timezone  string
	Status    AppointmentStatus
	CreatedTs int64
	UpdatedTs int64
}

// FindAppointment is the find condition for appointment.
type FindAppointment struct {
	ID        *int32
	UID       *string
	CreatorID *int64
	TaskID    *string
	Status    *AppointmentStatus

	// StartFrom keeps appointments starting at or after the timestamp.
	StartFrom *int64

	Limit *int
}

// UpdateAppointment is the update request for appointment.
type UpdateAppointment struct {
	ID        int32
	UpdatedTs *int64
	Status    *AppointmentStatus
	TaskID    *string
}

// CreateAppointment creates a new appointment.
func (s *Store) CreateAppointment(ctx context.Context, create *Appointment) (*Appointment, error) {
	return s.driver.CreateAppointment(ctx, create)
}

// ListAppointments lists appointments ordered by start time.
func (s *Store) ListAppointments(ctx context.Context, find *FindAppointment) ([]*Appointment, error) {
	return s.driver.ListAppointments(ctx, find)
}

// GetAppointment returns the first match or nil.
func (s *Store) GetAppointment(ctx context.Context, find *FindAppointment) (*Appointment, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.driver.ListAppointments(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateAppointment updates an appointment.
func (s *Store) UpdateAppointment(ctx context.Context, update *UpdateAppointment) error {
	return s.driver.UpdateAppointment(ctx, update)
}

// StartTime returns the appointment start in its own timezone, or UTC when
// the timezone is unknown.
func (a *Appointment) StartTime() time.Time {
	return time.Unix(a.StartTs, 0).In(a.location())
}

// EndTime returns the appointment end in its own timezone.
func (a *Appointment) EndTime() time.Time {
	return time.Unix(a.EndTs, 0).In(a.location())
}

// Duration returns the length of the appointment.
func (a *Appointment) Duration() time.Duration {
	return time.Duration(a.EndTs-a.StartTs) * time.Second
}

func (a *Appointment) location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
